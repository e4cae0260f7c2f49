package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/flowbot/pkg/chat"
)

// resolver answers the state lookups needed to build chat messages.
type resolver interface {
	SelfUser() *discordgo.User
	Channel(id string) (*discordgo.Channel, error)
	Guild(id string) (*discordgo.Guild, error)
	Permissions(userID, channelID string) (int64, error)
}

// sessionResolver reads the session state and falls back to REST.
type sessionResolver struct {
	s *discordgo.Session
}

func (r sessionResolver) SelfUser() *discordgo.User {
	if r.s.State == nil {
		return nil
	}
	return r.s.State.User
}

func (r sessionResolver) Channel(id string) (*discordgo.Channel, error) {
	if ch, err := r.s.State.Channel(id); err == nil {
		return ch, nil
	}
	return r.s.Channel(id)
}

func (r sessionResolver) Guild(id string) (*discordgo.Guild, error) {
	if g, err := r.s.State.Guild(id); err == nil {
		return g, nil
	}
	return r.s.Guild(id)
}

func (r sessionResolver) Permissions(userID, channelID string) (int64, error) {
	if p, err := r.s.State.UserChannelPermissions(userID, channelID); err == nil {
		return p, nil
	}
	return r.s.UserChannelPermissions(userID, channelID)
}

func toUser(u *discordgo.User) *chat.User {
	if u == nil {
		return nil
	}
	return &chat.User{ID: u.ID, Username: u.Username, Bot: u.Bot}
}

// toMessage builds the chat view of m. Guild messages carry the channel
// permissions of the author and of the bot; failed lookups leave them empty,
// which fails permission checks instead of passing them.
func toMessage(r resolver, m *discordgo.Message) *chat.Message {
	msg := &chat.Message{
		ID:        m.ID,
		Content:   m.Content,
		Author:    toUser(m.Author),
		Channel:   &chat.Channel{ID: m.ChannelID, GuildID: m.GuildID},
		CreatedAt: m.Timestamp,
	}
	if ch, err := r.Channel(m.ChannelID); err == nil && ch != nil {
		msg.Channel.Name = ch.Name
		if msg.Channel.GuildID == "" {
			msg.Channel.GuildID = ch.GuildID
		}
	}
	guildID := msg.Channel.GuildID
	if guildID == "" {
		return msg
	}

	guild := &chat.Guild{ID: guildID}
	if g, err := r.Guild(guildID); err == nil && g != nil {
		guild.Name = g.Name
		guild.OwnerID = g.OwnerID
	}
	if self := r.SelfUser(); self != nil {
		perms, _ := r.Permissions(self.ID, m.ChannelID)
		guild.Self = &chat.Member{User: toUser(self), Permissions: chat.Permissions(perms)}
	}
	msg.Guild = guild

	if msg.Author != nil {
		member := &chat.Member{User: msg.Author}
		if m.Member != nil {
			member.Nick = m.Member.Nick
		}
		perms, _ := r.Permissions(msg.Author.ID, m.ChannelID)
		member.Permissions = chat.Permissions(perms)
		msg.Member = member
	}
	return msg
}

// sentMessage converts a message the bot itself just posted or edited.
func sentMessage(m *discordgo.Message) *chat.Message {
	msg := &chat.Message{
		ID:        m.ID,
		Content:   m.Content,
		Author:    toUser(m.Author),
		Channel:   &chat.Channel{ID: m.ChannelID, GuildID: m.GuildID},
		CreatedAt: m.Timestamp,
	}
	if m.GuildID != "" {
		msg.Guild = &chat.Guild{ID: m.GuildID}
	}
	return msg
}

func toReaction(r *discordgo.MessageReaction) *chat.ReactionAdd {
	emoji := r.Emoji.Name
	if r.Emoji.ID != "" {
		emoji = r.Emoji.APIName()
	}
	return &chat.ReactionAdd{
		UserID:    r.UserID,
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		GuildID:   r.GuildID,
		Emoji:     emoji,
		At:        time.Now(),
	}
}

func toEmbed(e *chat.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	return out
}
