// Package discord connects the command layer to a Discord gateway session.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/flowbot/internal/config"
	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/cmd"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsDirectMessageReactions |
	discordgo.IntentsMessageContent

// Bot owns the session and publishes gateway events to the hub and router.
type Bot struct {
	dg     *discordgo.Session
	client *Client
	hub    *chat.Hub
	cfg    *config.Config
	log    *zap.SugaredLogger

	ctx    context.Context
	router *cmd.Router
}

// New creates the session without connecting.
func New(cfg *config.Config, log *zap.SugaredLogger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = intents
	return &Bot{
		dg:     dg,
		client: NewClient(dg, log),
		hub:    chat.NewHub(),
		cfg:    cfg,
		log:    log,
	}, nil
}

// Client is the outbound side for the dispatcher.
func (b *Bot) Client() *Client { return b.client }

// Hub carries every inbound event for flows and waiters.
func (b *Bot) Hub() *chat.Hub { return b.hub }

// Run connects, feeds events to router until ctx ends, then disconnects.
func (b *Bot) Run(ctx context.Context, router *cmd.Router) error {
	b.ctx = ctx
	b.router = router

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onMessageUpdate)
	b.dg.AddHandler(b.onMessageReactionAdd)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	b.log.Infow("shutdown signal received, cleaning up")
	b.hub.Close()
	router.Wait()
	return b.dg.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		b.leaveIfBlacklisted(g.ID)
	}
	b.log.Infow("discord bot is running", "user", r.User.Username, "guilds", len(r.Guilds))
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Infow("guild available", "guild", g.Guild.ID, "name", g.Guild.Name)
	b.leaveIfBlacklisted(g.Guild.ID)
}

func (b *Bot) leaveIfBlacklisted(guildID string) {
	if !b.cfg.Blacklisted(guildID) {
		return
	}
	b.log.Infow("leaving blacklisted guild", "guild", guildID)
	if err := b.client.LeaveGuild(b.ctx, guildID); err != nil {
		b.log.Errorw("failed to leave guild", "guild", guildID, "error", err)
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil {
		return
	}
	b.publish(&chat.MessageCreate{Message: toMessage(sessionResolver{s}, m.Message)})
}

func (b *Bot) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	// embed unfurls arrive as updates without an author
	if m.Message == nil || m.Author == nil {
		return
	}
	b.publish(&chat.MessageUpdate{Message: toMessage(sessionResolver{s}, m.Message)})
}

func (b *Bot) onMessageReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil {
		return
	}
	if self := s.State.User; self != nil && r.UserID == self.ID {
		return
	}
	b.publish(toReaction(r.MessageReaction))
}

func (b *Bot) publish(ev chat.Event) {
	b.hub.Publish(ev)
	b.router.Handle(b.ctx, ev)
}
