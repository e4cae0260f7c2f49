package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/retrylimit"
)

// Client implements chat.Client over a discordgo session. Every REST call
// goes through an adaptive limiter and is retried on rate limits and server
// errors. Sends are not retried after transport failures since the message
// may already have been posted.
type Client struct {
	s         *discordgo.Session
	lim       *retrylimit.AdaptiveLimiter
	retry     retrylimit.Config
	sendRetry retrylimit.Config
}

var _ chat.Client = (*Client)(nil)

func NewClient(s *discordgo.Session, log *zap.SugaredLogger) *Client {
	cfg := retrylimit.DefaultConfig()
	cfg.Logger = log
	send := cfg
	send.Idempotent = false
	return &Client{
		s:         s,
		lim:       retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		retry:     cfg,
		sendRetry: send,
	}
}

func (c *Client) Self() *chat.User {
	return toUser(sessionResolver{c.s}.SelfUser())
}

// HeartbeatLatency reports the gateway round trip.
func (c *Client) HeartbeatLatency() time.Duration {
	return c.s.HeartbeatLatency()
}

func (c *Client) do(ctx context.Context, fn func(opts ...discordgo.RequestOption) error) error {
	return c.call(ctx, c.retry, fn)
}

func (c *Client) send(ctx context.Context, fn func(opts ...discordgo.RequestOption) error) error {
	return c.call(ctx, c.sendRetry, fn)
}

func (c *Client) call(ctx context.Context, cfg retrylimit.Config, fn func(opts ...discordgo.RequestOption) error) error {
	return retrylimit.Do(ctx, c.lim, cfg, func() error {
		return fn(discordgo.WithContext(ctx), discordgo.WithRetryOnRatelimit(false))
	})
}

func (c *Client) SendMessage(ctx context.Context, channelID, content string) (*chat.Message, error) {
	var m *discordgo.Message
	err := c.send(ctx, func(opts ...discordgo.RequestOption) (err error) {
		m, err = c.s.ChannelMessageSend(channelID, content, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sentMessage(m), nil
}

func (c *Client) SendEmbed(ctx context.Context, channelID string, embed *chat.Embed) (*chat.Message, error) {
	var m *discordgo.Message
	err := c.send(ctx, func(opts ...discordgo.RequestOption) (err error) {
		m, err = c.s.ChannelMessageSendEmbed(channelID, toEmbed(embed), opts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sentMessage(m), nil
}

func (c *Client) EditMessage(ctx context.Context, msg *chat.Message, content string) (*chat.Message, error) {
	var m *discordgo.Message
	err := c.do(ctx, func(opts ...discordgo.RequestOption) (err error) {
		m, err = c.s.ChannelMessageEdit(msg.ChannelID(), msg.ID, content, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sentMessage(m), nil
}

func (c *Client) DeleteMessage(ctx context.Context, msg *chat.Message, reason string) error {
	return c.do(ctx, func(opts ...discordgo.RequestOption) error {
		if reason != "" {
			opts = append(opts, discordgo.WithAuditLogReason(reason))
		}
		return c.s.ChannelMessageDelete(msg.ChannelID(), msg.ID, opts...)
	})
}

func (c *Client) AddReaction(ctx context.Context, msg *chat.Message, emoji string) error {
	return c.do(ctx, func(opts ...discordgo.RequestOption) error {
		return c.s.MessageReactionAdd(msg.ChannelID(), msg.ID, emoji, opts...)
	})
}

// LeaveGuild makes the bot leave guildID.
func (c *Client) LeaveGuild(ctx context.Context, guildID string) error {
	return c.do(ctx, func(opts ...discordgo.RequestOption) error {
		return c.s.GuildLeave(guildID, opts...)
	})
}
