// Package console runs the bot against stdin and stdout. Every line is a
// message by one user in a single guild channel where both the user and the
// bot hold every permission.
//
// Lines starting with ":" are directives:
//
//	:react <emoji> [message id]   react to a bot message (default: the last one)
//	:quit                         stop reading
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/cmd"
)

const (
	GuildID   = "console"
	ChannelID = "console"
	UserID    = "console-user"
	BotID     = "console-bot"
)

// Client prints outbound messages.
type Client struct {
	mu   sync.Mutex
	out  io.Writer
	self *chat.User
	seq  int
	last string
}

var _ chat.Client = (*Client)(nil)

func NewClient(out io.Writer, botName string) *Client {
	return &Client{out: out, self: &chat.User{ID: BotID, Username: botName, Bot: true}}
}

func (c *Client) Self() *chat.User { return c.self }

// LastID returns the id of the newest message the bot sent.
func (c *Client) LastID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Client) SendMessage(_ context.Context, channelID, content string) (*chat.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := c.newMessage(channelID, content)
	fmt.Fprintf(c.out, "[%s #%s] %s\n", c.self.Username, msg.ID, content)
	return msg, nil
}

func (c *Client) SendEmbed(_ context.Context, channelID string, e *chat.Embed) (*chat.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := c.newMessage(channelID, "")
	var b strings.Builder
	fmt.Fprintf(&b, "[%s #%s] == %s ==\n", c.self.Username, msg.ID, e.Title)
	if e.Description != "" {
		fmt.Fprintf(&b, "  %s\n", e.Description)
	}
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "  %s: %s\n", f.Name, f.Value)
	}
	if e.Footer != "" {
		fmt.Fprintf(&b, "  -- %s\n", e.Footer)
	}
	io.WriteString(c.out, b.String())
	return msg, nil
}

func (c *Client) EditMessage(_ context.Context, msg *chat.Message, content string) (*chat.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	edited := *msg
	edited.Content = content
	fmt.Fprintf(c.out, "[%s #%s edited] %s\n", c.self.Username, msg.ID, content)
	return &edited, nil
}

func (c *Client) DeleteMessage(_ context.Context, msg *chat.Message, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "[%s deleted #%s: %s]\n", c.self.Username, msg.ID, reason)
	return nil
}

func (c *Client) AddReaction(_ context.Context, msg *chat.Message, emoji string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "[%s reacted %s on #%s]\n", c.self.Username, emoji, msg.ID)
	return nil
}

func (c *Client) newMessage(channelID, content string) *chat.Message {
	c.seq++
	id := "b" + strconv.Itoa(c.seq)
	c.last = id
	return &chat.Message{
		ID:        id,
		Content:   content,
		Author:    c.self,
		Channel:   &chat.Channel{ID: channelID, GuildID: GuildID},
		CreatedAt: time.Now(),
	}
}

// Pump turns input lines into events.
type Pump struct {
	client *Client
	hub    *chat.Hub
	router *cmd.Router
	user   *chat.User
	guild  *chat.Guild
	seq    int
}

func NewPump(client *Client, hub *chat.Hub, router *cmd.Router, username string) *Pump {
	return &Pump{
		client: client,
		hub:    hub,
		router: router,
		user:   &chat.User{ID: UserID, Username: username},
		guild: &chat.Guild{
			ID:      GuildID,
			Name:    "console",
			OwnerID: UserID,
			Self:    &chat.Member{User: client.Self(), Permissions: chat.PermissionAll},
		},
	}
}

// Run reads in until EOF, ":quit" or ctx ends.
func (p *Pump) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-stop:
				return
			}
		}
		errc <- sc.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			ev, quit := p.Event(line)
			if quit {
				return nil
			}
			if ev == nil {
				continue
			}
			p.hub.Publish(ev)
			p.router.Handle(ctx, ev)
		}
	}
}

// Event parses one line. It returns nil for blank or malformed lines.
func (p *Pump) Event(line string) (ev chat.Event, quit bool) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return nil, false
	case line == ":quit":
		return nil, true
	case strings.HasPrefix(line, ":react"):
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, false
		}
		target := p.client.LastID()
		if len(fields) > 2 {
			target = strings.TrimPrefix(fields[2], "#")
		}
		return &chat.ReactionAdd{
			UserID:    p.user.ID,
			MessageID: target,
			ChannelID: ChannelID,
			GuildID:   GuildID,
			Emoji:     fields[1],
			At:        time.Now(),
		}, false
	}

	p.seq++
	return &chat.MessageCreate{Message: &chat.Message{
		ID:        "u" + strconv.Itoa(p.seq),
		Content:   line,
		Author:    p.user,
		Member:    &chat.Member{User: p.user, Permissions: chat.PermissionAll},
		Guild:     p.guild,
		Channel:   &chat.Channel{ID: ChannelID, Name: "console", GuildID: GuildID},
		CreatedAt: time.Now(),
	}}, false
}
