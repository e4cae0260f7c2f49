package commands

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/cmd"
)

// ErrorReplier tells users why their command did not run.
type ErrorReplier struct {
	client chat.Client
	log    *zap.SugaredLogger
}

var _ cmd.ErrorHandler = (*ErrorReplier)(nil)

func NewErrorReplier(client chat.Client, log *zap.SugaredLogger) *ErrorReplier {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ErrorReplier{client: client, log: log}
}

// Text returns the user-facing text for err, or "" when nothing should be
// posted.
func (r *ErrorReplier) Text(err *cmd.Error) string {
	name := ""
	if err.Command != nil {
		name = err.Command.Info().Name
	}
	switch err.Kind {
	case cmd.NotInGuild:
		return "This command can only be used in a server."
	case cmd.NotOwner:
		return "Only the bot owner can use this command."
	case cmd.InsufficientUserPermissions:
		return "You need these permissions: " + strings.Join(err.Missing().Names(), ", ")
	case cmd.InsufficientBotPermissions:
		if !err.Actual.Has(chat.PermissionSendMessages) {
			return ""
		}
		return "I need these permissions: " + strings.Join(err.Missing().Names(), ", ")
	case cmd.MissingEmbedPermissions:
		return "I need the Embed Links permission here."
	case cmd.SubCommandNotFound:
		if err.Token == "" {
			return "`" + name + "` needs a sub-command."
		}
		return "`" + name + "` has no sub-command `" + err.Token + "`."
	case cmd.Timeout:
		return "Timed out waiting for a reply."
	default:
		return ""
	}
}

func (r *ErrorReplier) HandleError(ctx context.Context, err *cmd.Error) {
	text := r.Text(err)
	if text == "" || err.Message == nil {
		r.log.Warnw("command error not reported to user", "kind", err.Kind.String(), "error", err)
		return
	}
	if _, serr := r.client.SendMessage(ctx, err.Message.ChannelID(), text); serr != nil {
		r.log.Errorw("failed to report command error", "kind", err.Kind.String(), "error", serr)
	}
}
