package cmd

import (
	"slices"

	"github.com/keshon/flowbot/pkg/chat"
)

// Verify checks that c may run for msg. Checks run in a fixed order and the
// first failure is returned: guild requirement, owner requirement, member
// permissions, bot permissions. Permission sets come from the message
// snapshot, already resolved for its channel.
func Verify(msg *chat.Message, c Command, owners []string) error {
	info := c.Info()

	if info.GuildOnly && !msg.FromGuild() {
		return &Error{Kind: NotInGuild, Message: msg, Command: c}
	}

	if info.OwnerOnly && (msg.Author == nil || !slices.Contains(owners, msg.Author.ID)) {
		return &Error{Kind: NotOwner, Message: msg, Command: c}
	}

	if !msg.FromGuild() {
		return nil
	}

	var actual chat.Permissions
	if msg.Member != nil {
		actual = msg.Member.Permissions
	}
	if !actual.Has(info.UserPermissions) {
		return &Error{
			Kind:     InsufficientUserPermissions,
			Message:  msg,
			Command:  c,
			Required: info.UserPermissions,
			Actual:   actual,
		}
	}

	var self chat.Permissions
	if msg.Guild.Self != nil {
		self = msg.Guild.Self.Permissions
	}
	if !self.Has(info.BotPermissions) {
		return &Error{
			Kind:     InsufficientBotPermissions,
			Message:  msg,
			Command:  c,
			Required: info.BotPermissions,
			Actual:   self,
		}
	}
	return nil
}
