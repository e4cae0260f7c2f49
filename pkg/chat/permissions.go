package chat

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Permissions is a permission bitset. Bit values follow the Discord layout so
// the Discord front-end can pass them through unchanged.
type Permissions int64

const (
	PermissionNone            = Permissions(0)
	PermissionSendMessages    = Permissions(discordgo.PermissionSendMessages)
	PermissionEmbedLinks      = Permissions(discordgo.PermissionEmbedLinks)
	PermissionManageMessages  = Permissions(discordgo.PermissionManageMessages)
	PermissionAddReactions    = Permissions(discordgo.PermissionAddReactions)
	PermissionReadHistory     = Permissions(discordgo.PermissionReadMessageHistory)
	PermissionManageGuild     = Permissions(discordgo.PermissionManageGuild)
	PermissionManageChannels  = Permissions(discordgo.PermissionManageChannels)
	PermissionManageRoles     = Permissions(discordgo.PermissionManageRoles)
	PermissionKickMembers     = Permissions(discordgo.PermissionKickMembers)
	PermissionBanMembers      = Permissions(discordgo.PermissionBanMembers)
	PermissionAdministrator   = Permissions(discordgo.PermissionAdministrator)
	PermissionViewChannel     = Permissions(discordgo.PermissionViewChannel)
	PermissionMentionEveryone = Permissions(discordgo.PermissionMentionEveryone)
	PermissionAll             = Permissions(discordgo.PermissionAll)
)

// Has reports whether p is a superset of required.
func (p Permissions) Has(required Permissions) bool {
	return p&required == required
}

// Missing returns the bits of required that p lacks.
func (p Permissions) Missing(required Permissions) Permissions {
	return required &^ p
}

// String lists the names of the set bits.
func (p Permissions) String() string {
	if p == 0 {
		return "none"
	}
	return strings.Join(p.Names(), ", ")
}

// Names returns human-readable names of the set bits, sorted.
func (p Permissions) Names() []string {
	var out []string
	v := uint64(p)
	for v != 0 {
		bit := uint64(1) << bits.TrailingZeros64(v)
		v &^= bit
		name, ok := PermissionNames[int64(bit)]
		if !ok {
			name = fmt.Sprintf("0x%x", bit)
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PermissionNames maps single permission bits to display names.
var PermissionNames = map[int64]string{
	discordgo.PermissionCreateInstantInvite:   "Create Instant Invite",
	discordgo.PermissionKickMembers:           "Kick Members",
	discordgo.PermissionBanMembers:            "Ban Members",
	discordgo.PermissionAdministrator:         "Administrator",
	discordgo.PermissionManageChannels:        "Manage Channels",
	discordgo.PermissionManageGuild:           "Manage Server",
	discordgo.PermissionAddReactions:          "Add Reactions",
	discordgo.PermissionViewAuditLogs:         "View Audit Logs",
	discordgo.PermissionViewChannel:           "View Channel",
	discordgo.PermissionSendMessages:          "Send Messages",
	discordgo.PermissionSendTTSMessages:       "Send TTS Messages",
	discordgo.PermissionManageMessages:        "Manage Messages",
	discordgo.PermissionEmbedLinks:            "Embed Links",
	discordgo.PermissionAttachFiles:           "Attach Files",
	discordgo.PermissionReadMessageHistory:    "Read Message History",
	discordgo.PermissionMentionEveryone:       "Mention Everyone",
	discordgo.PermissionUseExternalEmojis:     "Use External Emojis",
	discordgo.PermissionManageThreads:         "Manage Threads",
	discordgo.PermissionSendMessagesInThreads: "Send Messages in Threads",
	discordgo.PermissionChangeNickname:        "Change Nickname",
	discordgo.PermissionManageNicknames:       "Manage Nicknames",
	discordgo.PermissionManageRoles:           "Manage Roles",
	discordgo.PermissionManageWebhooks:        "Manage Webhooks",
	discordgo.PermissionModerateMembers:       "Moderate Members",
}
