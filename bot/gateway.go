package bot

import (
	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/modules"
	"github.com/Seklfreak/Guildkeeper/modules/plugins/mod"
	"github.com/bwmarrin/discordgo"
)

// MessageEvent is a chat message in a guild channel
type MessageEvent struct {
	GuildID   string
	ChannelID string
	AuthorID  string
	AuthorBot bool
	Content   string
}

// MemberEvent is a member joining or leaving a guild
type MemberEvent struct {
	GuildID string
	Member  models.Member
}

// EventHandler receives the events of one Gateway. Calls happen on the
// gateway's goroutines and must not block.
type EventHandler interface {
	OnMessage(event MessageEvent)
	OnCommand(invocation *modules.Invocation, responder modules.Responder)
	OnMemberJoin(event MemberEvent)
	OnMemberLeave(event MemberEvent)
}

// Gateway is one authenticated connection to the platform
type Gateway interface {
	Open(handler EventHandler) error
	Close() error
	// UserID is the identity's own user ID, known once Open returned
	UserID() string
	RegisterCommands(commands []*discordgo.ApplicationCommand) error

	modules.Sender
	modules.PermissionChecker
	mod.Directory
	mod.Authority
}

// Dialer creates the gateway for an identity that has a token
type Dialer func(identity helpers.IdentityConfig) (Gateway, error)
