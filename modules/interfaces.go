package modules

import (
	"context"

	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/bwmarrin/discordgo"
)

// Plugin handles one or more slash commands
type Plugin interface {
	// Commands are registered with the platform when the identity connects
	Commands() []*discordgo.ApplicationCommand

	// Private makes acknowledgements and results visible to the caller only
	Private() bool

	Action(ctx context.Context, invocation *Invocation) (models.Reply, error)
}

// MemberPlugin reacts to members joining or leaving a guild
type MemberPlugin interface {
	OnGuildMemberAdd(ctx context.Context, guildID string, member models.Member) error
	OnGuildMemberRemove(ctx context.Context, guildID string, member models.Member) error
}

// Responder is the two phase reply surface of one command interaction.
// Acknowledge must happen within the platform's response deadline, Finalize
// or Fail follow once the work is done.
type Responder interface {
	Acknowledge(private bool) error
	Finalize(reply models.Reply) error
	// Fail replies with message visible to the caller only
	Fail(message string) error
}

// Sender delivers a reply to a channel
type Sender interface {
	SendReply(ctx context.Context, channelID string, reply models.Reply) error
}

// PermissionChecker answers permission questions against the platform
type PermissionChecker interface {
	// HasPermission checks userID's guild level permissions for flag
	HasPermission(guildID, userID string, flag int64) bool
	// CanModerate checks the role hierarchy between actingID and targetID
	CanModerate(guildID, actingID, targetID string) bool
}
