package mod

import (
	"context"
	"fmt"
	"time"

	"github.com/Seklfreak/Guildkeeper/cache"
	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/metrics"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/modules"
	"github.com/pkg/errors"
)

// ErrMemberNotFound is returned by a Directory for users outside the guild
var ErrMemberNotFound = errors.New("member not found")

// Directory looks up guild state
type Directory interface {
	Member(ctx context.Context, guildID, userID string) (*models.Member, error)
	IsBanned(ctx context.Context, guildID, userID string) (bool, error)
}

// Authority performs moderation calls on the platform. A nil until lifts a
// timeout.
type Authority interface {
	Ban(ctx context.Context, guildID, userID, reason string) error
	Unban(ctx context.Context, guildID, userID, reason string) error
	Kick(ctx context.Context, guildID, userID, reason string) error
	Timeout(ctx context.Context, guildID, userID string, until *time.Time, reason string) error
}

// Outcome describes a completed moderation action
type Outcome struct {
	Action models.ModerationAction
	Target models.Member
	// Until is set for mutes
	Until *time.Time
	Reply models.Reply
}

// Executor validates and performs moderation actions for one identity
type Executor struct {
	Identity     models.IdentityTag
	IdentityName string
	BotUserID    string

	Permissions modules.PermissionChecker
	Directory   Directory
	Authority   Authority

	// Now is the clock, time.Now if nil
	Now func() time.Time
}

// Execute checks, in order, the actor's permission, the bot's permission,
// whether the target can be acted on and the action's own input, then performs
// it once. Nothing is called on the platform when a check fails.
func (e *Executor) Execute(ctx context.Context, guildID string, action models.ModerationAction) (*Outcome, error) {
	log := cache.GetLogger().WithField("module", "mod").
		WithField("identity", string(e.Identity)).
		WithField("guild", guildID).
		WithField("action", action.Kind.String())

	required := models.RequiredPermission(action.Kind)
	if !e.Permissions.HasPermission(guildID, action.ActorID, required) {
		return nil, models.NewFailure(models.PermissionDenied, "You are not allowed to %s members.", action.Kind)
	}
	if !e.Permissions.HasPermission(guildID, e.BotUserID, required) {
		return nil, models.NewFailure(models.BotPermissionInsufficient,
			"I am missing the permission to %s members.", action.Kind)
	}

	if action.Reason == "" {
		action.Reason = models.DefaultReason
	}

	var outcome *Outcome
	var err error
	switch action.Kind {
	case models.ActionBan:
		outcome, err = e.ban(ctx, guildID, action)
	case models.ActionUnban:
		outcome, err = e.unban(ctx, guildID, action)
	case models.ActionKick:
		outcome, err = e.kick(ctx, guildID, action)
	case models.ActionMute:
		outcome, err = e.mute(ctx, guildID, action)
	case models.ActionUnmute:
		outcome, err = e.unmute(ctx, guildID, action)
	default:
		err = models.NewFailure(models.InvalidInput, "Unknown moderation action.")
	}
	if err != nil {
		metrics.ModerationFailures.Add(1)
		return nil, err
	}

	metrics.ModerationActions.Add(1)
	log.Infof("%s %s (#%s) by #%s, reason: %s",
		action.Kind, outcome.Target.Username, outcome.Target.ID, action.ActorID, action.Reason)
	outcome.Reply = e.confirmation(outcome)
	return outcome, nil
}

// target resolves a member that is present and below the bot in the role
// hierarchy
func (e *Executor) target(ctx context.Context, guildID string, action models.ModerationAction) (*models.Member, error) {
	userID, ok := helpers.ExtractUserID(action.TargetRef)
	if !ok {
		return nil, models.NewFailure(models.InvalidInput, "Please mention a member of this server.")
	}

	member, err := e.Directory.Member(ctx, guildID, userID)
	if errors.Cause(err) == ErrMemberNotFound {
		return nil, models.NewFailure(models.TargetNotModifiable, "That user is not a member of this server.")
	}
	if err != nil {
		return nil, e.external(guildID, action, errors.Wrap(err, "looking up member"))
	}

	if userID == e.BotUserID || !e.Permissions.CanModerate(guildID, e.BotUserID, userID) {
		return nil, models.NewFailure(models.TargetNotModifiable,
			"I can not %s **%s**, their highest role is not below mine.", action.Kind, member.Username)
	}
	return member, nil
}

// external logs and reports a platform failure and hides its details
func (e *Executor) external(guildID string, action models.ModerationAction, err error) error {
	cache.GetLogger().WithField("module", "mod").
		WithField("identity", string(e.Identity)).
		WithField("guild", guildID).
		WithField("action", action.Kind.String()).
		Error(err.Error())
	helpers.CaptureError(err, map[string]string{
		"guild":    guildID,
		"action":   action.Kind.String(),
		"identity": string(e.Identity),
	})
	return models.WrapFailure(err, models.ExternalServiceFailure, "")
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

var actionTitles = map[models.ActionKind]string{
	models.ActionBan:    "Member banned",
	models.ActionUnban:  "User unbanned",
	models.ActionKick:   "Member kicked",
	models.ActionMute:   "Member muted",
	models.ActionUnmute: "Member unmuted",
}

var actionColors = map[models.ActionKind]int{
	models.ActionBan:    0xf04747,
	models.ActionUnban:  0x43b581,
	models.ActionKick:   0xfaa61a,
	models.ActionMute:   0x747f8d,
	models.ActionUnmute: 0x43b581,
}

func (e *Executor) confirmation(outcome *Outcome) models.Reply {
	target := outcome.Target.Username
	if target == "" {
		target = "<@" + outcome.Target.ID + ">"
	}

	description := fmt.Sprintf("**Target:** %s (`#%s`)\n**Moderator:** <@%s>\n**Reason:** %s",
		target, outcome.Target.ID, outcome.Action.ActorID, outcome.Action.Reason)
	if outcome.Until != nil {
		description += fmt.Sprintf("\n**Duration:** %d minutes, ends %s",
			*outcome.Action.DurationMinutes, humanizeUntil(*outcome.Until, e.now()))
	}

	identity := e.IdentityName
	if identity == "" {
		identity = "Identity " + string(e.Identity)
	}
	return models.EmbedReply(models.Embed{
		Title:       actionTitles[outcome.Action.Kind],
		Description: description,
		Footer:      "Performed by " + identity,
		Color:       actionColors[outcome.Action.Kind],
	})
}
