package mod

import (
	"context"

	"github.com/Seklfreak/Guildkeeper/cache"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/modules"
	"github.com/Seklfreak/Guildkeeper/store"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

var (
	reasonOption = &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Why, shown in the audit log",
	}
	memberOption = &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: "The member",
		Required:    true,
	}
)

// Mod exposes the Executor as ban, unban, kick, mute and unmute commands and
// posts successful actions to the guild's modlog channel
type Mod struct {
	executor *Executor
	store    *store.Store
	sender   modules.Sender
}

func NewMod(executor *Executor, configs *store.Store, sender modules.Sender) *Mod {
	return &Mod{executor: executor, store: configs, sender: sender}
}

func (m *Mod) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "ban",
			Description: "Ban a member",
			Options:     []*discordgo.ApplicationCommandOption{memberOption, reasonOption},
		},
		{
			Name:        "unban",
			Description: "Lift a ban",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "user_id",
					Description: "ID of the banned user",
					Required:    true,
				},
				reasonOption,
			},
		},
		{
			Name:        "kick",
			Description: "Kick a member",
			Options:     []*discordgo.ApplicationCommandOption{memberOption, reasonOption},
		},
		{
			Name:        "mute",
			Description: "Time out a member",
			Options: []*discordgo.ApplicationCommandOption{
				memberOption,
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "duration",
					Description: "Minutes, defaults to 10",
				},
				reasonOption,
			},
		},
		{
			Name:        "unmute",
			Description: "Lift a member's time out",
			Options:     []*discordgo.ApplicationCommandOption{memberOption, reasonOption},
		},
	}
}

func (m *Mod) Private() bool {
	return false
}

func (m *Mod) Action(ctx context.Context, invocation *modules.Invocation) (models.Reply, error) {
	action, err := ParseAction(invocation)
	if err != nil {
		return models.Reply{}, err
	}

	outcome, err := m.executor.Execute(ctx, invocation.GuildID, action)
	if err != nil {
		return models.Reply{}, err
	}

	m.postModLog(ctx, invocation.GuildID, outcome)
	return outcome.Reply, nil
}

// ParseAction builds the moderation action an invocation asks for
func ParseAction(invocation *modules.Invocation) (action models.ModerationAction, err error) {
	kind, ok := models.ActionKindFromName(invocation.Command)
	if !ok {
		return action, models.NewFailure(models.InvalidInput, "Unknown command `%s`.", invocation.Command)
	}
	action = models.ModerationAction{
		Kind:    kind,
		ActorID: invocation.ActorID,
	}
	action.Reason, _ = invocation.String("reason")

	targetOption := "user"
	if kind == models.ActionUnban {
		targetOption = "user_id"
	}
	action.TargetRef, ok = invocation.String(targetOption)
	if !ok {
		return action, models.NewFailure(models.InvalidInput, "Please give a user.")
	}

	if kind == models.ActionMute {
		minutes, given, err := invocation.Int("duration")
		if err != nil {
			return action, models.NewFailure(models.InvalidInput, "The duration has to be a whole number of minutes.")
		}
		if given {
			action.DurationMinutes = &minutes
		}
	}
	return action, nil
}

// postModLog failures are logged only, the action itself succeeded
func (m *Mod) postModLog(ctx context.Context, guildID string, outcome *Outcome) {
	config, ok := m.store.Get(guildID)
	if !ok || config.ModLogChannelID == "" {
		return
	}

	if err := m.sender.SendReply(ctx, config.ModLogChannelID, outcome.Reply); err != nil {
		cache.GetLogger().WithField("module", "mod").WithField("guild", guildID).Warn(
			errors.Wrap(err, "posting to modlog failed").Error())
	}
}
