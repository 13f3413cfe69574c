package modules

import (
	"context"
	"fmt"

	"github.com/Seklfreak/Guildkeeper/cache"
	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/metrics"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/bwmarrin/discordgo"
)

const genericFailure = "Something went wrong while handling your command, please try again later. (`%s`)"

// Dispatcher routes command invocations of one identity to its plugins
type Dispatcher struct {
	identity models.IdentityTag
	plugins  map[string]Plugin
	commands []*discordgo.ApplicationCommand
	members  []MemberPlugin
}

func NewDispatcher(identity models.IdentityTag) *Dispatcher {
	return &Dispatcher{
		identity: identity,
		plugins:  make(map[string]Plugin),
	}
}

// Register adds plugin under every command name it declares. Plugins that
// also implement MemberPlugin receive member events.
func (d *Dispatcher) Register(plugin Plugin) {
	for _, command := range plugin.Commands() {
		d.plugins[command.Name] = plugin
		d.commands = append(d.commands, command)
	}
	if memberPlugin, ok := plugin.(MemberPlugin); ok {
		d.members = append(d.members, memberPlugin)
	}
}

// RegisterMemberPlugin adds a plugin without commands that wants member events
func (d *Dispatcher) RegisterMemberPlugin(plugin MemberPlugin) {
	d.members = append(d.members, plugin)
}

// Commands lists every registered command in registration order
func (d *Dispatcher) Commands() []*discordgo.ApplicationCommand {
	return append([]*discordgo.ApplicationCommand(nil), d.commands...)
}

// Acknowledge is the first phase, it must return quickly
func (d *Dispatcher) Acknowledge(invocation *Invocation, responder Responder) error {
	plugin, ok := d.plugins[invocation.Command]
	if !ok {
		return responder.Acknowledge(true)
	}
	return responder.Acknowledge(plugin.Private())
}

// Run is the second phase: it executes the command and finalizes the reply.
// Every error and panic ends up as a private failure message.
func (d *Dispatcher) Run(ctx context.Context, invocation *Invocation, responder Responder) {
	log := cache.GetLogger().WithField("module", "modules").
		WithField("identity", string(d.identity)).
		WithField("guild", invocation.GuildID).
		WithField("invocation", invocation.ID).
		WithField("command", invocation.FullCommand())

	metrics.CommandsExecuted.Add(1)

	reply, err := d.run(ctx, invocation)
	if err != nil {
		metrics.CommandFailures.Add(1)
		kind := models.KindOf(err)
		log.WithField("kind", kind.String()).Warn(err.Error())

		if err = responder.Fail(FailureMessage(err, invocation.ID)); err != nil {
			log.Error("sending failure reply failed: ", err.Error())
		}
		return
	}

	log.Debug("command completed")
	if err = responder.Finalize(reply); err != nil {
		log.Error("finalizing reply failed: ", err.Error())
	}
}

// Handle runs both phases back to back
func (d *Dispatcher) Handle(ctx context.Context, invocation *Invocation, responder Responder) {
	if err := d.Acknowledge(invocation, responder); err != nil {
		cache.GetLogger().WithField("module", "modules").WithField("invocation", invocation.ID).Error(
			"acknowledging interaction failed: ", err.Error())
		return
	}
	d.Run(ctx, invocation, responder)
}

// MemberAdded fans a join event out to member plugins
func (d *Dispatcher) MemberAdded(ctx context.Context, guildID string, member models.Member) {
	for _, plugin := range d.members {
		d.runMemberPlugin(guildID, func() error {
			return plugin.OnGuildMemberAdd(ctx, guildID, member)
		})
	}
}

// MemberRemoved fans a leave event out to member plugins
func (d *Dispatcher) MemberRemoved(ctx context.Context, guildID string, member models.Member) {
	for _, plugin := range d.members {
		d.runMemberPlugin(guildID, func() error {
			return plugin.OnGuildMemberRemove(ctx, guildID, member)
		})
	}
}

func (d *Dispatcher) runMemberPlugin(guildID string, call func() error) {
	err := func() (err error) {
		defer helpers.RecoverError(&err, map[string]string{"guild": guildID})
		return call()
	}()
	if err != nil {
		cache.GetLogger().WithField("module", "modules").WithField("guild", guildID).Error(
			"member event handler failed: ", err.Error())
	}
}

func (d *Dispatcher) run(ctx context.Context, invocation *Invocation) (reply models.Reply, err error) {
	defer helpers.RecoverError(&err, map[string]string{
		"guild":      invocation.GuildID,
		"command":    invocation.FullCommand(),
		"invocation": invocation.ID,
	})

	plugin, ok := d.plugins[invocation.Command]
	if !ok {
		return reply, models.NewFailure(models.InvalidInput, "Unknown command `%s`.", invocation.Command)
	}
	return plugin.Action(ctx, invocation)
}

// FailureMessage is the caller visible text for err. Transport details are
// never shown, external and storage failures get a generic message.
func FailureMessage(err error, invocationID string) string {
	failure, ok := models.AsFailure(err)
	if !ok || failure.Kind == models.ExternalServiceFailure || failure.Kind == models.ConfigIOFailure ||
		failure.Message == "" {
		return fmt.Sprintf(genericFailure, invocationID)
	}
	return failure.Message
}
