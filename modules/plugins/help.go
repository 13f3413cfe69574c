package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/modules"
	"github.com/bradfitz/slice"
	"github.com/bwmarrin/discordgo"
)

// Help lists the commands an identity has registered
type Help struct {
	commands func() []*discordgo.ApplicationCommand
}

func NewHelp(commands func() []*discordgo.ApplicationCommand) *Help {
	return &Help{commands: commands}
}

func (h *Help) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "List the bot's commands",
		},
		{
			Name:        "commands",
			Description: "List the bot's commands",
		},
	}
}

func (h *Help) Private() bool {
	return true
}

func (h *Help) Action(ctx context.Context, invocation *modules.Invocation) (models.Reply, error) {
	var lines []string
	for _, command := range h.commands() {
		subcommands := subcommandNames(command)
		if len(subcommands) == 0 {
			lines = append(lines, fmt.Sprintf("`/%s` %s", command.Name, command.Description))
			continue
		}
		for _, subcommand := range subcommands {
			lines = append(lines, fmt.Sprintf("`/%s %s` %s", command.Name, subcommand.Name, subcommand.Description))
		}
	}
	slice.Sort(lines, func(i, j int) bool {
		return lines[i] < lines[j]
	})

	name := invocation.IdentityName
	if name == "" {
		name = "Identity " + string(invocation.Identity)
	}
	return models.EmbedReply(models.Embed{
		Title:       fmt.Sprintf("Commands of %s", name),
		Description: strings.Join(lines, "\n"),
	}), nil
}

func subcommandNames(command *discordgo.ApplicationCommand) (subcommands []*discordgo.ApplicationCommandOption) {
	for _, option := range command.Options {
		if option.Type == discordgo.ApplicationCommandOptionSubCommand {
			subcommands = append(subcommands, option)
		}
	}
	return subcommands
}
