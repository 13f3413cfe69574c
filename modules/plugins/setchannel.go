package plugins

import (
	"context"
	"fmt"

	"github.com/Seklfreak/Guildkeeper/cache"
	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/modules"
	"github.com/Seklfreak/Guildkeeper/store"
	"github.com/bwmarrin/discordgo"
)

// SetChannel configures the modlog and welcome channels and the welcome GIF
type SetChannel struct {
	store       *store.Store
	permissions modules.PermissionChecker
}

func NewSetChannel(configs *store.Store, permissions modules.PermissionChecker) *SetChannel {
	return &SetChannel{store: configs, permissions: permissions}
}

func (s *SetChannel) Commands() []*discordgo.ApplicationCommand {
	channelOption := func(description string) []*discordgo.ApplicationCommandOption {
		return []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  description,
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			},
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "setchannel",
			Description: "Configure channels used by the bot",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "modlog",
					Description: "Set the channel moderation actions and leaves are logged to",
					Options:     channelOption("The moderation log channel"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "welcome",
					Description: "Set the channel new members are welcomed in",
					Options:     channelOption("The welcome channel"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "welcome_gif",
					Description: "Set the GIF shown in welcome messages",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "url",
							Description: "Direct link to a GIF or image",
							Required:    true,
						},
					},
				},
			},
		},
	}
}

func (s *SetChannel) Private() bool {
	return true
}

func (s *SetChannel) Action(ctx context.Context, invocation *modules.Invocation) (models.Reply, error) {
	if !s.permissions.HasPermission(invocation.GuildID, invocation.ActorID, models.PermissionManageGuild) {
		return models.Reply{}, models.NewFailure(models.PermissionDenied,
			"You need the Manage Server permission to change the bot's channels.")
	}

	var mutate func(config *models.GuildConfig)
	var confirmation string

	switch invocation.Subcommand {
	case "modlog", "welcome":
		raw, _ := invocation.String("channel")
		channelID, ok := helpers.ExtractChannelID(raw)
		if !ok {
			return models.Reply{}, models.NewFailure(models.InvalidInput, "Please mention a channel of this server.")
		}
		if invocation.Subcommand == "modlog" {
			mutate = func(config *models.GuildConfig) { config.ModLogChannelID = channelID }
			confirmation = fmt.Sprintf("Moderation actions will be logged to <#%s>.", channelID)
		} else {
			mutate = func(config *models.GuildConfig) { config.WelcomeChannelID = channelID }
			confirmation = fmt.Sprintf("New members will be welcomed in <#%s>.", channelID)
		}
	case "welcome_gif":
		url, _ := invocation.String("url")
		if !helpers.IsImageURL(url) {
			return models.Reply{}, models.NewFailure(models.InvalidInput,
				"Please give a direct http(s) link to a GIF or image.")
		}
		mutate = func(config *models.GuildConfig) { config.WelcomeGifURL = url }
		confirmation = "Welcome messages will show the new GIF."
	default:
		return models.Reply{}, models.NewFailure(models.InvalidInput, "Unknown subcommand `%s`.", invocation.Subcommand)
	}

	err := s.store.Update(ctx, invocation.GuildID, func(config *models.GuildConfig) error {
		mutate(config)
		return nil
	})
	if err != nil {
		return models.Reply{}, err
	}

	cache.GetLogger().WithField("module", "setchannel").WithField("guild", invocation.GuildID).Infof(
		"%s (#%s) changed %s", invocation.ActorName, invocation.ActorID, invocation.Subcommand)
	return models.TextReply(confirmation), nil
}
