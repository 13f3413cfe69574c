package plugins

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Seklfreak/Guildkeeper/cache"
	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/modules"
	"github.com/Seklfreak/Guildkeeper/store"
	"github.com/bwmarrin/discordgo"
	"github.com/renstrom/fuzzysearch/fuzzy"
)

const (
	maxTriggerLength  = 100
	maxResponseLength = 2000
	// suggestions within this edit distance are offered on misses
	suggestionDistance = 3
)

// AutoResponse manages the per identity trigger lists of a guild
type AutoResponse struct {
	store       *store.Store
	permissions modules.PermissionChecker
}

func NewAutoResponse(configs *store.Store, permissions modules.PermissionChecker) *AutoResponse {
	return &AutoResponse{store: configs, permissions: permissions}
}

func (a *AutoResponse) Commands() []*discordgo.ApplicationCommand {
	identityOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "identity",
		Description: "Which bot identity answers, defaults to this one",
		Choices:     a.identityChoices(),
	}
	triggerOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "trigger",
		Description: "Text that triggers the response, matched case insensitive",
		Required:    true,
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "autoresponse",
			Description: "Manage automatic responses",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add an automatic response",
					Options: []*discordgo.ApplicationCommandOption{
						triggerOption,
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "response",
							Description: "Reply text, or embed code like title=...|description=...|image=...",
							Required:    true,
						},
						identityOption,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove an automatic response",
					Options:     []*discordgo.ApplicationCommandOption{triggerOption, identityOption},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List automatic responses",
					Options:     []*discordgo.ApplicationCommandOption{identityOption},
				},
			},
		},
	}
}

func (a *AutoResponse) Private() bool {
	return true
}

func (a *AutoResponse) Action(ctx context.Context, invocation *modules.Invocation) (models.Reply, error) {
	if !a.permissions.HasPermission(invocation.GuildID, invocation.ActorID, models.PermissionManageGuild) {
		return models.Reply{}, models.NewFailure(models.PermissionDenied,
			"You need the Manage Server permission to change automatic responses.")
	}

	tag, err := a.identity(invocation)
	if err != nil {
		return models.Reply{}, err
	}

	switch invocation.Subcommand {
	case "add":
		return a.add(ctx, invocation, tag)
	case "remove":
		return a.remove(ctx, invocation, tag)
	case "list":
		return a.list(invocation, tag)
	}
	return models.Reply{}, models.NewFailure(models.InvalidInput, "Unknown subcommand `%s`.", invocation.Subcommand)
}

func (a *AutoResponse) add(ctx context.Context, invocation *modules.Invocation, tag models.IdentityTag) (models.Reply, error) {
	trigger, err := triggerOption(invocation)
	if err != nil {
		return models.Reply{}, err
	}

	response, _ := invocation.String("response")
	if utf8.RuneCountInString(response) > maxResponseLength {
		return models.Reply{}, models.NewFailure(models.InvalidInput,
			"Responses can be at most %d characters long.", maxResponseLength)
	}
	reply, err := helpers.ParseReply(response)
	if err != nil {
		return models.Reply{}, models.NewFailure(models.InvalidInput, "Please give a response text or valid embed code.")
	}
	if reply.Embed != nil && reply.Embed.ImageURL != "" && !helpers.IsImageURL(reply.Embed.ImageURL) {
		return models.Reply{}, models.NewFailure(models.InvalidInput, "The embed image has to be a direct link to an image.")
	}

	err = a.store.Update(ctx, invocation.GuildID, func(config *models.GuildConfig) error {
		if config.TriggerIndex(tag, trigger) >= 0 {
			return models.NewFailure(models.InvalidInput,
				"Identity %s already responds to `%s`, remove it first.", tag, trigger)
		}
		config.AutoResponses[tag] = append(config.AutoResponses[tag], models.Trigger{Trigger: trigger, Reply: reply})
		return nil
	})
	if err != nil {
		return models.Reply{}, err
	}

	cache.GetLogger().WithField("module", "autoresponse").WithField("guild", invocation.GuildID).Infof(
		"%s (#%s) added trigger %q for identity %s", invocation.ActorName, invocation.ActorID, trigger, tag)
	return models.TextReply(fmt.Sprintf("Identity %s will now respond to `%s`.", tag, trigger)), nil
}

func (a *AutoResponse) remove(ctx context.Context, invocation *modules.Invocation, tag models.IdentityTag) (models.Reply, error) {
	trigger, err := triggerOption(invocation)
	if err != nil {
		return models.Reply{}, err
	}

	err = a.store.Update(ctx, invocation.GuildID, func(config *models.GuildConfig) error {
		index := config.TriggerIndex(tag, trigger)
		if index < 0 {
			message := fmt.Sprintf("Identity %s has no response for `%s`.", tag, trigger)
			if suggestion, ok := suggestTrigger(trigger, config.AutoResponses[tag]); ok {
				message += fmt.Sprintf(" Did you mean `%s`?", suggestion)
			}
			return models.NewFailure(models.TargetNotFound, "%s", message)
		}
		triggers := config.AutoResponses[tag]
		config.AutoResponses[tag] = append(triggers[:index:index], triggers[index+1:]...)
		return nil
	})
	if err != nil {
		return models.Reply{}, err
	}

	cache.GetLogger().WithField("module", "autoresponse").WithField("guild", invocation.GuildID).Infof(
		"%s (#%s) removed trigger %q for identity %s", invocation.ActorName, invocation.ActorID, trigger, tag)
	return models.TextReply(fmt.Sprintf("Identity %s no longer responds to `%s`.", tag, trigger)), nil
}

func (a *AutoResponse) list(invocation *modules.Invocation, tag models.IdentityTag) (models.Reply, error) {
	config, _ := a.store.Get(invocation.GuildID)
	triggers := config.AutoResponses[tag]

	embed := models.Embed{
		Title:  fmt.Sprintf("Automatic responses of identity %s", tag),
		Footer: fmt.Sprintf("%d triggers, the first match wins", len(triggers)),
	}
	if len(triggers) == 0 {
		embed.Description = "No automatic responses set up yet."
		return models.EmbedReply(embed), nil
	}

	var description strings.Builder
	for i, trigger := range triggers {
		line := fmt.Sprintf("%d. `%s` → %s\n", i+1, trigger.Trigger, replyPreview(trigger.Reply))
		// embed descriptions are capped at 4096 characters
		if description.Len()+len(line) > 4000 {
			description.WriteString("…")
			break
		}
		description.WriteString(line)
	}
	embed.Description = description.String()
	return models.EmbedReply(embed), nil
}

func (a *AutoResponse) identity(invocation *modules.Invocation) (models.IdentityTag, error) {
	raw, ok := invocation.String("identity")
	if !ok {
		return invocation.Identity, nil
	}
	for _, tag := range a.store.Tags() {
		if strings.EqualFold(string(tag), raw) {
			return tag, nil
		}
	}
	return "", models.NewFailure(models.InvalidInput, "Unknown identity `%s`.", raw)
}

func (a *AutoResponse) identityChoices() (choices []*discordgo.ApplicationCommandOptionChoice) {
	for _, tag := range a.store.Tags() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  "Identity " + string(tag),
			Value: string(tag),
		})
	}
	return choices
}

func triggerOption(invocation *modules.Invocation) (string, error) {
	raw, _ := invocation.String("trigger")
	trigger := helpers.Normalize(raw)
	if trigger == "" {
		return "", models.NewFailure(models.InvalidInput, "The trigger can not be empty.")
	}
	if utf8.RuneCountInString(trigger) > maxTriggerLength {
		return "", models.NewFailure(models.InvalidInput, "Triggers can be at most %d characters long.", maxTriggerLength)
	}
	return trigger, nil
}

// suggestTrigger finds the closest existing trigger to a missed one
func suggestTrigger(missed string, triggers []models.Trigger) (string, bool) {
	candidates := make([]string, 0, len(triggers))
	for _, trigger := range triggers {
		candidates = append(candidates, trigger.Trigger)
	}

	if matches := fuzzy.FindFold(missed, candidates); len(matches) > 0 {
		return matches[0], true
	}

	best, bestDistance := "", suggestionDistance+1
	for _, candidate := range candidates {
		if distance := fuzzy.LevenshteinDistance(missed, candidate); distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best, best != ""
}

func replyPreview(reply models.Reply) string {
	var preview string
	switch reply.Kind() {
	case models.ReplyEmbed:
		preview = "[embed] " + reply.Embed.Title
		if reply.Embed.Title == "" {
			preview = "[embed] " + reply.Embed.Description
		}
	default:
		preview = reply.Text
	}
	preview = strings.Replace(preview, "\n", " ", -1)
	if utf8.RuneCountInString(preview) > 50 {
		preview = string([]rune(preview)[:50]) + "…"
	}
	return preview
}
