package bot

import (
	"sync"

	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// interactionResponder answers a slash command with a deferred response that
// is edited once the command finished
type interactionResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu      sync.Mutex
	private bool
}

func (r *interactionResponder) Acknowledge(private bool) error {
	r.mu.Lock()
	r.private = private
	r.mu.Unlock()

	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if private {
		response.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return errors.Wrap(r.session.InteractionRespond(r.interaction, response), "deferring interaction response")
}

func (r *interactionResponder) Finalize(reply models.Reply) error {
	content := reply.Text
	embeds := []*discordgo.MessageEmbed{}
	if reply.Embed != nil {
		embeds = append(embeds, helpers.DiscordEmbed(reply.Embed))
	}
	if content == "" && len(embeds) == 0 {
		content = "Done."
	}

	_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{
		Content: &content,
		Embeds:  &embeds,
	})
	return errors.Wrap(err, "editing interaction response")
}

// Fail keeps failures private: a public acknowledgement is removed and the
// message is sent as an ephemeral follow up instead
func (r *interactionResponder) Fail(message string) error {
	r.mu.Lock()
	private := r.private
	r.mu.Unlock()

	if private {
		_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{Content: &message})
		return errors.Wrap(err, "editing interaction response")
	}

	if err := r.session.InteractionResponseDelete(r.interaction); err != nil {
		return errors.Wrap(err, "deleting interaction response")
	}
	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content: message,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	return errors.Wrap(err, "sending follow up message")
}
