package helpers

import (
	"strconv"
	"strings"

	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// IsEmbedCode reports whether text uses the key=value|key=value embed syntax
func IsEmbedCode(embedText string) (isCode bool) {
	for _, key := range []string{"ptext=", "title=", "description=", "desc=", "footer=", "image=", "color=", "colour="} {
		if strings.Contains(embedText, key) {
			return true
		}
	}
	return false
}

// ParseEmbedCode parses title=...|description=...|footer=...|image=...|color=...
// into an Embed. ptext becomes the plain text of the reply.
func ParseEmbedCode(embedText string) (reply models.Reply, err error) {
	var ptext string
	var embed models.Embed

	embedValues := strings.Split(embedText, "|")
	for _, embedValue := range embedValues {
		embedValue = strings.TrimSpace(embedValue)
		switch {
		case strings.HasPrefix(embedValue, "ptext="):
			ptext = strings.TrimSpace(embedValue[6:])
		case strings.HasPrefix(embedValue, "title="):
			embed.Title = strings.TrimSpace(embedValue[6:])
		case strings.HasPrefix(embedValue, "description="):
			embed.Description = strings.TrimSpace(embedValue[12:])
		case strings.HasPrefix(embedValue, "desc="):
			embed.Description = strings.TrimSpace(embedValue[5:])
		case strings.HasPrefix(embedValue, "footer="):
			embed.Footer = strings.TrimSpace(embedValue[7:])
		case strings.HasPrefix(embedValue, "image="):
			embed.ImageURL = strings.TrimSpace(embedValue[6:])
		case strings.HasPrefix(embedValue, "colour="):
			embed.Color = GetDiscordColorFromHex(strings.TrimSpace(embedValue[7:]))
		case strings.HasPrefix(embedValue, "color="):
			embed.Color = GetDiscordColorFromHex(strings.TrimSpace(embedValue[6:]))
		case embed.Description == "":
			embed.Description = embedValue
		}
	}

	if embed.Title == "" && embed.Description == "" && embed.Footer == "" && embed.ImageURL == "" {
		if ptext == "" {
			return reply, errors.New("invalid embed code")
		}
		return models.TextReply(ptext), nil
	}

	reply = models.EmbedReply(embed)
	reply.Text = ptext
	return reply, nil
}

// ParseReply turns user input into a reply, embed code becomes an embed
func ParseReply(text string) (models.Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Reply{}, errors.New("empty reply")
	}
	if IsEmbedCode(text) {
		return ParseEmbedCode(text)
	}
	return models.TextReply(text), nil
}

// GetDiscordColorFromHex parses #rrggbb (or rrggbb), invalid input is 0
func GetDiscordColorFromHex(hex string) int {
	colour, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 64)
	if err != nil || colour < 0 || colour > 0xFFFFFF {
		return 0
	}
	return int(colour)
}

// DiscordEmbed converts an Embed to the discordgo representation
func DiscordEmbed(embed *models.Embed) *discordgo.MessageEmbed {
	if embed == nil {
		return nil
	}
	discordEmbed := &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		Color:       embed.Color,
	}
	if embed.Footer != "" {
		discordEmbed.Footer = &discordgo.MessageEmbedFooter{Text: embed.Footer}
	}
	if embed.ImageURL != "" {
		discordEmbed.Image = &discordgo.MessageEmbedImage{URL: embed.ImageURL}
	}
	return discordEmbed
}
