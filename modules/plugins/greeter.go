package plugins

import (
	"context"
	"fmt"

	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/modules"
	"github.com/Seklfreak/Guildkeeper/store"
)

const welcomeColor = 0x43b581

// Greeter welcomes joining members and logs leaves to the modlog channel.
// Only the primary identity registers it so guilds get one message per event.
type Greeter struct {
	store  *store.Store
	sender modules.Sender
}

func NewGreeter(configs *store.Store, sender modules.Sender) *Greeter {
	return &Greeter{store: configs, sender: sender}
}

func (g *Greeter) OnGuildMemberAdd(ctx context.Context, guildID string, member models.Member) error {
	config, ok := g.store.Get(guildID)
	if !ok || config.WelcomeChannelID == "" || member.Bot {
		return nil
	}

	return g.sender.SendReply(ctx, config.WelcomeChannelID, models.Reply{
		Text: fmt.Sprintf("<@%s>", member.ID),
		Embed: &models.Embed{
			Title:       "Welcome!",
			Description: fmt.Sprintf("Welcome to the server, **%s**! Make yourself at home.", member.Username),
			ImageURL:    config.WelcomeGifURL,
			Color:       welcomeColor,
		},
	})
}

func (g *Greeter) OnGuildMemberRemove(ctx context.Context, guildID string, member models.Member) error {
	config, ok := g.store.Get(guildID)
	if !ok || config.ModLogChannelID == "" {
		return nil
	}

	return g.sender.SendReply(ctx, config.ModLogChannelID, models.TextReply(
		fmt.Sprintf(":outbox_tray: **%s** (`#%s`) left the server.", member.Username, member.ID)))
}
