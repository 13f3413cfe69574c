package plugins

import (
	"strings"

	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/store"
)

// AutoResponder finds the reply for a chat message
type AutoResponder struct {
	store *store.Store
}

func NewAutoResponder(configs *store.Store) *AutoResponder {
	return &AutoResponder{store: configs}
}

// Match returns the reply of the first of tag's triggers in guildID that is a
// substring of the normalised body. Triggers are tried in the order they were
// added. Guilds without a config have no triggers.
func (a *AutoResponder) Match(tag models.IdentityTag, guildID, body string) (reply models.Reply, ok bool) {
	config, ok := a.store.Get(guildID)
	if !ok {
		return reply, false
	}

	normalized := helpers.Normalize(body)
	if normalized == "" {
		return reply, false
	}

	for _, trigger := range config.AutoResponses[tag] {
		if trigger.Trigger == "" {
			continue
		}
		if strings.Contains(normalized, trigger.Trigger) {
			return trigger.Reply, true
		}
	}
	return reply, false
}
