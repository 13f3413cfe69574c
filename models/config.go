package models

// IdentityTag names one of the bot identities sharing a config store
type IdentityTag string

const (
	IdentityA IdentityTag = "A"
	IdentityB IdentityTag = "B"
)

// DefaultIdentityTags are used when the bot config does not list identities
var DefaultIdentityTags = []IdentityTag{IdentityA, IdentityB}

// Trigger binds a lower-cased substring to a reply. Triggers are kept in
// registration order, the first matching one wins.
type Trigger struct {
	Trigger string `json:"trigger"`
	Reply   Reply  `json:"reply"`
}

// GuildConfig is the persisted per guild configuration
type GuildConfig struct {
	GuildID          string                    `json:"guildId"`
	AutoResponses    map[IdentityTag][]Trigger `json:"autoResponses"`
	ModLogChannelID  string                    `json:"modLogChannelId,omitempty"`
	WelcomeChannelID string                    `json:"welcomeChannelId,omitempty"`
	WelcomeGifURL    string                    `json:"welcomeGifUrl,omitempty"`
}

// Default returns an empty config for guild with a trigger list for every tag
func (c GuildConfig) Default(guild string, tags []IdentityTag) GuildConfig {
	config := GuildConfig{
		GuildID:       guild,
		AutoResponses: make(map[IdentityTag][]Trigger, len(tags)),
	}
	for _, tag := range tags {
		config.AutoResponses[tag] = []Trigger{}
	}
	return config
}

// Copy returns a deep copy, trigger slices included
func (c GuildConfig) Copy() GuildConfig {
	copied := c
	if c.AutoResponses != nil {
		copied.AutoResponses = make(map[IdentityTag][]Trigger, len(c.AutoResponses))
		for tag, triggers := range c.AutoResponses {
			list := make([]Trigger, len(triggers))
			for i, trigger := range triggers {
				list[i] = Trigger{Trigger: trigger.Trigger, Reply: trigger.Reply.Copy()}
			}
			copied.AutoResponses[tag] = list
		}
	}
	return copied
}

// TriggerIndex returns the position of trigger in the tag's list or -1
func (c GuildConfig) TriggerIndex(tag IdentityTag, trigger string) int {
	for i, entry := range c.AutoResponses[tag] {
		if entry.Trigger == trigger {
			return i
		}
	}
	return -1
}
