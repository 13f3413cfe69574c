package helpers

import (
	"fmt"
	"os"
	"strings"

	"github.com/Jeffail/gabs"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/pkg/errors"
)

const (
	StoreBackendFile  = "file"
	StoreBackendRedis = "redis"
	StoreBackendMinio = "minio"
)

type IdentityConfig struct {
	Tag      models.IdentityTag
	Name     string
	TokenEnv string
	// Token is resolved from TokenEnv, never read from the file
	Token string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Key      string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Object    string
	Secure    bool
}

type StoreConfig struct {
	Backend string
	Path    string
	Redis   RedisConfig
	Minio   MinioConfig
}

// BotConfig is the typed form of config.json
type BotConfig struct {
	Debug             bool
	Sentry            string
	MetricsIP         string
	LogJSONFile       string
	LogDiscordWebhook string
	RatelimitEnabled  bool
	Store             StoreConfig
	Identities        []IdentityConfig
}

// DefaultBotConfig runs identities A and B on a local JSON document
func DefaultBotConfig() BotConfig {
	config := BotConfig{
		RatelimitEnabled: true,
		Store: StoreConfig{
			Backend: StoreBackendFile,
			Path:    "guild_configs.json",
			Redis:   RedisConfig{Address: "localhost:6379", Key: "guildkeeper:guild_configs"},
			Minio:   MinioConfig{Bucket: "guildkeeper", Object: "guild_configs.json", Secure: true},
		},
	}
	for _, tag := range models.DefaultIdentityTags {
		config.Identities = append(config.Identities, IdentityConfig{
			Tag:      tag,
			Name:     "Bot " + string(tag),
			TokenEnv: "DISCORD_TOKEN_" + string(tag),
		})
	}
	return config
}

// LoadConfig reads the JSON config at path
func LoadConfig(path string) (*gabs.Container, error) {
	json, err := gabs.ParseJSONFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	return json, nil
}

// ParseBotConfig overlays the values in json on DefaultBotConfig
func ParseBotConfig(json *gabs.Container) (BotConfig, error) {
	config := DefaultBotConfig()
	if json == nil {
		return config, nil
	}

	config.Debug = boolAt(json, "debug", config.Debug)
	config.Sentry = stringAt(json, "sentry", config.Sentry)
	config.MetricsIP = stringAt(json, "metrics_ip", config.MetricsIP)
	config.LogJSONFile = stringAt(json, "logging.jsonfile", config.LogJSONFile)
	config.LogDiscordWebhook = stringAt(json, "logging.discord_webhook", config.LogDiscordWebhook)
	config.RatelimitEnabled = boolAt(json, "ratelimit.enabled", config.RatelimitEnabled)

	config.Store.Backend = stringAt(json, "store.backend", config.Store.Backend)
	config.Store.Path = stringAt(json, "store.path", config.Store.Path)
	config.Store.Redis.Address = stringAt(json, "store.redis.address", config.Store.Redis.Address)
	config.Store.Redis.Password = stringAt(json, "store.redis.password", config.Store.Redis.Password)
	config.Store.Redis.DB = intAt(json, "store.redis.db", config.Store.Redis.DB)
	config.Store.Redis.Key = stringAt(json, "store.redis.key", config.Store.Redis.Key)
	config.Store.Minio.Endpoint = stringAt(json, "store.minio.endpoint", config.Store.Minio.Endpoint)
	config.Store.Minio.AccessKey = stringAt(json, "store.minio.access_key", config.Store.Minio.AccessKey)
	config.Store.Minio.SecretKey = stringAt(json, "store.minio.secret_key", config.Store.Minio.SecretKey)
	config.Store.Minio.Bucket = stringAt(json, "store.minio.bucket", config.Store.Minio.Bucket)
	config.Store.Minio.Object = stringAt(json, "store.minio.object", config.Store.Minio.Object)
	config.Store.Minio.Secure = boolAt(json, "store.minio.secure", config.Store.Minio.Secure)

	if json.ExistsP("identities") {
		children, err := json.Path("identities").Children()
		if err != nil {
			return config, errors.Wrap(err, "identities must be an array")
		}
		config.Identities = nil
		for i, child := range children {
			tag := strings.ToUpper(stringAt(child, "tag", ""))
			if tag == "" {
				return config, fmt.Errorf("identity #%d has no tag", i)
			}
			config.Identities = append(config.Identities, IdentityConfig{
				Tag:      models.IdentityTag(tag),
				Name:     stringAt(child, "name", "Bot "+tag),
				TokenEnv: stringAt(child, "token_env", "DISCORD_TOKEN_"+tag),
			})
		}
	}

	return config, config.Validate()
}

// Validate checks the parts of the config that would otherwise fail late
func (c BotConfig) Validate() error {
	if len(c.Identities) == 0 {
		return errors.New("no identities configured")
	}
	seen := make(map[models.IdentityTag]bool, len(c.Identities))
	for _, identity := range c.Identities {
		if seen[identity.Tag] {
			return fmt.Errorf("identity tag %s configured twice", identity.Tag)
		}
		seen[identity.Tag] = true
	}

	switch c.Store.Backend {
	case StoreBackendFile:
		if c.Store.Path == "" {
			return errors.New("store.path is required for the file backend")
		}
	case StoreBackendRedis:
		if c.Store.Redis.Address == "" || c.Store.Redis.Key == "" {
			return errors.New("store.redis.address and store.redis.key are required")
		}
	case StoreBackendMinio:
		if c.Store.Minio.Endpoint == "" || c.Store.Minio.Bucket == "" || c.Store.Minio.Object == "" {
			return errors.New("store.minio.endpoint, bucket and object are required")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// IdentityTags lists the configured tags in order
func (c BotConfig) IdentityTags() []models.IdentityTag {
	tags := make([]models.IdentityTag, 0, len(c.Identities))
	for _, identity := range c.Identities {
		tags = append(tags, identity.Tag)
	}
	return tags
}

// ResolveTokens fills Token for every identity using lookup (os.Getenv if nil)
func (c *BotConfig) ResolveTokens(lookup func(string) string) {
	if lookup == nil {
		lookup = os.Getenv
	}
	for i := range c.Identities {
		c.Identities[i].Token = strings.TrimSpace(lookup(c.Identities[i].TokenEnv))
	}
}

func stringAt(json *gabs.Container, path string, fallback string) string {
	if value, ok := json.Path(path).Data().(string); ok {
		return value
	}
	return fallback
}

func boolAt(json *gabs.Container, path string, fallback bool) bool {
	if value, ok := json.Path(path).Data().(bool); ok {
		return value
	}
	return fallback
}

func intAt(json *gabs.Container, path string, fallback int) int {
	if value, ok := json.Path(path).Data().(float64); ok {
		return int(value)
	}
	return fallback
}
