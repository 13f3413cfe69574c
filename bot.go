package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/Seklfreak/Guildkeeper/cache"
	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/store"
	"github.com/bwmarrin/discordgo"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// readConfig parses the config file. A missing file runs the defaults.
func readConfig(path string) (helpers.BotConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cache.GetLogger().WithField("module", "launcher").Warnf("no config at %s, using defaults", path)
		return helpers.ParseBotConfig(nil)
	}

	json, err := helpers.LoadConfig(path)
	if err != nil {
		return helpers.BotConfig{}, err
	}
	return helpers.ParseBotConfig(json)
}

// newBackend creates the configured storage backend for guild configs
func newBackend(config helpers.StoreConfig) (store.Backend, error) {
	switch config.Backend {
	case helpers.StoreBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Address,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		if err := client.Ping().Err(); err != nil {
			return nil, errors.Wrap(err, "connecting to redis")
		}
		return store.NewRedisBackend(client, config.Redis.Key), nil
	case helpers.StoreBackendMinio:
		return store.NewMinioBackend(
			config.Minio.Endpoint,
			config.Minio.AccessKey,
			config.Minio.SecretKey,
			config.Minio.Bucket,
			config.Minio.Object,
			config.Minio.Secure,
		)
	default:
		return store.NewFileBackend(config.Path), nil
	}
}

// setupDiscordLogger routes discordgo's log output through logrus
func setupDiscordLogger(log *logrus.Logger) {
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		pc, file, line, _ := runtime.Caller(caller)

		files := strings.Split(file, "/")
		file = files[len(files)-1]

		name := runtime.FuncForPC(pc).Name()
		fns := strings.Split(name, ".")
		name = fns[len(fns)-1]

		msg := format
		if strings.Contains(msg, "%") {
			msg = fmt.Sprintf(format, a...)
		}

		switch msgL {
		case discordgo.LogError:
			log.WithField("module", "discordgo").Errorf("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogWarning:
			log.WithField("module", "discordgo").Warnf("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogInformational:
			log.WithField("module", "discordgo").Infof("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogDebug:
			log.WithField("module", "discordgo").Debugf("%s:%d:%s() %s", file, line, name, msg)
		}
	}
}
