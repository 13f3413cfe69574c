package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Seklfreak/Guildkeeper/bot"
	"github.com/Seklfreak/Guildkeeper/cache"
	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/logging"
	"github.com/Seklfreak/Guildkeeper/metrics"
	"github.com/Seklfreak/Guildkeeper/ratelimits"
	"github.com/Seklfreak/Guildkeeper/store"
	"github.com/Seklfreak/Guildkeeper/version"
	"github.com/getsentry/raven-go"
	"github.com/kz/discordrus"
	"github.com/sirupsen/logrus"
)

// Entrypoint
func main() {
	configPath := flag.String("config", "config.json", "path to the bot config")
	flag.Parse()

	log := logrus.New()
	log.Out = os.Stdout
	log.Level = logrus.InfoLevel
	log.Formatter = &logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339}
	log.Hooks = make(logrus.LevelHooks)
	cache.SetLogger(log)

	// Read config
	config, err := readConfig(*configPath)
	if err != nil {
		log.WithField("module", "launcher").Fatal(err.Error())
	}
	config.ResolveTokens(os.Getenv)

	// Check if the bot is being debugged
	if config.Debug {
		helpers.DEBUG_MODE = true
		log.Level = logrus.DebugLevel
	}

	if config.LogJSONFile != "" {
		fileHook, err := logging.NewLogrusFileHook(config.LogJSONFile, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
		if err != nil {
			log.WithField("module", "launcher").Error("logrus file hook failed, err:", err.Error())
		} else {
			log.Hooks.Add(fileHook)
			defer fileHook.Close()
		}
	}

	if config.LogDiscordWebhook != "" {
		log.Hooks.Add(discordrus.NewHook(
			config.LogDiscordWebhook,
			logrus.ErrorLevel,
			&discordrus.Opts{
				Username:           "Logging",
				DisableTimestamp:   false,
				TimestampFormat:    "Jan 2 15:04:05.00000",
				EnableCustomColors: true,
				CustomLevelColors: &discordrus.LevelColors{
					Error: 13631488,
					Panic: 13631488,
					Fatal: 13631488,
				},
			},
		))
	}

	log.WithField("module", "launcher").Info("Booting Guildkeeper...")
	version.DumpInfo()

	// Start metric server
	metrics.Init(config.MetricsIP)

	// Call home
	if config.Sentry != "" {
		if err = raven.SetDSN(config.Sentry); err != nil {
			log.WithField("module", "launcher").Fatal("invalid sentry DSN: ", err.Error())
		}
		raven.SetRelease(version.BOT_VERSION)
		log.WithField("module", "launcher").Info("[SENTRY] Someone picked up the phone \\^-^/")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Read guild configs
	backend, err := newBackend(config.Store)
	if err != nil {
		raven.CaptureErrorAndWait(err, nil)
		log.WithField("module", "launcher").Fatal(err.Error())
	}
	configs := store.New(backend, config.IdentityTags())
	if err = configs.Load(ctx); err != nil {
		// the store keeps working in memory, saves retry on every change
		log.WithField("module", "launcher").Error("starting without persisted guild configs: ", err.Error())
	}

	// Connect identities
	setupDiscordLogger(log)
	var limiter *ratelimits.BucketContainer
	if config.RatelimitEnabled {
		limiter = ratelimits.NewBucketContainer()
	}
	supervisor := bot.NewSupervisor(config.Identities, configs, bot.DialDiscord, limiter)
	if supervisor.Start(ctx) == 0 {
		log.WithField("module", "launcher").Fatal("no identity is running, set at least one of the token variables")
	}

	// Make a channel that waits for a os signal
	botRuntimeChannel := make(chan os.Signal, 1)
	signal.Notify(botRuntimeChannel, os.Interrupt, syscall.SIGTERM)

	// Wait until the os wants us to shutdown
	<-botRuntimeChannel

	log.WithField("module", "launcher").Info("Guildkeeper is stopping")
	supervisor.Close()

	// Final save for changes whose write failed earlier
	if !configs.Dirty() {
		return
	}
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer saveCancel()
	if err = configs.Save(saveCtx); err != nil {
		raven.CaptureErrorAndWait(err, nil)
	}
}
