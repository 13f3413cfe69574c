package metrics

import (
	"expvar"
	"net/http"
	"runtime"
	"time"

	"github.com/Seklfreak/Guildkeeper/cache"
)

var (
	// MessagesReceived counts guild messages seen by any identity
	MessagesReceived = expvar.NewInt("messages_received")

	// AutoResponsesSent counts trigger replies
	AutoResponsesSent = expvar.NewInt("autoresponses_sent")

	// CommandsExecuted increases after each command invocation
	CommandsExecuted = expvar.NewInt("commands_executed")

	// CommandFailures counts invocations that ended in a failure reply
	CommandFailures = expvar.NewInt("command_failures")

	// ModerationActions counts successful privileged calls
	ModerationActions = expvar.NewInt("moderation_actions")

	// ModerationFailures counts privileged calls the platform rejected
	ModerationFailures = expvar.NewInt("moderation_failures")

	// ConfigSaves counts successful writes of the guild config document
	ConfigSaves = expvar.NewInt("config_saves")

	// ConfigSaveFailures counts failed writes of the guild config document
	ConfigSaveFailures = expvar.NewInt("config_save_failures")

	// IdentitiesConnected is the number of identities with an open session
	IdentitiesConnected = expvar.NewInt("identities_connected")

	// CoroutineCount counts all running goroutines
	CoroutineCount = expvar.NewInt("coroutine_count")

	// Uptime stores the timestamp of the bot's boot
	Uptime = expvar.NewInt("uptime")
)

// Init serves /debug/vars on listenIP:1337, an empty listenIP disables it
func Init(listenIP string) {
	Uptime.Set(time.Now().Unix())
	go CollectRuntimeMetrics()

	if listenIP == "" {
		return
	}

	cache.GetLogger().WithField("module", "metrics").Info("Listening on TCP/1337")
	go func() {
		err := http.ListenAndServe(listenIP+":1337", nil)
		if err != nil {
			cache.GetLogger().WithField("module", "metrics").Error("metrics server stopped: ", err.Error())
		}
	}()
}

// CollectRuntimeMetrics counts all running goroutines
func CollectRuntimeMetrics() {
	for {
		CoroutineCount.Set(int64(runtime.NumGoroutine()))
		time.Sleep(15 * time.Second)
	}
}
