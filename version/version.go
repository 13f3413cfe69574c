package version

import "github.com/Seklfreak/Guildkeeper/cache"

// Version related vars
// Set by compiler
var (
	// BOT_VERSION example: 0.5.2-4-g205bbb8
	BOT_VERSION string = "DEV_SNAPSHOT"

	// BUILD_TIME example: Fri Jan  6 00:45:46 CET 2017
	BUILD_TIME string = "UNSET"

	// BUILD_USER example: sn0w
	BUILD_USER string = "UNSET"
)

// DumpInfo logs the build information
func DumpInfo() {
	cache.GetLogger().WithField("module", "version").
		WithField("built", BUILD_TIME).
		WithField("by", BUILD_USER).
		Info("Guildkeeper " + BOT_VERSION)
}
