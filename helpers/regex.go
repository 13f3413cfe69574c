package helpers

import "regexp"

var (
	// SnowflakeRegex matches platform IDs for guilds, channels and users
	SnowflakeRegex = regexp.MustCompile(`^\d{17,20}$`)

	// UserRegexStrict matches Discord User Mentions
	// Source: https://github.com/b1naryth1ef/disco/blob/master/disco/bot/command.py#L15
	UserRegexStrict = regexp.MustCompile(`^<@!?(\d{17,20})>$`)

	// ChannelRegexStrict matches Discord Channel Mentions
	// Source: https://github.com/b1naryth1ef/disco/blob/master/disco/bot/command.py#L17
	ChannelRegexStrict = regexp.MustCompile(`^<#(\d{17,20})>$`)
)

// IsSnowflake checks if id looks like a platform ID
func IsSnowflake(id string) bool {
	return SnowflakeRegex.MatchString(id)
}

// ExtractChannelID accepts a raw ID or a channel mention
func ExtractChannelID(input string) (id string, ok bool) {
	if IsSnowflake(input) {
		return input, true
	}
	if matches := ChannelRegexStrict.FindStringSubmatch(input); len(matches) == 2 {
		return matches[1], true
	}
	return "", false
}

// ExtractUserID accepts a raw ID or a user mention
func ExtractUserID(input string) (id string, ok bool) {
	if IsSnowflake(input) {
		return input, true
	}
	if matches := UserRegexStrict.FindStringSubmatch(input); len(matches) == 2 {
		return matches[1], true
	}
	return "", false
}
