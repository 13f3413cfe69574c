package models

import "time"

// ActionKind is one of the moderation actions
type ActionKind int

const (
	ActionBan ActionKind = iota
	ActionUnban
	ActionKick
	ActionMute
	ActionUnmute
)

const (
	// DefaultReason is used when a moderator gives none
	DefaultReason = "No reason provided"

	// DefaultMuteMinutes is the timeout length when no duration is given
	DefaultMuteMinutes = 10

	// MaxTimeout is the longest timeout the platform accepts
	MaxTimeout = 28 * 24 * time.Hour
)

var actionNames = map[ActionKind]string{
	ActionBan:    "ban",
	ActionUnban:  "unban",
	ActionKick:   "kick",
	ActionMute:   "mute",
	ActionUnmute: "unmute",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return "unknown"
}

// ActionKindFromName resolves a command name, ok is false for unknown names
func ActionKindFromName(name string) (kind ActionKind, ok bool) {
	for kind, actionName := range actionNames {
		if actionName == name {
			return kind, true
		}
	}
	return 0, false
}

// ModerationAction is created per command invocation and never stored
type ModerationAction struct {
	Kind    ActionKind
	ActorID string
	// TargetRef is a user ID, for unbans it is the raw user input
	TargetRef       string
	Reason          string
	DurationMinutes *int
}

// Member is the slice of guild member state moderation needs
type Member struct {
	ID            string
	Username      string
	Bot           bool
	TimedOutUntil *time.Time
}

// TimedOut reports whether the member has a timeout active at now
func (m Member) TimedOut(now time.Time) bool {
	return m.TimedOutUntil != nil && m.TimedOutUntil.After(now)
}
