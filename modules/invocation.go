package modules

import (
	"strconv"
	"strings"

	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/pkg/errors"
)

// Invocation is one command interaction, decoupled from the transport
type Invocation struct {
	// ID correlates log lines and failure replies
	ID string

	Identity     models.IdentityTag
	IdentityName string
	BotUserID    string

	GuildID   string
	ChannelID string
	ActorID   string
	ActorName string

	Command    string
	Subcommand string
	// Options holds option values by name, users and channels as IDs
	Options map[string]string
}

// String returns the trimmed value of option name
func (i *Invocation) String(name string) (value string, ok bool) {
	value, ok = i.Options[name]
	return strings.TrimSpace(value), ok && strings.TrimSpace(value) != ""
}

// Int parses option name, ok is false if it was not given
func (i *Invocation) Int(name string) (value int, ok bool, err error) {
	raw, ok := i.String(name)
	if !ok {
		return 0, false, nil
	}
	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, true, errors.Wrapf(err, "option %s", name)
	}
	return value, true, nil
}

// FullCommand is the command with its subcommand, e.g. "setchannel modlog"
func (i *Invocation) FullCommand() string {
	if i.Subcommand == "" {
		return i.Command
	}
	return i.Command + " " + i.Subcommand
}
