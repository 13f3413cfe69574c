package mod

import (
	"context"
	"time"

	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// MaxMuteMinutes is the longest mute, the platform's timeout limit
const MaxMuteMinutes = int(models.MaxTimeout / time.Minute)

func (e *Executor) mute(ctx context.Context, guildID string, action models.ModerationAction) (*Outcome, error) {
	member, err := e.target(ctx, guildID, action)
	if err != nil {
		return nil, err
	}

	minutes := models.DefaultMuteMinutes
	if action.DurationMinutes != nil {
		minutes = *action.DurationMinutes
	}
	if minutes < 1 || minutes > MaxMuteMinutes {
		return nil, models.NewFailure(models.InvalidInput,
			"The duration has to be between 1 and %d minutes.", MaxMuteMinutes)
	}
	action.DurationMinutes = &minutes

	until := e.now().Add(time.Duration(minutes) * time.Minute)
	if err = e.Authority.Timeout(ctx, guildID, member.ID, &until, action.Reason); err != nil {
		return nil, e.external(guildID, action, errors.Wrap(err, "timing out member"))
	}
	return &Outcome{Action: action, Target: *member, Until: &until}, nil
}

func (e *Executor) unmute(ctx context.Context, guildID string, action models.ModerationAction) (*Outcome, error) {
	member, err := e.target(ctx, guildID, action)
	if err != nil {
		return nil, err
	}
	if !member.TimedOut(e.now()) {
		return nil, models.NewFailure(models.TargetNotFound, "**%s** is not muted.", member.Username)
	}

	if err = e.Authority.Timeout(ctx, guildID, member.ID, nil, action.Reason); err != nil {
		return nil, e.external(guildID, action, errors.Wrap(err, "lifting timeout"))
	}
	return &Outcome{Action: action, Target: *member}, nil
}

func humanizeUntil(until, now time.Time) string {
	return humanize.RelTime(until, now, "ago", "from now")
}
