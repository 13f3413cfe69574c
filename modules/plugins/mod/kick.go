package mod

import (
	"context"

	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/pkg/errors"
)

func (e *Executor) kick(ctx context.Context, guildID string, action models.ModerationAction) (*Outcome, error) {
	member, err := e.target(ctx, guildID, action)
	if err != nil {
		return nil, err
	}

	if err = e.Authority.Kick(ctx, guildID, member.ID, action.Reason); err != nil {
		return nil, e.external(guildID, action, errors.Wrap(err, "kicking member"))
	}
	return &Outcome{Action: action, Target: *member}, nil
}
