package mod

import (
	"context"

	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/pkg/errors"
)

func (e *Executor) ban(ctx context.Context, guildID string, action models.ModerationAction) (*Outcome, error) {
	member, err := e.target(ctx, guildID, action)
	if err != nil {
		return nil, err
	}

	if err = e.Authority.Ban(ctx, guildID, member.ID, action.Reason); err != nil {
		return nil, e.external(guildID, action, errors.Wrap(err, "banning member"))
	}
	return &Outcome{Action: action, Target: *member}, nil
}

// unban takes a raw user ID, the user is not a member while banned
func (e *Executor) unban(ctx context.Context, guildID string, action models.ModerationAction) (*Outcome, error) {
	userID, ok := helpers.ExtractUserID(action.TargetRef)
	if !ok {
		return nil, models.NewFailure(models.InvalidInput, "`%s` is not a valid user ID.", action.TargetRef)
	}

	banned, err := e.Directory.IsBanned(ctx, guildID, userID)
	if err != nil {
		return nil, e.external(guildID, action, errors.Wrap(err, "looking up ban"))
	}
	if !banned {
		return nil, models.NewFailure(models.TargetNotFound, "User `#%s` is not banned.", userID)
	}

	if err = e.Authority.Unban(ctx, guildID, userID, action.Reason); err != nil {
		return nil, e.external(guildID, action, errors.Wrap(err, "unbanning user"))
	}
	return &Outcome{Action: action, Target: models.Member{ID: userID}}, nil
}
