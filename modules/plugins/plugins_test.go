package plugins

import (
	"context"
	"testing"

	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/modules"
	"github.com/Seklfreak/Guildkeeper/store"
	"github.com/stretchr/testify/require"
)

const (
	guildID   = "111111111111111111"
	managerID = "333333333333333333"
	memberID  = "444444444444444444"
	channelID = "555555555555555555"
)

type fakePermissions struct{}

func (fakePermissions) HasPermission(guildID, userID string, flag int64) bool {
	return userID == managerID
}

func (fakePermissions) CanModerate(guildID, actingID, targetID string) bool {
	return true
}

type sentReply struct {
	channelID string
	reply     models.Reply
}

type fakeSender struct {
	sent []sentReply
}

func (f *fakeSender) SendReply(ctx context.Context, channelID string, reply models.Reply) error {
	f.sent = append(f.sent, sentReply{channelID: channelID, reply: reply})
	return nil
}

func newStore(t *testing.T) (*store.Store, *store.MemoryBackend) {
	backend := store.NewMemoryBackend()
	configs := store.New(backend, models.DefaultIdentityTags)
	require.NoError(t, configs.Load(context.Background()))
	return configs, backend
}

func command(identity models.IdentityTag, name, subcommand string, options map[string]string) *modules.Invocation {
	return &modules.Invocation{
		ID:         "test",
		Identity:   identity,
		GuildID:    guildID,
		ChannelID:  channelID,
		ActorID:    managerID,
		ActorName:  "manager",
		Command:    name,
		Subcommand: subcommand,
		Options:    options,
	}
}
