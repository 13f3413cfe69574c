package bot

import (
	"context"
	"testing"
	"time"

	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/modules"
	"github.com/Seklfreak/Guildkeeper/ratelimits"
	"github.com/Seklfreak/Guildkeeper/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startIdentity(t *testing.T, tag models.IdentityTag, primary bool, configs *store.Store, limiter *ratelimits.BucketContainer) (*Identity, *fakeGateway) {
	gateway := newFakeGateway(botAID)
	gateway.perms[botAID] = models.PermissionBanMembers | models.PermissionKickMembers | models.PermissionModerateMembers
	gateway.perms[userID] = models.PermissionAdministrator

	identity := NewIdentity(helpers.IdentityConfig{Tag: tag, Name: "Bot " + string(tag)}, primary, gateway,
		IdentityOptions{Store: configs, Ratelimit: limiter})
	require.NoError(t, identity.Connect())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		identity.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return identity, gateway
}

func commandInvocation(command, subcommand string, options map[string]string) *modules.Invocation {
	return &modules.Invocation{
		GuildID:    guildID,
		ChannelID:  channelID,
		ActorID:    userID,
		ActorName:  "moderator",
		Command:    command,
		Subcommand: subcommand,
		Options:    options,
	}
}

func TestIdentityRegistersCommands(t *testing.T) {
	_, gateway := startIdentity(t, models.IdentityA, true, newTestStore(t), nil)

	var names []string
	for _, command := range gateway.registered {
		names = append(names, command.Name)
	}
	assert.ElementsMatch(t, []string{"autoresponse", "setchannel", "ban", "unban", "kick", "mute", "unmute", "help", "commands"}, names)
}

func TestIdentityCommandsListsCommands(t *testing.T) {
	identity, _ := startIdentity(t, models.IdentityA, true, newTestStore(t), nil)

	responder := newFakeResponder()
	identity.OnCommand(commandInvocation("commands", "", nil), responder)
	require.NoError(t, responder.wait(time.Second))
	assert.Empty(t, responder.failure)
	require.NotNil(t, responder.reply)
	require.NotNil(t, responder.reply.Embed)
	assert.Contains(t, responder.reply.Embed.Description, "`/ban`")
}

func TestIdentityCommandRoundTrip(t *testing.T) {
	configs := newTestStore(t)
	identity, gateway := startIdentity(t, models.IdentityB, false, configs, nil)

	responder := newFakeResponder()
	identity.OnCommand(commandInvocation("autoresponse", "add", map[string]string{
		"trigger": "Hello", "response": "hey there",
	}), responder)
	assert.True(t, responder.acked, "acknowledged before the command runs")
	assert.True(t, responder.private)
	require.NoError(t, responder.wait(time.Second))
	require.NotNil(t, responder.reply)
	assert.Empty(t, responder.failure)

	identity.OnMessage(MessageEvent{GuildID: guildID, ChannelID: channelID, AuthorID: userID, Content: "well HELLO"})
	assert.Eventually(t, func() bool {
		return len(gateway.Sent()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "hey there", gateway.Sent()[0].reply.Text)

	config, ok := configs.Get(guildID)
	require.True(t, ok)
	assert.Len(t, config.AutoResponses[models.IdentityB], 1)
	assert.Empty(t, config.AutoResponses[models.IdentityA])
}

func TestIdentityModerationCommand(t *testing.T) {
	identity, gateway := startIdentity(t, models.IdentityA, true, newTestStore(t), nil)
	gateway.members["444444444444444444"] = &models.Member{ID: "444444444444444444", Username: "spammer"}

	responder := newFakeResponder()
	identity.OnCommand(commandInvocation("mute", "", map[string]string{
		"user": "444444444444444444", "duration": "40321",
	}), responder)
	require.NoError(t, responder.wait(time.Second))
	assert.False(t, responder.private)
	assert.Contains(t, responder.failure, "between 1 and 40320")
	assert.Empty(t, gateway.Calls())

	responder = newFakeResponder()
	identity.OnCommand(commandInvocation("kick", "", map[string]string{"user": "444444444444444444"}), responder)
	require.NoError(t, responder.wait(time.Second))
	require.NotNil(t, responder.reply)
	assert.Equal(t, []string{"kick 444444444444444444"}, gateway.Calls())
}

func TestIdentityIgnoresBots(t *testing.T) {
	configs := newTestStore(t)
	require.NoError(t, configs.Update(context.Background(), guildID, func(config *models.GuildConfig) error {
		config.AutoResponses[models.IdentityA] = []models.Trigger{{Trigger: "hi", Reply: models.TextReply("hello")}}
		return nil
	}))
	identity, gateway := startIdentity(t, models.IdentityA, true, configs, nil)

	identity.OnMessage(MessageEvent{GuildID: guildID, ChannelID: channelID, AuthorID: botBID, AuthorBot: true, Content: "hi"})
	identity.OnMessage(MessageEvent{ChannelID: channelID, AuthorID: userID, Content: "hi"})
	identity.OnMessage(MessageEvent{GuildID: guildID, ChannelID: channelID, AuthorID: userID, Content: "hi"})

	assert.Eventually(t, func() bool {
		return len(gateway.Sent()) == 1
	}, time.Second, 10*time.Millisecond)
	// events are handled in order, nothing else is queued behind the reply
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, gateway.Sent(), 1)
}

func TestIdentityRateLimitsAutoResponses(t *testing.T) {
	configs := newTestStore(t)
	require.NoError(t, configs.Update(context.Background(), guildID, func(config *models.GuildConfig) error {
		config.AutoResponses[models.IdentityA] = []models.Trigger{{Trigger: "hi", Reply: models.TextReply("hello")}}
		return nil
	}))
	identity, gateway := startIdentity(t, models.IdentityA, true, configs, ratelimits.NewBucketContainer())

	for i := 0; i < ratelimits.BUCKET_INITIAL_FILL+3; i++ {
		identity.OnMessage(MessageEvent{GuildID: guildID, ChannelID: channelID, AuthorID: userID, Content: "hi"})
	}
	responder := newFakeResponder()
	identity.OnCommand(commandInvocation("help", "", nil), responder)
	require.NoError(t, responder.wait(time.Second))

	assert.Len(t, gateway.Sent(), ratelimits.BUCKET_INITIAL_FILL)
}

func TestOnlyPrimaryGreets(t *testing.T) {
	configs := newTestStore(t)
	require.NoError(t, configs.Update(context.Background(), guildID, func(config *models.GuildConfig) error {
		config.WelcomeChannelID = channelID
		return nil
	}))
	primary, primaryGateway := startIdentity(t, models.IdentityA, true, configs, nil)
	secondary, secondaryGateway := startIdentity(t, models.IdentityB, false, configs, nil)

	event := MemberEvent{GuildID: guildID, Member: models.Member{ID: "444444444444444444", Username: "newbie"}}
	secondary.OnMemberJoin(event)
	primary.OnMemberJoin(event)

	assert.Eventually(t, func() bool {
		return len(primaryGateway.Sent()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, secondaryGateway.Sent())
}

func TestIdentityDropsEventsAfterStop(t *testing.T) {
	gateway := newFakeGateway(botAID)
	identity := NewIdentity(helpers.IdentityConfig{Tag: models.IdentityA, Name: "Bot A"}, true, gateway,
		IdentityOptions{Store: newTestStore(t)})
	require.NoError(t, identity.Connect())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	identity.Run(ctx)

	done := make(chan struct{})
	go func() {
		for n := 0; n < 2*eventQueueSize; n++ {
			identity.OnMessage(MessageEvent{GuildID: guildID, ChannelID: channelID, AuthorID: userID, Content: "hi"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers blocked after the identity stopped")
	}
	assert.Empty(t, gateway.Sent())
}
