package plugins

import (
	"context"
	"testing"

	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoResponseAdd(t *testing.T) {
	ctx := context.Background()
	configs, backend := newStore(t)
	plugin := NewAutoResponse(configs, fakePermissions{})

	reply, err := plugin.Action(ctx, command(models.IdentityA, "autoresponse", "add", map[string]string{
		"trigger": "  Hello There ", "response": "general kenobi", "identity": "b",
	}))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "hello there")

	fresh := store.New(backend, nil)
	require.NoError(t, fresh.Load(ctx))
	config, ok := fresh.Get(guildID)
	require.True(t, ok)
	require.Len(t, config.AutoResponses[models.IdentityB], 1)
	assert.Equal(t, "hello there", config.AutoResponses[models.IdentityB][0].Trigger)
	assert.Equal(t, "general kenobi", config.AutoResponses[models.IdentityB][0].Reply.Text)
	assert.Empty(t, config.AutoResponses[models.IdentityA])
}

func TestAutoResponseAddEmbedCode(t *testing.T) {
	ctx := context.Background()
	configs, _ := newStore(t)
	plugin := NewAutoResponse(configs, fakePermissions{})

	_, err := plugin.Action(ctx, command(models.IdentityA, "autoresponse", "add", map[string]string{
		"trigger": "rules", "response": "title=Rules|description=be nice|color=#ff0000",
	}))
	require.NoError(t, err)

	config, _ := configs.Get(guildID)
	reply := config.AutoResponses[models.IdentityA][0].Reply
	require.Equal(t, models.ReplyEmbed, reply.Kind())
	assert.Equal(t, "Rules", reply.Embed.Title)
	assert.Equal(t, 0xff0000, reply.Embed.Color)
}

func TestAutoResponseAddRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	configs, backend := newStore(t)
	plugin := NewAutoResponse(configs, fakePermissions{})
	writes := backend.Writes

	for _, options := range []map[string]string{
		{"trigger": "   ", "response": "x"},
		{"trigger": "hi", "response": "x", "identity": "C"},
		{"trigger": "hi", "response": "   "},
	} {
		_, err := plugin.Action(ctx, command(models.IdentityA, "autoresponse", "add", options))
		assert.Equal(t, models.InvalidInput, models.KindOf(err), options)
	}
	assert.Equal(t, writes, backend.Writes)
}

func TestAutoResponseAddDuplicate(t *testing.T) {
	ctx := context.Background()
	configs, _ := newStore(t)
	plugin := NewAutoResponse(configs, fakePermissions{})

	options := map[string]string{"trigger": "hi", "response": "haiii"}
	_, err := plugin.Action(ctx, command(models.IdentityA, "autoresponse", "add", options))
	require.NoError(t, err)
	_, err = plugin.Action(ctx, command(models.IdentityA, "autoresponse", "add", map[string]string{
		"trigger": "HI", "response": "other",
	}))
	assert.Equal(t, models.InvalidInput, models.KindOf(err))

	config, _ := configs.Get(guildID)
	require.Len(t, config.AutoResponses[models.IdentityA], 1)
	assert.Equal(t, "haiii", config.AutoResponses[models.IdentityA][0].Reply.Text)
}

func TestAutoResponseRequiresManageGuild(t *testing.T) {
	ctx := context.Background()
	configs, backend := newStore(t)
	plugin := NewAutoResponse(configs, fakePermissions{})
	writes := backend.Writes

	invocation := command(models.IdentityA, "autoresponse", "add", map[string]string{"trigger": "hi", "response": "x"})
	invocation.ActorID = memberID
	_, err := plugin.Action(ctx, invocation)
	assert.Equal(t, models.PermissionDenied, models.KindOf(err))
	assert.Equal(t, writes, backend.Writes)
	assert.Empty(t, configs.GuildIDs())
}

func TestAutoResponseRemoveMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	configs, backend := newStore(t)
	plugin := NewAutoResponse(configs, fakePermissions{})

	_, err := plugin.Action(ctx, command(models.IdentityA, "autoresponse", "add", map[string]string{
		"trigger": "abbi", "response": "kitten",
	}))
	require.NoError(t, err)
	writes := backend.Writes
	before := backend.Data()

	_, err = plugin.Action(ctx, command(models.IdentityA, "autoresponse", "remove", map[string]string{"trigger": "abbbi"}))
	require.Error(t, err)
	assert.Equal(t, models.TargetNotFound, models.KindOf(err))
	failure, ok := models.AsFailure(err)
	require.True(t, ok)
	assert.Contains(t, failure.Message, "Did you mean `abbi`?")

	assert.Equal(t, writes, backend.Writes)
	assert.Equal(t, before, backend.Data())

	fresh := store.New(backend, nil)
	require.NoError(t, fresh.Load(ctx))
	config, _ := fresh.Get(guildID)
	require.Len(t, config.AutoResponses[models.IdentityA], 1)
	assert.Equal(t, "abbi", config.AutoResponses[models.IdentityA][0].Trigger)
}

func TestAutoResponseRemoveKeepsOrder(t *testing.T) {
	ctx := context.Background()
	configs, _ := newStore(t)
	plugin := NewAutoResponse(configs, fakePermissions{})

	for _, trigger := range []string{"one", "two", "three"} {
		_, err := plugin.Action(ctx, command(models.IdentityA, "autoresponse", "add", map[string]string{
			"trigger": trigger, "response": trigger,
		}))
		require.NoError(t, err)
	}
	_, err := plugin.Action(ctx, command(models.IdentityA, "autoresponse", "remove", map[string]string{"trigger": "Two"}))
	require.NoError(t, err)

	config, _ := configs.Get(guildID)
	triggers := config.AutoResponses[models.IdentityA]
	require.Len(t, triggers, 2)
	assert.Equal(t, "one", triggers[0].Trigger)
	assert.Equal(t, "three", triggers[1].Trigger)
}

func TestAutoResponseList(t *testing.T) {
	ctx := context.Background()
	configs, _ := newStore(t)
	plugin := NewAutoResponse(configs, fakePermissions{})

	reply, err := plugin.Action(ctx, command(models.IdentityB, "autoresponse", "list", nil))
	require.NoError(t, err)
	require.NotNil(t, reply.Embed)
	assert.Contains(t, reply.Embed.Title, "identity B")
	assert.Contains(t, reply.Embed.Description, "No automatic responses")

	_, err = plugin.Action(ctx, command(models.IdentityB, "autoresponse", "add", map[string]string{
		"trigger": "hi", "response": "hello",
	}))
	require.NoError(t, err)
	reply, err = plugin.Action(ctx, command(models.IdentityB, "autoresponse", "list", nil))
	require.NoError(t, err)
	assert.Contains(t, reply.Embed.Description, "1. `hi` → hello")
}

func TestSuggestTrigger(t *testing.T) {
	triggers := []models.Trigger{{Trigger: "good morning"}, {Trigger: "abbi"}}

	suggestion, ok := suggestTrigger("morning", triggers)
	assert.True(t, ok)
	assert.Equal(t, "good morning", suggestion)

	suggestion, ok = suggestTrigger("abby", triggers)
	assert.True(t, ok)
	assert.Equal(t, "abbi", suggestion)

	_, ok = suggestTrigger("completely different", triggers)
	assert.False(t, ok)
}
