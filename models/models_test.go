package models

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, InvalidInput, KindOf(NewFailure(InvalidInput, "bad %s", "input")))
	assert.Equal(t, TargetNotFound, KindOf(errors.Wrap(NewFailure(TargetNotFound, "gone"), "removing trigger")))
	assert.Equal(t, ExternalServiceFailure, KindOf(errors.New("HTTP 500")))
}

func TestWrapFailure(t *testing.T) {
	assert.Nil(t, WrapFailure(nil, ConfigIOFailure, "saving"))

	cause := errors.New("disk full")
	err := WrapFailure(cause, ConfigIOFailure, "saving guild configs failed")
	failure, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, ConfigIOFailure, failure.Kind)
	assert.Equal(t, "saving guild configs failed", failure.Message)
	assert.Equal(t, cause, errors.Cause(failure.Err))
	assert.Equal(t, "ConfigIOFailure: saving guild configs failed: disk full", err.Error())
}

func TestFailureKindString(t *testing.T) {
	assert.Equal(t, "BotPermissionInsufficient", BotPermissionInsufficient.String())
	assert.Equal(t, "FailureKind(42)", FailureKind(42).String())
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(PermissionKickMembers|PermissionBanMembers, PermissionBanMembers))
	assert.False(t, HasPermission(PermissionKickMembers, PermissionBanMembers))
	assert.True(t, HasPermission(PermissionAdministrator, PermissionModerateMembers))
	assert.False(t, HasPermission(0, PermissionManageGuild))
}

func TestRequiredPermission(t *testing.T) {
	assert.Equal(t, PermissionBanMembers, RequiredPermission(ActionBan))
	assert.Equal(t, PermissionBanMembers, RequiredPermission(ActionUnban))
	assert.Equal(t, PermissionKickMembers, RequiredPermission(ActionKick))
	assert.Equal(t, PermissionModerateMembers, RequiredPermission(ActionMute))
	assert.Equal(t, PermissionModerateMembers, RequiredPermission(ActionUnmute))
}

func TestActionKindFromName(t *testing.T) {
	for _, kind := range []ActionKind{ActionBan, ActionUnban, ActionKick, ActionMute, ActionUnmute} {
		parsed, ok := ActionKindFromName(kind.String())
		assert.True(t, ok)
		assert.Equal(t, kind, parsed)
	}
	_, ok := ActionKindFromName("yeet")
	assert.False(t, ok)
}

func TestMemberTimedOut(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Minute)
	earlier := now.Add(-time.Minute)

	assert.False(t, Member{}.TimedOut(now))
	assert.True(t, Member{TimedOutUntil: &later}.TimedOut(now))
	assert.False(t, Member{TimedOutUntil: &earlier}.TimedOut(now))
}

func TestGuildConfigCopyIsDeep(t *testing.T) {
	config := GuildConfig{}.Default("1", DefaultIdentityTags)
	config.AutoResponses[IdentityA] = append(config.AutoResponses[IdentityA],
		Trigger{Trigger: "hi", Reply: EmbedReply(Embed{Title: "hello"})})

	copied := config.Copy()
	copied.AutoResponses[IdentityA][0].Reply.Embed.Title = "changed"
	copied.AutoResponses[IdentityB] = append(copied.AutoResponses[IdentityB], Trigger{Trigger: "new"})

	assert.Equal(t, "hello", config.AutoResponses[IdentityA][0].Reply.Embed.Title)
	assert.Empty(t, config.AutoResponses[IdentityB])
	assert.Equal(t, 0, config.TriggerIndex(IdentityA, "hi"))
	assert.Equal(t, -1, config.TriggerIndex(IdentityB, "hi"))
}

func TestReplyKind(t *testing.T) {
	assert.Equal(t, ReplyNone, Reply{}.Kind())
	assert.Equal(t, ReplyText, TextReply("x").Kind())
	assert.Equal(t, ReplyEmbed, EmbedReply(Embed{}).Kind())
}
