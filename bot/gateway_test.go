package bot

import (
	"context"
	"sync"
	"time"

	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/modules/plugins/mod"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

type sentReply struct {
	channelID string
	reply     models.Reply
}

// fakeGateway is an in-memory platform for one identity
type fakeGateway struct {
	userID  string
	openErr error

	mu         sync.Mutex
	handler    EventHandler
	closed     bool
	registered []*discordgo.ApplicationCommand
	sent       []sentReply
	perms      map[string]int64
	members    map[string]*models.Member
	calls      []string
}

func newFakeGateway(userID string) *fakeGateway {
	return &fakeGateway{
		userID:  userID,
		perms:   make(map[string]int64),
		members: make(map[string]*models.Member),
	}
}

func (f *fakeGateway) Open(handler EventHandler) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
	return nil
}

func (f *fakeGateway) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeGateway) UserID() string {
	return f.userID
}

func (f *fakeGateway) RegisterCommands(commands []*discordgo.ApplicationCommand) error {
	f.mu.Lock()
	f.registered = commands
	f.mu.Unlock()
	return nil
}

func (f *fakeGateway) SendReply(ctx context.Context, channelID string, reply models.Reply) error {
	f.mu.Lock()
	f.sent = append(f.sent, sentReply{channelID: channelID, reply: reply})
	f.mu.Unlock()
	return nil
}

func (f *fakeGateway) Sent() []sentReply {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentReply(nil), f.sent...)
}

func (f *fakeGateway) HasPermission(guildID, userID string, flag int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.HasPermission(f.perms[userID], flag)
}

func (f *fakeGateway) CanModerate(guildID, actingID, targetID string) bool {
	return true
}

func (f *fakeGateway) Member(ctx context.Context, guildID, userID string) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[userID]
	if !ok {
		return nil, mod.ErrMemberNotFound
	}
	copied := *member
	return &copied, nil
}

func (f *fakeGateway) IsBanned(ctx context.Context, guildID, userID string) (bool, error) {
	return false, nil
}

func (f *fakeGateway) record(call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	return nil
}

func (f *fakeGateway) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGateway) Ban(ctx context.Context, guildID, userID, reason string) error {
	return f.record("ban " + userID)
}

func (f *fakeGateway) Unban(ctx context.Context, guildID, userID, reason string) error {
	return f.record("unban " + userID)
}

func (f *fakeGateway) Kick(ctx context.Context, guildID, userID, reason string) error {
	return f.record("kick " + userID)
}

func (f *fakeGateway) Timeout(ctx context.Context, guildID, userID string, until *time.Time, reason string) error {
	return f.record("timeout " + userID)
}

// fakeResponder records the two phases of a command reply
type fakeResponder struct {
	mu       sync.Mutex
	acked    bool
	private  bool
	reply    *models.Reply
	failure  string
	finished chan struct{}
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{finished: make(chan struct{})}
}

func (f *fakeResponder) Acknowledge(private bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = true
	f.private = private
	return nil
}

func (f *fakeResponder) Finalize(reply models.Reply) error {
	f.mu.Lock()
	f.reply = &reply
	f.mu.Unlock()
	close(f.finished)
	return nil
}

func (f *fakeResponder) Fail(message string) error {
	f.mu.Lock()
	f.failure = message
	f.mu.Unlock()
	close(f.finished)
	return nil
}

func (f *fakeResponder) wait(timeout time.Duration) error {
	select {
	case <-f.finished:
		return nil
	case <-time.After(timeout):
		return errors.New("command did not finish")
	}
}

func fakeDialer(gateways map[models.IdentityTag]*fakeGateway) Dialer {
	return func(identity helpers.IdentityConfig) (Gateway, error) {
		gateway, ok := gateways[identity.Tag]
		if !ok {
			return nil, errors.Errorf("no gateway for %s", identity.Tag)
		}
		return gateway, nil
	}
}
