package bot

import (
	"context"
	"sync"

	"github.com/Seklfreak/Guildkeeper/cache"
	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/metrics"
	"github.com/Seklfreak/Guildkeeper/models"
	"github.com/Seklfreak/Guildkeeper/modules"
	"github.com/Seklfreak/Guildkeeper/modules/plugins"
	"github.com/Seklfreak/Guildkeeper/modules/plugins/mod"
	"github.com/Seklfreak/Guildkeeper/ratelimits"
	"github.com/Seklfreak/Guildkeeper/store"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// events queued per identity before the gateway handlers block
const eventQueueSize = 256

// Identity is one bot account. Its events are handled in arrival order on a
// single worker goroutine.
type Identity struct {
	Tag     models.IdentityTag
	Name    string
	Primary bool

	gateway      Gateway
	store        *store.Store
	autoResponds *plugins.AutoResponder
	dispatcher   *modules.Dispatcher
	executor     *mod.Executor
	ratelimit    *ratelimits.BucketContainer
	isIdentity   func(userID string) bool

	events chan func(ctx context.Context)
	log    *logrus.Entry

	// stopped is closed when Run returns, later events are dropped
	stopped  chan struct{}
	stopOnce sync.Once
}

// IdentityOptions are shared by every identity of a supervisor
type IdentityOptions struct {
	Store *store.Store
	// Ratelimit limits automatic responses per user, nil disables it
	Ratelimit *ratelimits.BucketContainer
	// IsIdentity reports whether a user ID belongs to any running identity
	IsIdentity func(userID string) bool
}

func NewIdentity(config helpers.IdentityConfig, primary bool, gateway Gateway, options IdentityOptions) *Identity {
	identity := &Identity{
		Tag:          models.IdentityTag(config.Tag),
		Name:         config.Name,
		Primary:      primary,
		gateway:      gateway,
		store:        options.Store,
		autoResponds: plugins.NewAutoResponder(options.Store),
		ratelimit:    options.Ratelimit,
		isIdentity:   options.IsIdentity,
		events:       make(chan func(ctx context.Context), eventQueueSize),
		stopped:      make(chan struct{}),
		log: cache.GetLogger().WithField("module", "bot").
			WithField("identity", config.Tag),
	}
	if identity.isIdentity == nil {
		identity.isIdentity = func(string) bool { return false }
	}

	identity.executor = &mod.Executor{
		Identity:     identity.Tag,
		IdentityName: identity.Name,
		Permissions:  gateway,
		Directory:    gateway,
		Authority:    gateway,
	}

	identity.dispatcher = modules.NewDispatcher(identity.Tag)
	identity.dispatcher.Register(plugins.NewAutoResponse(options.Store, gateway))
	identity.dispatcher.Register(plugins.NewSetChannel(options.Store, gateway))
	identity.dispatcher.Register(mod.NewMod(identity.executor, options.Store, gateway))
	identity.dispatcher.Register(plugins.NewHelp(identity.dispatcher.Commands))
	if primary {
		identity.dispatcher.RegisterMemberPlugin(plugins.NewGreeter(options.Store, gateway))
	}
	return identity
}

// Connect opens the gateway and registers the identity's commands. A failed
// command registration is logged, automatic responses keep working.
func (i *Identity) Connect() error {
	if err := i.gateway.Open(i); err != nil {
		return errors.Wrapf(err, "connecting identity %s", i.Tag)
	}
	// read by the worker only, which starts after Connect
	i.executor.BotUserID = i.gateway.UserID()

	if err := i.gateway.RegisterCommands(i.dispatcher.Commands()); err != nil {
		i.log.Error("registering commands failed: ", err.Error())
		helpers.CaptureError(err, map[string]string{"identity": string(i.Tag)})
	}

	metrics.IdentitiesConnected.Add(1)
	i.log.Infof("connected identity %s as #%s (primary: %t)", i.Tag, i.executor.BotUserID, i.Primary)
	return nil
}

// Run handles queued events until ctx is done
func (i *Identity) Run(ctx context.Context) {
	defer i.stopOnce.Do(func() { close(i.stopped) })
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-i.events:
			i.handle(ctx, event)
		}
	}
}

func (i *Identity) Close() error {
	metrics.IdentitiesConnected.Add(-1)
	return i.gateway.Close()
}

// UserID is known after Connect
func (i *Identity) UserID() string {
	return i.gateway.UserID()
}

func (i *Identity) OnMessage(event MessageEvent) {
	if event.GuildID == "" || event.AuthorBot || i.isIdentity(event.AuthorID) {
		return
	}
	metrics.MessagesReceived.Add(1)

	i.enqueue(func(ctx context.Context) {
		reply, ok := i.autoResponds.Match(i.Tag, event.GuildID, event.Content)
		if !ok {
			return
		}
		if i.ratelimit != nil && i.ratelimit.Drain(1, event.GuildID+":"+event.AuthorID) != nil {
			i.log.WithField("guild", event.GuildID).Debugf("rate limited automatic response for #%s", event.AuthorID)
			return
		}

		if err := i.gateway.SendReply(ctx, event.ChannelID, reply); err != nil {
			i.log.WithField("guild", event.GuildID).Warn("sending automatic response failed: ", err.Error())
			return
		}
		metrics.AutoResponsesSent.Add(1)
	})
}

// OnCommand acknowledges right away and queues the command itself
func (i *Identity) OnCommand(invocation *modules.Invocation, responder modules.Responder) {
	invocation.Identity = i.Tag
	invocation.IdentityName = i.Name
	invocation.BotUserID = i.UserID()
	if invocation.ID == "" {
		invocation.ID = newCorrelationID()
	}

	if err := i.dispatcher.Acknowledge(invocation, responder); err != nil {
		i.log.WithField("invocation", invocation.ID).Error("acknowledging interaction failed: ", err.Error())
		return
	}

	i.enqueue(func(ctx context.Context) {
		i.dispatcher.Run(ctx, invocation, responder)
	})
}

func (i *Identity) OnMemberJoin(event MemberEvent) {
	if !i.Primary {
		return
	}
	i.enqueue(func(ctx context.Context) {
		i.dispatcher.MemberAdded(ctx, event.GuildID, event.Member)
	})
}

func (i *Identity) OnMemberLeave(event MemberEvent) {
	if !i.Primary {
		return
	}
	i.enqueue(func(ctx context.Context) {
		i.dispatcher.MemberRemoved(ctx, event.GuildID, event.Member)
	})
}

func (i *Identity) enqueue(event func(ctx context.Context)) {
	select {
	case i.events <- event:
	case <-i.stopped:
		i.log.Debug("identity stopped, dropping event")
	}
}

func (i *Identity) handle(ctx context.Context, event func(ctx context.Context)) {
	defer helpers.Recover()
	event(ctx)
}

func newCorrelationID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()[:8]
}
