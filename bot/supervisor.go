package bot

import (
	"context"
	"sync"

	"github.com/Seklfreak/Guildkeeper/cache"
	"github.com/Seklfreak/Guildkeeper/helpers"
	"github.com/Seklfreak/Guildkeeper/ratelimits"
	"github.com/Seklfreak/Guildkeeper/store"
	"golang.org/x/sync/errgroup"
)

// Supervisor starts every configured identity that has a token and keeps them
// running side by side. One identity failing to connect never stops the others.
type Supervisor struct {
	identities []helpers.IdentityConfig
	store      *store.Store
	dial       Dialer
	ratelimit  *ratelimits.BucketContainer

	mu      sync.RWMutex
	running []*Identity
	userIDs map[string]bool

	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewSupervisor prepares identities in the configured order. ratelimit may
// be nil.
func NewSupervisor(identities []helpers.IdentityConfig, configs *store.Store, dial Dialer, ratelimit *ratelimits.BucketContainer) *Supervisor {
	return &Supervisor{
		identities: identities,
		store:      configs,
		dial:       dial,
		ratelimit:  ratelimit,
		userIDs:    make(map[string]bool),
	}
}

// Start connects the identities and returns how many are running. The first
// identity that connects is the primary one and alone handles member events.
func (s *Supervisor) Start(ctx context.Context) int {
	log := cache.GetLogger().WithField("module", "supervisor")

	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)

	if s.ratelimit != nil {
		s.group.Go(func() error {
			s.ratelimit.Run(ctx)
			return nil
		})
	}

	for _, config := range s.identities {
		entry := log.WithField("identity", config.Tag)
		if config.Token == "" {
			entry.Warnf("no token for identity %s, set %s to start it, skipping", config.Tag, config.TokenEnv)
			continue
		}

		gateway, err := s.dial(config)
		if err != nil {
			entry.Error("creating gateway failed: ", err.Error())
			continue
		}

		identity := NewIdentity(config, s.Count() == 0, gateway, IdentityOptions{
			Store:      s.store,
			Ratelimit:  s.ratelimit,
			IsIdentity: s.isIdentity,
		})
		if err = identity.Connect(); err != nil {
			entry.Error(err.Error())
			helpers.CaptureError(err, map[string]string{"identity": string(config.Tag)})
			continue
		}

		s.mu.Lock()
		s.running = append(s.running, identity)
		s.userIDs[identity.UserID()] = true
		s.mu.Unlock()

		s.group.Go(func() error {
			identity.Run(ctx)
			return nil
		})
	}

	count := s.Count()
	if count == 0 {
		log.Error("no identity could be started")
	} else {
		log.Infof("%d of %d identities running", count, len(s.identities))
	}
	return count
}

// Count returns the number of running identities
func (s *Supervisor) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.running)
}

// Identities returns the running identities, primary first
func (s *Supervisor) Identities() []*Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Identity(nil), s.running...)
}

// Wait blocks until every identity stopped
func (s *Supervisor) Wait() error {
	if s.group == nil {
		return nil
	}
	return s.group.Wait()
}

// Close stops the workers and disconnects every identity
func (s *Supervisor) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	for _, identity := range s.Identities() {
		if err := identity.Close(); err != nil {
			cache.GetLogger().WithField("module", "supervisor").WithField("identity", string(identity.Tag)).Warn(
				"disconnecting failed: ", err.Error())
		}
	}
	s.Wait()
}

func (s *Supervisor) isIdentity(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userIDs[userID]
}
