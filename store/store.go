package store

import (
	"context"
	"sync"

	"github.com/Seklfreak/Guildkeeper/cache"
	"github.com/Seklfreak/Guildkeeper/metrics"
	"github.com/Seklfreak/Guildkeeper/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store holds every guild's config in memory and persists the whole set as
// one document on each change.
//
// Mutations for one guild are serialised by a per guild mutex that is held
// across mutate and persist. Saves are serialised too and encode the registry
// inside the save lock, so the last write always contains every committed edit.
type Store struct {
	backend Backend
	tags    []models.IdentityTag

	mu      sync.RWMutex
	configs map[string]models.GuildConfig

	// loaded is set once the registry reflects the persisted document
	loaded bool

	// generation counts committed updates, saved is the generation last written
	generation uint64
	saved      uint64

	locksMu    sync.Mutex
	guildLocks map[string]*sync.Mutex

	saveMu sync.Mutex
}

// New creates an empty store, call Load to read the persisted document.
// tags are the identity tags every new config gets a trigger list for.
func New(backend Backend, tags []models.IdentityTag) *Store {
	if len(tags) == 0 {
		tags = models.DefaultIdentityTags
	}
	return &Store{
		backend:    backend,
		tags:       append([]models.IdentityTag(nil), tags...),
		configs:    make(map[string]models.GuildConfig),
		guildLocks: make(map[string]*sync.Mutex),
	}
}

// Load replaces the in-memory registry with the persisted document. A missing
// document initialises an empty store and persists it. Any other failure is
// logged and the in-memory state is kept, and Save refuses to overwrite the
// document until a guild is updated.
func (s *Store) Load(ctx context.Context) error {
	log := cache.GetLogger().WithField("module", "store").WithField("backend", s.backend.String())

	data, err := s.backend.Read(ctx)
	if errors.Cause(err) == ErrNotExist {
		log.Info("no guild config document found, initialising an empty one")
		s.mu.Lock()
		s.configs = make(map[string]models.GuildConfig)
		s.loaded = true
		s.mu.Unlock()
		return s.Save(ctx)
	}
	if err != nil {
		log.Error("reading guild configs failed, keeping in-memory state: ", err.Error())
		return models.WrapFailure(err, models.ConfigIOFailure, "reading guild configs failed")
	}

	configs := make(map[string]models.GuildConfig)
	if err = json.Unmarshal(data, &configs); err != nil {
		log.Error("decoding guild configs failed, keeping in-memory state: ", err.Error())
		return models.WrapFailure(err, models.ConfigIOFailure, "decoding guild configs failed")
	}
	for guildID, config := range configs {
		configs[guildID] = normalize(guildID, config)
	}

	s.mu.Lock()
	s.configs = configs
	s.loaded = true
	s.saved = s.generation
	s.mu.Unlock()

	log.Infof("loaded %d guild configs", len(configs))
	return nil
}

// Save overwrites the persisted document with the in-memory registry. On
// failure the error is logged and the previous document stays in place.
// A store that never loaded and holds no updates does not write.
func (s *Store) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	if !s.loaded && s.generation == 0 {
		s.mu.RUnlock()
		cache.GetLogger().WithField("module", "store").WithField("backend", s.backend.String()).Warn(
			"not saving guild configs, the persisted document was never loaded")
		return models.NewFailure(models.ConfigIOFailure, "guild configs were never loaded, refusing to overwrite them")
	}
	generation := s.generation
	data, err := json.MarshalIndent(s.configs, "", "  ")
	s.mu.RUnlock()
	if err == nil {
		err = s.backend.Write(ctx, data)
	}

	if err != nil {
		metrics.ConfigSaveFailures.Add(1)
		cache.GetLogger().WithField("module", "store").WithField("backend", s.backend.String()).Error(
			"saving guild configs failed: ", err.Error())
		return models.WrapFailure(err, models.ConfigIOFailure, "saving guild configs failed")
	}

	s.mu.Lock()
	if generation > s.saved {
		s.saved = generation
	}
	s.mu.Unlock()

	metrics.ConfigSaves.Add(1)
	return nil
}

// Dirty reports whether updates were committed since the last successful save
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation != s.saved
}

// Get returns a copy of guildID's config, ok is false if none exists
func (s *Store) Get(guildID string) (config models.GuildConfig, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config, ok = s.configs[guildID]
	if !ok {
		return config, false
	}
	return config.Copy(), true
}

// GetOrCreate returns a copy of guildID's config, registering a default one
// in memory if the guild has none yet
func (s *Store) GetOrCreate(guildID string) models.GuildConfig {
	if config, ok := s.Get(guildID); ok {
		return config
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	config, ok := s.configs[guildID]
	if !ok {
		config = models.GuildConfig{}.Default(guildID, s.tags)
		s.configs[guildID] = config
	}
	return config.Copy()
}

// Update runs mutate on a copy of guildID's config and, if it returns nil,
// commits the copy and saves. A failing save is logged but the in-memory
// change stays committed. Updates to the same guild never interleave.
func (s *Store) Update(ctx context.Context, guildID string, mutate func(config *models.GuildConfig) error) error {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	config := s.GetOrCreate(guildID)
	if err := mutate(&config); err != nil {
		return err
	}
	config = normalize(guildID, config)

	s.mu.Lock()
	s.configs[guildID] = config
	s.generation++
	s.mu.Unlock()

	// logged by Save, the change is kept in memory either way
	_ = s.Save(ctx)
	return nil
}

// GuildIDs lists every guild with a config
func (s *Store) GuildIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.configs))
	for guildID := range s.configs {
		ids = append(ids, guildID)
	}
	return ids
}

// Tags returns the identity tags the store creates trigger lists for
func (s *Store) Tags() []models.IdentityTag {
	return append([]models.IdentityTag(nil), s.tags...)
}

func (s *Store) guildLock(guildID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.guildLocks[guildID]
	if !ok {
		lock = new(sync.Mutex)
		s.guildLocks[guildID] = lock
	}
	return lock
}

// normalize pins the guild ID to its key and replaces nil trigger lists
func normalize(guildID string, config models.GuildConfig) models.GuildConfig {
	config.GuildID = guildID
	if config.AutoResponses == nil {
		config.AutoResponses = make(map[models.IdentityTag][]models.Trigger)
	}
	for tag, triggers := range config.AutoResponses {
		if triggers == nil {
			config.AutoResponses[tag] = []models.Trigger{}
		}
	}
	return config
}
