// Package shelf wires a storage medium, the four content repositories, the
// trash manager and the activity journal into one handle.
//
// Callers Attach with a Config, use the repositories, and Detach when done.
// After Detach every accessor returns types.ErrShelfDetached.
package shelf

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/collection"
	"github.com/mesh-intelligence/shelf/internal/journal"
	"github.com/mesh-intelligence/shelf/internal/jsonfile"
	"github.com/mesh-intelligence/shelf/internal/recordstore"
	"github.com/mesh-intelligence/shelf/internal/redisstore"
	"github.com/mesh-intelligence/shelf/internal/sqlite"
	"github.com/mesh-intelligence/shelf/internal/trash"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Shelf is an attached set of repositories over one medium.
type Shelf struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	logger   *zap.Logger
	openFn   func(ctx context.Context, cfg types.Config) (types.Medium, error)

	medium       types.Medium
	store        *recordstore.Store
	news         *collection.Repository[*types.News]
	activities   *collection.Repository[*types.Activity]
	achievements *collection.Repository[*types.Achievement]
	faqs         *collection.Repository[*types.FAQ]
	trash        *trash.Manager
	journal      *journal.Journal
}

// Option configures a Shelf.
type Option func(*Shelf)

// WithLogger sets the logger handed to every component.
func WithLogger(l *zap.Logger) Option {
	return func(s *Shelf) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMedium makes Attach use m instead of opening the configured backend.
func WithMedium(m types.Medium) Option {
	return func(s *Shelf) {
		s.openFn = func(context.Context, types.Config) (types.Medium, error) { return m, nil }
	}
}

// New returns a detached Shelf.
func New(opts ...Option) *Shelf {
	s := &Shelf{logger: zap.NewNop(), openFn: OpenMedium}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenMedium opens the backend named by cfg.Backend.
func OpenMedium(ctx context.Context, cfg types.Config) (types.Medium, error) {
	switch cfg.Backend {
	case types.BackendJSONFile:
		return jsonfile.Open(cfg.DataDir)
	case types.BackendSQLite:
		return sqlite.Open(cfg.DataDir)
	case types.BackendRedis:
		return redisstore.Connect(ctx, cfg.Redis)
	}
	return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
}

// Attach opens the medium and builds the components. An empty backend
// defaults to jsonfile. It returns types.ErrAlreadyAttached when called
// twice without Detach.
func (s *Shelf) Attach(ctx context.Context, cfg types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if cfg.Backend == "" {
		cfg.Backend = types.DefaultBackend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	medium, err := s.openFn(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
	}

	store := recordstore.New(medium, s.logger)
	j := journal.New(store, cfg.JournalEnabled, s.logger)

	ids := collection.NewIDGenerator()
	opts := []collection.Option{
		collection.WithIDs(ids),
		collection.WithSink(j),
		collection.WithLogger(s.logger),
	}
	s.news = collection.NewNews(store, opts...)
	s.activities = collection.NewActivities(store, opts...)
	s.achievements = collection.NewAchievements(store, opts...)
	s.faqs = collection.NewFAQs(store, opts...)
	s.trash = trash.NewManager(store,
		[]trash.Origin{s.news, s.activities, s.achievements, s.faqs},
		trash.WithSink(j), trash.WithLogger(s.logger))

	// Trashed ids stay reserved: a restore must not collide with a newer
	// record.
	entries, err := s.trash.List(ctx)
	if err != nil {
		medium.Close()
		return err
	}
	for _, e := range entries {
		ids.Observe(e.ID)
	}

	s.medium = medium
	s.store = store
	s.journal = j
	s.config = cfg
	s.attached = true
	s.logger.Debug("shelf attached", zap.String("backend", cfg.Backend), zap.String("data_dir", cfg.DataDir))
	return nil
}

// Detach closes the medium. It is safe to call more than once.
func (s *Shelf) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	s.attached = false
	err := s.medium.Close()
	s.medium = nil
	return err
}

// Config returns the configuration passed to Attach, with defaults filled.
func (s *Shelf) Config() types.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// News returns the news repository.
func (s *Shelf) News() (*collection.Repository[*types.News], error) {
	return get(s, func() *collection.Repository[*types.News] { return s.news })
}

// Activities returns the activities repository.
func (s *Shelf) Activities() (*collection.Repository[*types.Activity], error) {
	return get(s, func() *collection.Repository[*types.Activity] { return s.activities })
}

// Achievements returns the achievements repository.
func (s *Shelf) Achievements() (*collection.Repository[*types.Achievement], error) {
	return get(s, func() *collection.Repository[*types.Achievement] { return s.achievements })
}

// FAQs returns the FAQ repository.
func (s *Shelf) FAQs() (*collection.Repository[*types.FAQ], error) {
	return get(s, func() *collection.Repository[*types.FAQ] { return s.faqs })
}

// Collection returns the repository of kind k.
func (s *Shelf) Collection(k types.Kind) (collection.Accessor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, types.ErrShelfDetached
	}
	switch k {
	case types.KindNews:
		return s.news, nil
	case types.KindActivity:
		return s.activities, nil
	case types.KindAchievement:
		return s.achievements, nil
	case types.KindFAQ:
		return s.faqs, nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrUnknownKind, string(k))
}

// Trash returns the trash manager.
func (s *Shelf) Trash() (*trash.Manager, error) {
	return get(s, func() *trash.Manager { return s.trash })
}

// Journal returns the activity journal.
func (s *Shelf) Journal() (*journal.Journal, error) {
	return get(s, func() *journal.Journal { return s.journal })
}

// Store returns the record store.
func (s *Shelf) Store() (*recordstore.Store, error) {
	return get(s, func() *recordstore.Store { return s.store })
}

func get[T any](s *Shelf, field func() T) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		var zero T
		return zero, types.ErrShelfDetached
	}
	return field(), nil
}
