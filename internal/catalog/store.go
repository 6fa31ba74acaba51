// Package catalog loads the catalog document once and hands out the resulting
// read-only snapshot.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"stonetech/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
)

// ErrNotLoaded is returned by Snapshot before Load has finished.
var ErrNotLoaded = errors.New("catalog not loaded yet")

// Hook is run once with the freshly loaded catalog.
type Hook struct {
	Name string
	Fn   func(*domain.Catalog) error
}

// Store owns the single load-time assignment of the catalog. The catalog it returns
// must be treated as read-only by every caller.
type Store struct {
	source Source

	mu    sync.Mutex
	hooks []Hook

	once    sync.Once
	ready   chan struct{}
	catalog *domain.Catalog
	err     error
}

func NewStore(source Source) *Store {
	return &Store{
		source: source,
		ready:  make(chan struct{}),
	}
}

// OnLoad registers a hook. Hooks run in registration order after a successful load
// and before Ready is closed; hooks registered after Load started are never run.
func (s *Store) OnLoad(name string, fn func(*domain.Catalog) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, Hook{Name: name, Fn: fn})
}

// Load fetches and validates the catalog. Only the first call does any work; later
// calls return the first call's result. Ready is closed when it finishes, whatever
// the outcome.
func (s *Store) Load(ctx context.Context) error {
	s.once.Do(func() {
		defer close(s.ready)

		catalog, err := s.fetch(ctx)
		if err != nil {
			s.err = err
			log.Errorf("❌ Failed to load catalog from %s: %v", s.source, err)
			return
		}

		s.catalog = catalog
		log.Infof("✅ Catalog loaded from %s: %d categories, %d products",
			s.source, len(catalog.Categories), catalog.CountProducts())

		s.runHooks(catalog)
	})

	<-s.ready
	return s.err
}

func (s *Store) fetch(ctx context.Context) (*domain.Catalog, error) {
	data, err := s.source.Fetch(ctx)
	if err != nil {
		var loadErr *domain.LoadError
		if errors.As(err, &loadErr) {
			return nil, err
		}
		return nil, &domain.LoadError{Source: s.source.String(), Err: err}
	}

	catalog, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.source, err)
	}
	return catalog, nil
}

func (s *Store) runHooks(catalog *domain.Catalog) {
	s.mu.Lock()
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.Unlock()

	for _, hook := range hooks {
		if err := domain.Isolate(hook.Name, func() error { return hook.Fn(catalog) }); err != nil {
			log.Errorf("❌ %v", err)
			continue
		}
		log.Debugf("Catalog hook %s done", hook.Name)
	}
}

// Ready is closed exactly once, when Load has finished.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Snapshot returns the loaded catalog, the terminal load error, or ErrNotLoaded.
func (s *Store) Snapshot() (*domain.Catalog, error) {
	select {
	case <-s.ready:
		return s.catalog, s.err
	default:
		return nil, ErrNotLoaded
	}
}

// Wait blocks until the catalog is loaded or ctx is done.
func (s *Store) Wait(ctx context.Context) (*domain.Catalog, error) {
	select {
	case <-s.ready:
		return s.catalog, s.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
