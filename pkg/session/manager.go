package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/flume"
	"github.com/aretw0/flume/internal/logging"
	"github.com/aretw0/flume/pkg/domain"
	"github.com/aretw0/flume/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to many diagrams. It keeps one live
// engine per open diagram so undo history survives across requests,
// serializes mutations with per-diagram locks, and autosaves the
// resulting snapshot after every successful operation. Lock entries
// are reference counted and garbage collected when idle.
type Manager struct {
	store ports.SnapshotStore

	mu      sync.Mutex
	locks   map[string]*lockEntry
	engines map[string]*flume.Engine

	locker     ports.DistributedLocker
	logger     *slog.Logger
	historyCap int
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHistoryCap overrides the undo bound for engines the Manager
// creates.
func WithHistoryCap(n int) Option {
	return func(m *Manager) {
		m.historyCap = n
	}
}

// NewManager creates a new diagram Manager backed by the given store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		engines: make(map[string]*flume.Engine),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(diagramID) after unlocking.
func (m *Manager) acquire(diagramID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[diagramID]
	if !exists {
		entry = &lockEntry{}
		m.locks[diagramID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(diagramID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[diagramID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, diagramID)
	}
}

// engine returns the live engine for a diagram, creating it from the
// stored snapshot or, when none exists, from the sample diagram. The
// caller must hold the diagram lock.
func (m *Manager) engine(ctx context.Context, diagramID string) (*flume.Engine, error) {
	m.mu.Lock()
	eng, ok := m.engines[diagramID]
	m.mu.Unlock()
	if ok {
		return eng, nil
	}

	opts := []flume.Option{flume.WithLogger(m.logger)}
	if m.historyCap > 0 {
		opts = append(opts, flume.WithHistoryCap(m.historyCap))
	}

	state, err := m.store.Load(ctx, diagramID)
	switch {
	case err == nil:
		opts = append(opts, flume.WithInitialState(state))
	case errors.Is(err, domain.ErrSnapshotNotFound):
		// New diagram, engine starts from the sample.
	default:
		return nil, fmt.Errorf("failed to load diagram: %w", err)
	}

	eng = flume.New(opts...)

	m.mu.Lock()
	m.engines[diagramID] = eng
	m.mu.Unlock()
	return eng, nil
}

// WithEngine runs fn while holding the lock for the diagram, then
// persists the resulting snapshot. The snapshot is saved even when fn
// returns an error, since rejected commands leave valid state behind.
func (m *Manager) WithEngine(ctx context.Context, diagramID string, fn func(*flume.Engine) error) error {
	return m.withLock(ctx, diagramID, func(ctx context.Context) error {
		eng, err := m.engine(ctx, diagramID)
		if err != nil {
			return err
		}

		fnErr := fn(eng)

		if err := m.store.Save(ctx, diagramID, eng.Snapshot()); err != nil {
			m.logger.Warn("autosave failed",
				"diagram_id", diagramID,
				"err", err,
			)
			if fnErr == nil {
				return fmt.Errorf("failed to autosave diagram: %w", err)
			}
		}
		return fnErr
	})
}

// Load retrieves the current snapshot, opening the diagram if needed.
func (m *Manager) Load(ctx context.Context, diagramID string) (*domain.DiagramState, error) {
	var state *domain.DiagramState
	err := m.WithEngine(ctx, diagramID, func(eng *flume.Engine) error {
		state = eng.Snapshot()
		return nil
	})
	return state, err
}

// Reset discards the diagram entirely: the live engine, the stored
// snapshot and its auxiliary entries.
func (m *Manager) Reset(ctx context.Context, diagramID string) error {
	return m.withLock(ctx, diagramID, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.engines, diagramID)
		m.mu.Unlock()

		return m.store.Delete(ctx, diagramID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// withLock executes a function while holding the lock for the diagram.
func (m *Manager) withLock(ctx context.Context, diagramID string, fn func(context.Context) error) error {
	entry := m.acquire(diagramID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(diagramID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, diagramID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"diagram_id", diagramID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
