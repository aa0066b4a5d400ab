// Package session orchestrates concurrent access to dialogue sessions.
// Every mutation goes through a per-session lock and every transition
// through the state table, so a session snapshot in the store is always
// one the state machine could legally produce.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/opencivic/sahayak/internal/logging"
	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/ports"
	"github.com/opencivic/sahayak/pkg/statemachine"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore
	table *statemachine.Table
	ttl   time.Duration

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTable replaces the default transition table.
func WithTable(table *statemachine.Table) Option {
	return func(m *Manager) {
		m.table = table
	}
}

// WithTTL sets the session expiry passed to the store on every write.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithHooks registers lifecycle hooks fired on transitions.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// NewManager creates a new session Manager over the given store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		table:  statemachine.Default(),
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize prepares the store and warms up from any persisted
// sessions. Backends without bulk reads just skip the warm-up.
func (m *Manager) Initialize(ctx context.Context) error {
	if err := m.store.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	all, err := m.store.LoadAll(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrBulkUnsupported) {
			m.logger.Debug("Session store does not support bulk load, skipping warm-up")
			return nil
		}
		return fmt.Errorf("failed to load persisted sessions: %w", err)
	}

	m.logger.Info("Loaded persisted sessions", "count", len(all))
	return nil
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	return fn(ctx)
}

// Create starts a fresh session under the given ID, overwriting any
// previous one. Restarting a call re-uses its ID, so overwrite is the
// intended semantic.
func (m *Manager) Create(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess := domain.NewSession(sessionID)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Put(ctx, sessionID, sess, m.ttl)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// Get retrieves an existing session from the store.
func (m *Manager) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Get(ctx, sessionID)
		return err
	})
	return sess, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Table returns the transition table in force.
func (m *Manager) Table() *statemachine.Table {
	return m.table
}

// Tx is a single-session mutation in flight. All changes land in one
// store write when the enclosing Update commits.
type Tx struct {
	sess        *domain.Session
	table       *statemachine.Table
	transitions []domain.TransitionEvent
}

// Session exposes the session under mutation.
func (t *Tx) Session() *domain.Session {
	return t.sess
}

// SetState moves the session to the next state, enforcing the
// transition table. Transitions out of unknown states are allowed but
// recorded as open so the host can log or count them. A self-transition
// is validated like any other pair; when the table permits it (as it
// does for CollectingSlots) it commits as a no-op without an event.
func (t *Tx) SetState(next string) error {
	current := t.sess.CurrentState
	ruling := t.table.Check(current, next)
	if !ruling.Allowed {
		return &domain.InvalidTransitionError{From: current, To: next}
	}
	if current == next {
		return nil
	}

	t.sess.CurrentState = next
	t.transitions = append(t.transitions, domain.TransitionEvent{
		SessionID: t.sess.ID,
		From:      current,
		To:        next,
		Open:      ruling.Open,
	})
	return nil
}

// SetData stores a value in the session data map.
func (t *Tx) SetData(key string, value any) {
	t.sess.Data[key] = value
}

// DeleteData removes a key from the session data map.
func (t *Tx) DeleteData(key string) {
	delete(t.sess.Data, key)
}

// Update loads the session, applies fn, and persists the result in one
// store write. fn returning an error aborts the update and nothing is
// persisted. Transition events fire only after the write succeeds.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(tx *Tx) error) (*domain.Session, error) {
	var result *domain.Session

	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err := m.store.Get(ctx, sessionID)
		if err != nil {
			return err
		}

		tx := &Tx{sess: sess, table: m.table}
		if err := fn(tx); err != nil {
			return err
		}

		sess.UpdatedAt = time.Now().UTC()
		if err := m.store.Put(ctx, sessionID, sess, m.ttl); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}

		for i := range tx.transitions {
			e := &tx.transitions[i]
			if e.Open {
				m.logger.Warn("Transition out of unknown state allowed by open policy",
					"session_id", sessionID,
					"from", e.From,
					"to", e.To,
				)
			}
			m.hooks.EmitTransition(ctx, e)
		}

		result = sess
		return nil
	})

	return result, err
}

// SetState is a single-transition convenience over Update.
func (m *Manager) SetState(ctx context.Context, sessionID, next string) (*domain.Session, error) {
	return m.Update(ctx, sessionID, func(tx *Tx) error {
		return tx.SetState(next)
	})
}

// SetData is a single-key convenience over Update.
func (m *Manager) SetData(ctx context.Context, sessionID, key string, value any) (*domain.Session, error) {
	return m.Update(ctx, sessionID, func(tx *Tx) error {
		tx.SetData(key, value)
		return nil
	})
}
