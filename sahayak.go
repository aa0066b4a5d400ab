// Package sahayak is the high-level entry point for the eligibility
// dialogue library. It wires the session manager, scheme catalog,
// workflow engine, and review queue behind one constructor so transports
// (CLI, HTTP, MCP) consume a single Engine.
package sahayak

import (
	"context"
	"fmt"
	"os"
	"time"

	"log/slog"

	"github.com/opencivic/sahayak/internal/logging"
	"github.com/opencivic/sahayak/internal/workflow"
	"github.com/opencivic/sahayak/pkg/adapters/memory"
	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/ports"
	"github.com/opencivic/sahayak/pkg/scheme"
	"github.com/opencivic/sahayak/pkg/session"
)

// Version is the library release, reported by the CLI and the MCP server.
const Version = "0.3.0"

// Engine is the library facade over the workflow core.
type Engine struct {
	workflow *workflow.Engine
	sessions *session.Manager
	catalog  scheme.Catalog

	store  ports.SessionStore
	queue  ports.ReviewQueue
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	ttl    time.Duration
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithCatalog injects a catalog directly, bypassing the default YAML
// file load.
func WithCatalog(c scheme.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithSessionStore selects the session backend (default: in-memory).
func WithSessionStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithReviewQueue selects the review queue escalated cases go to.
func WithReviewQueue(queue ports.ReviewQueue) Option {
	return func(e *Engine) {
		e.queue = queue
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSessionTTL sets the expiry the store applies to session writes.
func WithSessionTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.ttl = ttl
	}
}

// New initializes an Engine. catalogPath names a YAML scheme catalog
// file, or a directory of frontmatter scheme documents; it may be empty
// when WithCatalog is provided. A corrupt catalog fails construction:
// the engine never serves traffic with bad rules.
func New(ctx context.Context, catalogPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.catalog == nil {
		if catalogPath == "" {
			return nil, fmt.Errorf("catalogPath is required when no catalog is provided")
		}
		cat, err := loadCatalog(ctx, catalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load scheme catalog: %w", err)
		}
		eng.catalog = cat
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	eng.sessions = session.NewManager(eng.store,
		session.WithLogger(eng.logger),
		session.WithTTL(eng.ttl),
		session.WithHooks(eng.hooks),
	)
	if err := eng.sessions.Initialize(ctx); err != nil {
		return nil, err
	}

	wfOpts := []workflow.Option{
		workflow.WithLogger(eng.logger),
		workflow.WithHooks(eng.hooks),
	}
	if eng.queue != nil {
		wfOpts = append(wfOpts, workflow.WithReviewQueue(eng.queue))
	}
	eng.workflow = workflow.New(eng.sessions, eng.catalog, wfOpts...)

	return eng, nil
}

func loadCatalog(ctx context.Context, path string) (scheme.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return scheme.LoadLoam(ctx, path)
	}
	return scheme.LoadFile(path)
}

// HandleInput processes one dialogue turn.
func (e *Engine) HandleInput(ctx context.Context, sessionID, rawInput string) (*domain.TurnResult, error) {
	return e.workflow.HandleInput(ctx, sessionID, rawInput)
}

// HandleTurn processes one dialogue turn with channel metadata.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, rawInput string, meta *domain.TurnMeta) (*domain.TurnResult, error) {
	return e.workflow.HandleTurn(ctx, sessionID, rawInput, meta)
}

// Session returns a stored session.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.sessions.Get(ctx, sessionID)
}

// Sessions lists stored session IDs.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Catalog exposes the scheme catalog in force.
// Scheme resolves one catalog entry. A miss returns ErrSchemeNotFound
// so transports can map it to their own not-found shape.
func (e *Engine) Scheme(name string) (*scheme.Scheme, error) {
	sch, ok := e.catalog.GetScheme(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrSchemeNotFound, name)
	}
	return sch, nil
}

func (e *Engine) Catalog() scheme.Catalog {
	return e.catalog
}
