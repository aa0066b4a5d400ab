package cli

import (
	"context"
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/opencivic/sahayak"
	"github.com/opencivic/sahayak/internal/logging"
	"github.com/opencivic/sahayak/pkg/adapters/file"
	"github.com/opencivic/sahayak/pkg/adapters/hitl"
	"github.com/opencivic/sahayak/pkg/adapters/memory"
	redisadapter "github.com/opencivic/sahayak/pkg/adapters/redis"
	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/ports"
)

// NewLogger configures the application logger. Output always goes to
// Stderr so prompts and JSON-RPC on Stdout stay clean.
func NewLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(slog.LevelInfo)
}

// NewEngine initializes a sahayak engine with standard CLI conventions:
// store selected per options, a review queue backed by Redis when available,
// otherwise the logging queue.
func NewEngine(ctx context.Context, opts RunOptions, logger *slog.Logger, extraHooks ...domain.LifecycleHooks) (*sahayak.Engine, error) {
	store, queue, err := NewStore(opts, logger)
	if err != nil {
		return nil, err
	}

	engineOpts := []sahayak.Option{
		sahayak.WithLogger(logger),
		sahayak.WithSessionStore(store),
		sahayak.WithReviewQueue(queue),
	}
	if opts.SessionTTL > 0 {
		engineOpts = append(engineOpts, sahayak.WithSessionTTL(opts.SessionTTL))
	}
	for _, h := range extraHooks {
		engineOpts = append(engineOpts, sahayak.WithLifecycleHooks(h))
	}

	engine, err := sahayak.New(ctx, opts.CatalogPath, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// NewStore builds the session store and review queue selected by options.
// Redis deployments share one client between the two.
func NewStore(opts RunOptions, logger *slog.Logger) (ports.SessionStore, ports.ReviewQueue, error) {
	switch opts.Store {
	case "file":
		return file.New(opts.FilePath), hitl.NewLogQueue(logger), nil
	case "redis":
		client, err := redisClient(opts.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		storeOpts := []redisadapter.Option{}
		if opts.SessionTTL > 0 {
			storeOpts = append(storeOpts, redisadapter.WithTTL(opts.SessionTTL))
		}
		return redisadapter.NewFromClient(client, storeOpts...), hitl.NewRedisQueue(client), nil
	default:
		return memory.NewStore(), hitl.NewLogQueue(logger), nil
	}
}

func redisClient(url string) (*backend.Client, error) {
	redisOpts, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return backend.NewClient(redisOpts), nil
}
