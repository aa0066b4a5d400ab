// Package hitl provides review-queue adapters: a log-only queue for
// development and a Redis list for deployments with a reviewer console.
package hitl

import (
	"context"
	"encoding/json"
	"fmt"

	"log/slog"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"github.com/opencivic/sahayak/internal/logging"
	"github.com/opencivic/sahayak/pkg/ports"
)

// LogQueue implements ports.ReviewQueue by logging each case. Useful in
// development and as a stand-in when no reviewer console is configured.
type LogQueue struct {
	logger *slog.Logger
}

// NewLogQueue creates a log-only review queue.
func NewLogQueue(logger *slog.Logger) *LogQueue {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogQueue{logger: logger}
}

// Enqueue assigns a case ID and logs the case.
func (q *LogQueue) Enqueue(_ context.Context, c ports.Case) (string, error) {
	caseID := uuid.NewString()
	q.logger.Info("Review case enqueued",
		"case_id", caseID,
		"session_id", c.SessionID,
		"kind", c.Kind,
		"confidence", c.Confidence,
	)
	return caseID, nil
}

// RedisQueue implements ports.ReviewQueue over a Redis list. Reviewer
// tooling pops cases with BRPOP on the same key.
type RedisQueue struct {
	client *backend.Client
	key    string
}

// RedisQueueOption configures a RedisQueue.
type RedisQueueOption func(*RedisQueue)

// WithKey overrides the list key cases are pushed to.
func WithKey(key string) RedisQueueOption {
	return func(q *RedisQueue) {
		q.key = key
	}
}

// NewRedisQueue creates a review queue over an existing Redis client.
func NewRedisQueue(client *backend.Client, opts ...RedisQueueOption) *RedisQueue {
	q := &RedisQueue{
		client: client,
		key:    "sahayak:review:queue",
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// queuedCase is the wire shape pushed onto the list.
type queuedCase struct {
	CaseID string `json:"case_id"`
	ports.Case
}

// Enqueue assigns a case ID and pushes the case onto the list.
func (q *RedisQueue) Enqueue(ctx context.Context, c ports.Case) (string, error) {
	caseID := uuid.NewString()

	payload, err := json.Marshal(queuedCase{CaseID: caseID, Case: c})
	if err != nil {
		return "", fmt.Errorf("failed to marshal review case: %w", err)
	}

	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return "", fmt.Errorf("failed to push review case: %w", err)
	}

	return caseID, nil
}
