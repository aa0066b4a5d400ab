package hitl_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencivic/sahayak/pkg/adapters/hitl"
	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/ports"
)

func TestLogQueue_AssignsCaseIDs(t *testing.T) {
	q := hitl.NewLogQueue(nil)

	id1, err := q.Enqueue(context.Background(), ports.Case{SessionID: "s1", Kind: ports.CaseKindLowConfidence})
	require.NoError(t, err)
	id2, err := q.Enqueue(context.Background(), ports.Case{SessionID: "s1", Kind: ports.CaseKindLowConfidence})
	require.NoError(t, err)

	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)
}

func TestRedisQueue_PushesCase(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	q := hitl.NewRedisQueue(client, hitl.WithKey("test:review"))

	c := ports.Case{
		SessionID:  "s1",
		Kind:       ports.CaseKindVerifier,
		Transcript: "1.5",
		Confidence: 0.7,
		Receipt:    &domain.BenefitReceipt{Eligible: true, Scheme: "PM-KISAN", Confidence: 1.0},
		Slots:      map[string]any{"occupation": "Farmer"},
	}

	caseID, err := q.Enqueue(context.Background(), c)
	require.NoError(t, err)
	assert.NotEmpty(t, caseID)

	raw, err := mr.Lpop("test:review")
	require.NoError(t, err)

	var popped struct {
		CaseID string `json:"case_id"`
		ports.Case
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &popped))
	assert.Equal(t, caseID, popped.CaseID)
	assert.Equal(t, "s1", popped.SessionID)
	assert.Equal(t, ports.CaseKindVerifier, popped.Kind)
	require.NotNil(t, popped.Receipt)
	assert.True(t, popped.Receipt.Eligible)
}
