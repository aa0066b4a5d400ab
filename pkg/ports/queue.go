package ports

import (
	"context"

	"github.com/opencivic/sahayak/pkg/domain"
)

// Case kinds accepted by a ReviewQueue.
const (
	CaseKindLowConfidence = "low_confidence"
	CaseKindVerifier      = "verifier_review"
)

// Case is the payload handed to human reviewers when the pipeline cannot
// finish a dialogue on its own.
type Case struct {
	SessionID  string                 `json:"session_id"`
	TurnID     string                 `json:"turn_id,omitempty"`
	Kind       string                 `json:"kind"`
	Transcript string                 `json:"transcript"`
	Response   string                 `json:"response"`
	Confidence float64                `json:"confidence"`
	Slots      map[string]any         `json:"slots,omitempty"`
	Receipt    *domain.BenefitReceipt `json:"receipt,omitempty"`
}

// ReviewQueue receives escalated cases. Implementations must assign a
// case ID and make the case visible to reviewers.
type ReviewQueue interface {
	Enqueue(ctx context.Context, c Case) (caseID string, err error)
}
