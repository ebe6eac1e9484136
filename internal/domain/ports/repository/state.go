package repository

import (
	"context"
)

// ConversationState holds a user's progress in any multi-step conversation
// (budget intake, proposal collection, product editing, broadcast composing).
type ConversationState struct {
	Step string            `json:"step"` // e.g. "intake_objective", "proposal_value"
	Data map[string]string `json:"data"`
}

// StateRepository manages per-user conversational state. Implementations
// expire entries after an idle TTL; GetState returns ErrNotFound after expiry.
type StateRepository interface {
	SetState(ctx context.Context, tgID int64, state *ConversationState) error
	GetState(ctx context.Context, tgID int64) (*ConversationState, error)
	ClearState(ctx context.Context, tgID int64) error
}
