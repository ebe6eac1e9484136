package repository

import (
	"context"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
)

// BudgetRepository persists budget aggregates.
//
// ActivateChat and the proposal methods push their invariants into single
// conditional statements so concurrent callbacks cannot interleave between a
// read and a write.
type BudgetRepository interface {
	Save(ctx context.Context, qx any, b *model.Budget) error
	FindByID(ctx context.Context, qx any, id string) (*model.Budget, error)
	FindAllByUser(ctx context.Context, qx any, userID string) ([]*model.Budget, error)
	FindAll(ctx context.Context, qx any) ([]*model.Budget, error)
	FindByStatus(ctx context.Context, qx any, status model.BudgetStatus) ([]*model.Budget, error)

	// FindActiveChatByUser returns the user's budget with chat_active=true,
	// or ErrNotFound when no chat is open.
	FindActiveChatByUser(ctx context.Context, qx any, userID string) (*model.Budget, error)
	// FindLatestByUser returns the user's most recently created budget.
	FindLatestByUser(ctx context.Context, qx any, userID string) (*model.Budget, error)

	UpdateStatus(ctx context.Context, qx any, id string, status model.BudgetStatus) error

	// ApplyProposal sets status=APPROVED, stores the proposal value and stamps
	// proposal_resolved_at in one statement. Returns ErrProposalResolved when
	// the stamp is already set.
	ApplyProposal(ctx context.Context, qx any, id, value string) error
	// RejectProposal sets status=ANALYZING and stamps proposal_resolved_at.
	// Returns ErrProposalResolved when the stamp is already set.
	RejectProposal(ctx context.Context, qx any, id string) error

	// ActivateChat sets chat_active=true only if no other budget of the same
	// user currently has an active chat. Returns ErrChatAlreadyActive when the
	// condition fails and ErrNotFound when the budget does not exist.
	ActivateChat(ctx context.Context, qx any, id string) error
	DeactivateChat(ctx context.Context, qx any, id string) error

	// DistinctUserIDs lists every customer that owns at least one budget.
	// Broadcast audience.
	DistinctUserIDs(ctx context.Context, qx any) ([]string, error)
}
