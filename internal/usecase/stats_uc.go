package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase backs the admin's /info command: budget details plus
// transcript statistics for a customer.
type StatsUseCase interface {
	BudgetInfo(ctx context.Context, senderID int64, userID string) (*model.Budget, *repository.TranscriptStats, error)
}

type statsUC struct {
	budgets  repository.BudgetRepository
	messages repository.MessageRepository
	auth     adapter.Authorizer
	log      *zerolog.Logger
}

func NewStatsUseCase(
	budgets repository.BudgetRepository,
	messages repository.MessageRepository,
	auth adapter.Authorizer,
	logger *zerolog.Logger,
) *statsUC {
	return &statsUC{budgets: budgets, messages: messages, auth: auth, log: logger}
}

func (uc *statsUC) BudgetInfo(ctx context.Context, senderID int64, userID string) (*model.Budget, *repository.TranscriptStats, error) {
	if !uc.auth.IsAdmin(senderID) {
		return nil, nil, domain.ErrNotAuthorized
	}
	b, err := uc.budgets.FindActiveChatByUser(ctx, repository.NoTX, userID)
	if err != nil {
		b, err = uc.budgets.FindLatestByUser(ctx, repository.NoTX, userID)
		if err != nil {
			return nil, nil, err
		}
	}
	stats, err := uc.messages.Stats(ctx, repository.NoTX, b.ID)
	if err != nil {
		return nil, nil, err
	}
	return b, stats, nil
}
