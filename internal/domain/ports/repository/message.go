package repository

import (
	"context"
	"time"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
)

// TranscriptStats summarizes a budget's relay transcript.
type TranscriptStats struct {
	Count   int64
	FirstAt time.Time
	LastAt  time.Time
}

// MessageRepository is an append-only log. Entries are never updated or
// deleted.
type MessageRepository interface {
	Save(ctx context.Context, qx any, m *model.Message) error
	FindByBudget(ctx context.Context, qx any, budgetID string) ([]*model.Message, error)
	// Stats returns zero Count and zero times for an empty transcript.
	Stats(ctx context.Context, qx any, budgetID string) (*TranscriptStats, error)
}
