package repository

import (
	"context"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
)

type OrderRepository interface {
	Save(ctx context.Context, qx any, o *model.Order) error
	FindByID(ctx context.Context, qx any, id string) (*model.Order, error)
	FindAllByUser(ctx context.Context, qx any, userID string) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, qx any, id string, status model.OrderStatus) error
}
