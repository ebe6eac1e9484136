package repository

import (
	"context"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
)

type ProductRepository interface {
	Save(ctx context.Context, qx any, p *model.Product) error
	FindByID(ctx context.Context, qx any, id string) (*model.Product, error)
	FindAll(ctx context.Context, qx any) ([]*model.Product, error)
	FindByCategory(ctx context.Context, qx any, category model.Category) ([]*model.Product, error)
	Update(ctx context.Context, qx any, p *model.Product) error
	Delete(ctx context.Context, qx any, id string) error
}
