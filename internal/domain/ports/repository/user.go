package repository

import (
	"context"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
)

type UserRepository interface {
	// Save upserts; every inbound update refreshes name and username.
	Save(ctx context.Context, qx any, u *model.User) error
	FindByID(ctx context.Context, qx any, id string) (*model.User, error)
	FindAll(ctx context.Context, qx any) ([]*model.User, error)
}
