package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

type UserUseCase interface {
	// Touch upserts the sender on every inbound update so names and
	// usernames stay fresh.
	Touch(ctx context.Context, senderID int64, name, username string) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
}

type userUC struct {
	users repository.UserRepository
	auth  adapter.Authorizer
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, auth adapter.Authorizer, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, auth: auth, log: logger}
}

func (uc *userUC) Touch(ctx context.Context, senderID int64, name, username string) (*model.User, error) {
	u := model.NewUser(fmt.Sprint(senderID), name, username, uc.auth.IsAdmin(senderID))
	if err := uc.users.Save(ctx, repository.NoTX, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *userUC) Get(ctx context.Context, userID string) (*model.User, error) {
	return uc.users.FindByID(ctx, repository.NoTX, userID)
}
