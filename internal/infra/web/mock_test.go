package web

import (
	"context"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
	"github.com/misterioso013/meu-orcamento-bot/internal/usecase"
)

// Function-field stubs so each test overrides only what it needs.

type stubBudgetUC struct {
	GetFn     func(ctx context.Context, id string) (*model.Budget, error)
	ListAllFn func(ctx context.Context) ([]*model.Budget, error)
}

var _ usecase.BudgetUseCase = (*stubBudgetUC)(nil)

func (s *stubBudgetUC) Create(ctx context.Context, userID string, category model.Category, answers model.IntakeAnswers) (*model.Budget, error) {
	return nil, nil
}

func (s *stubBudgetUC) Get(ctx context.Context, id string) (*model.Budget, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	return nil, nil
}

func (s *stubBudgetUC) ListByUser(ctx context.Context, userID string) ([]*model.Budget, error) {
	return nil, nil
}

func (s *stubBudgetUC) ListAll(ctx context.Context) ([]*model.Budget, error) {
	if s.ListAllFn != nil {
		return s.ListAllFn(ctx)
	}
	return nil, nil
}

func (s *stubBudgetUC) SetStatus(ctx context.Context, senderID int64, budgetID string, status model.BudgetStatus) (*model.Budget, error) {
	return nil, nil
}

func (s *stubBudgetUC) AcceptProposal(ctx context.Context, senderID int64, budgetID, value string) (*model.Budget, error) {
	return nil, nil
}

func (s *stubBudgetUC) RejectProposal(ctx context.Context, senderID int64, budgetID string) (*model.Budget, error) {
	return nil, nil
}

func (s *stubBudgetUC) StartChat(ctx context.Context, senderID int64, budgetID string) (*model.Budget, error) {
	return nil, nil
}

func (s *stubBudgetUC) EndChat(ctx context.Context, senderID int64, budgetID string) (*model.Budget, error) {
	return nil, nil
}

func (s *stubBudgetUC) ActiveChat(ctx context.Context, userID string) (*model.Budget, error) {
	return nil, nil
}

type stubProductUC struct {
	ListFn func(ctx context.Context) ([]*model.Product, error)
}

var _ usecase.ProductUseCase = (*stubProductUC)(nil)

func (s *stubProductUC) Get(ctx context.Context, id string) (*model.Product, error) { return nil, nil }

func (s *stubProductUC) List(ctx context.Context) ([]*model.Product, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx)
	}
	return nil, nil
}

func (s *stubProductUC) ListByCategory(ctx context.Context, category model.Category) ([]*model.Product, error) {
	return nil, nil
}

func (s *stubProductUC) Delete(ctx context.Context, senderID int64, id string) error { return nil }

func (s *stubProductUC) BeginAdd(ctx context.Context, senderID int64) (usecase.Reply, error) {
	return usecase.Reply{}, nil
}

func (s *stubProductUC) BeginEdit(ctx context.Context, senderID int64, productID string) (usecase.Reply, error) {
	return usecase.Reply{}, nil
}

func (s *stubProductUC) HandleAnswer(ctx context.Context, senderID int64, text string) (usecase.Reply, error) {
	return usecase.Reply{}, nil
}

func (s *stubProductUC) HandleCategory(ctx context.Context, senderID int64, raw string) (usecase.Reply, error) {
	return usecase.Reply{}, nil
}

func (s *stubProductUC) HandlePhoto(ctx context.Context, senderID int64, fileID string) (usecase.Reply, error) {
	return usecase.Reply{}, nil
}

func (s *stubProductUC) Cancel(ctx context.Context, senderID int64) error { return nil }

func (s *stubProductUC) Active(ctx context.Context, senderID int64) bool { return false }

type stubOrderUC struct {
	ListByUserFn func(ctx context.Context, userID string) ([]*model.Order, error)
}

var _ usecase.OrderUseCase = (*stubOrderUC)(nil)

func (s *stubOrderUC) Purchase(ctx context.Context, senderID int64, productID string) (*model.Order, *model.Product, error) {
	return nil, nil, nil
}

func (s *stubOrderUC) MarkPaid(ctx context.Context, orderID string) error { return nil }

func (s *stubOrderUC) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	if s.ListByUserFn != nil {
		return s.ListByUserFn(ctx, userID)
	}
	return nil, nil
}

type stubMessageRepo struct {
	FindByBudgetFn func(ctx context.Context, qx any, budgetID string) ([]*model.Message, error)
}

var _ repository.MessageRepository = (*stubMessageRepo)(nil)

func (s *stubMessageRepo) Save(ctx context.Context, qx any, m *model.Message) error { return nil }

func (s *stubMessageRepo) FindByBudget(ctx context.Context, qx any, budgetID string) ([]*model.Message, error) {
	if s.FindByBudgetFn != nil {
		return s.FindByBudgetFn(ctx, qx, budgetID)
	}
	return nil, nil
}

func (s *stubMessageRepo) Stats(ctx context.Context, qx any, budgetID string) (*repository.TranscriptStats, error) {
	return &repository.TranscriptStats{}, nil
}

type stubUserRepo struct {
	FindAllFn func(ctx context.Context, qx any) ([]*model.User, error)
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func (s *stubUserRepo) Save(ctx context.Context, qx any, u *model.User) error { return nil }

func (s *stubUserRepo) FindByID(ctx context.Context, qx any, id string) (*model.User, error) {
	return nil, nil
}

func (s *stubUserRepo) FindAll(ctx context.Context, qx any) ([]*model.User, error) {
	if s.FindAllFn != nil {
		return s.FindAllFn(ctx, qx)
	}
	return nil, nil
}
