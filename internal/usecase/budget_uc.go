package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/action"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
	"github.com/misterioso013/meu-orcamento-bot/internal/infra/metrics"
)

// Compile-time check
var _ BudgetUseCase = (*budgetUC)(nil)

// ChatLocker serializes concurrent chat activations for the same customer.
// The conditional UPDATE in the repository already enforces the invariant;
// the lock only keeps a burst of taps from racing to the same row.
type ChatLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

type BudgetUseCase interface {
	Create(ctx context.Context, userID string, category model.Category, answers model.IntakeAnswers) (*model.Budget, error)
	Get(ctx context.Context, id string) (*model.Budget, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Budget, error)
	ListAll(ctx context.Context) ([]*model.Budget, error)

	// SetStatus applies an admin-driven status change. The customer is
	// notified after the change is committed, and only for statuses that are
	// customer-facing.
	SetStatus(ctx context.Context, senderID int64, budgetID string, status model.BudgetStatus) (*model.Budget, error)

	// AcceptProposal and RejectProposal are customer-driven; both refuse
	// replayed callbacks once the proposal is resolved.
	AcceptProposal(ctx context.Context, senderID int64, budgetID, value string) (*model.Budget, error)
	RejectProposal(ctx context.Context, senderID int64, budgetID string) (*model.Budget, error)

	StartChat(ctx context.Context, senderID int64, budgetID string) (*model.Budget, error)
	EndChat(ctx context.Context, senderID int64, budgetID string) (*model.Budget, error)
	ActiveChat(ctx context.Context, userID string) (*model.Budget, error)
}

type budgetUC struct {
	budgets repository.BudgetRepository
	tm      repository.TransactionManager
	bot     adapter.TelegramBotAdapter
	auth    adapter.Authorizer
	locker  ChatLocker // optional, nil skips the serialization
	log     *zerolog.Logger
}

func NewBudgetUseCase(
	budgets repository.BudgetRepository,
	tm repository.TransactionManager,
	bot adapter.TelegramBotAdapter,
	auth adapter.Authorizer,
	locker ChatLocker,
	logger *zerolog.Logger,
) *budgetUC {
	return &budgetUC{budgets: budgets, tm: tm, bot: bot, auth: auth, locker: locker, log: logger}
}

func (uc *budgetUC) Create(ctx context.Context, userID string, category model.Category, answers model.IntakeAnswers) (*model.Budget, error) {
	b := model.NewBudget(uuid.NewString(), userID, category, answers)
	if err := uc.budgets.Save(ctx, repository.NoTX, b); err != nil {
		return nil, err
	}
	metrics.IncBudgetCreated(string(category))
	uc.notifyAdminNewBudget(ctx, b)
	return b, nil
}

func (uc *budgetUC) Get(ctx context.Context, id string) (*model.Budget, error) {
	return uc.budgets.FindByID(ctx, repository.NoTX, id)
}

func (uc *budgetUC) ListByUser(ctx context.Context, userID string) ([]*model.Budget, error) {
	return uc.budgets.FindAllByUser(ctx, repository.NoTX, userID)
}

func (uc *budgetUC) ListAll(ctx context.Context) ([]*model.Budget, error) {
	return uc.budgets.FindAll(ctx, repository.NoTX)
}

func (uc *budgetUC) SetStatus(ctx context.Context, senderID int64, budgetID string, status model.BudgetStatus) (*model.Budget, error) {
	if !uc.auth.IsAdmin(senderID) {
		return nil, domain.ErrNotAuthorized
	}

	var b *model.Budget
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		b, err = uc.budgets.FindByID(ctx, tx, budgetID)
		if err != nil {
			return err
		}
		if !b.Status.CanTransition(status) {
			return fmt.Errorf("budget %s: %s -> %s: %w", budgetID, b.Status, status, domain.ErrInvalidTransition)
		}
		if err := uc.budgets.UpdateStatus(ctx, tx, budgetID, status); err != nil {
			return err
		}
		b.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncStatusChange(string(status))
	// Notify only after the commit so the customer never sees a status the
	// store did not accept.
	if status.NotifiesCustomer() {
		uc.notifyCustomerStatus(ctx, b)
	}
	return b, nil
}

func (uc *budgetUC) AcceptProposal(ctx context.Context, senderID int64, budgetID, value string) (*model.Budget, error) {
	b, err := uc.customerBudget(ctx, senderID, budgetID)
	if err != nil {
		return nil, err
	}
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		return uc.budgets.ApplyProposal(ctx, tx, budgetID, value)
	})
	if err != nil {
		return nil, err
	}
	b.Status = model.BudgetApproved
	b.Answers.Budget = value

	metrics.IncProposalResolved("accepted")
	uc.sendTo(ctx, uc.auth.AdminID(),
		fmt.Sprintf("✅ Proposal accepted!\n\nBudget: %s\nValue: %s", budgetID, value))
	return b, nil
}

func (uc *budgetUC) RejectProposal(ctx context.Context, senderID int64, budgetID string) (*model.Budget, error) {
	b, err := uc.customerBudget(ctx, senderID, budgetID)
	if err != nil {
		return nil, err
	}
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		return uc.budgets.RejectProposal(ctx, tx, budgetID)
	})
	if err != nil {
		return nil, err
	}
	b.Status = model.BudgetAnalyzing

	metrics.IncProposalResolved("rejected")
	uc.sendTo(ctx, uc.auth.AdminID(),
		fmt.Sprintf("❌ Proposal rejected.\n\nBudget: %s\nThe request went back to analysis.", budgetID))
	return b, nil
}

func (uc *budgetUC) StartChat(ctx context.Context, senderID int64, budgetID string) (*model.Budget, error) {
	b, err := uc.customerBudget(ctx, senderID, budgetID)
	if err != nil {
		return nil, err
	}
	if uc.locker != nil {
		token, err := uc.locker.TryLock(ctx, "chat_lock:"+b.UserID, 5*time.Second)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := uc.locker.Unlock(ctx, "chat_lock:"+b.UserID, token); err != nil {
				uc.log.Warn().Err(err).Str("budget_id", budgetID).Msg("chat lock release failed")
			}
		}()
	}
	if err := uc.budgets.ActivateChat(ctx, repository.NoTX, budgetID); err != nil {
		return nil, err
	}
	b.ChatActive = true

	metrics.IncChatSession("start")
	uc.sendTo(ctx, uc.auth.AdminID(),
		fmt.Sprintf("💬 Chat opened on budget %s. Reply to the customer's forwarded messages to answer.", budgetID))
	return b, nil
}

func (uc *budgetUC) EndChat(ctx context.Context, senderID int64, budgetID string) (*model.Budget, error) {
	b, err := uc.budgets.FindByID(ctx, repository.NoTX, budgetID)
	if err != nil {
		return nil, err
	}
	if !uc.auth.IsAdmin(senderID) && b.UserID != fmt.Sprint(senderID) {
		return nil, domain.ErrNotChatOwner
	}
	if !b.ChatActive {
		return nil, domain.ErrNoActiveChat
	}
	if err := uc.budgets.DeactivateChat(ctx, repository.NoTX, budgetID); err != nil {
		return nil, err
	}
	b.ChatActive = false

	metrics.IncChatSession("end")
	if uc.auth.IsAdmin(senderID) {
		if cid, err := chatID(b.UserID); err == nil {
			uc.sendTo(ctx, cid, "💬 The support chat was closed. You can reopen it from your budget at any time.")
		}
	} else {
		uc.sendTo(ctx, uc.auth.AdminID(), fmt.Sprintf("💬 Chat closed on budget %s.", budgetID))
	}
	return b, nil
}

func (uc *budgetUC) ActiveChat(ctx context.Context, userID string) (*model.Budget, error) {
	return uc.budgets.FindActiveChatByUser(ctx, repository.NoTX, userID)
}

// customerBudget loads a budget and checks the sender owns it. The admin may
// act on any budget, mirroring EndChat, so proposals can be resolved on a
// customer's behalf.
func (uc *budgetUC) customerBudget(ctx context.Context, senderID int64, budgetID string) (*model.Budget, error) {
	b, err := uc.budgets.FindByID(ctx, repository.NoTX, budgetID)
	if err != nil {
		return nil, err
	}
	if !uc.auth.IsAdmin(senderID) && b.UserID != fmt.Sprint(senderID) {
		return nil, domain.ErrNotAuthorized
	}
	return b, nil
}

func (uc *budgetUC) notifyCustomerStatus(ctx context.Context, b *model.Budget) {
	cid, err := chatID(b.UserID)
	if err != nil {
		uc.log.Warn().Err(err).Str("budget_id", b.ID).Msg("cannot notify customer: bad user id")
		return
	}
	var text string
	switch b.Status {
	case model.BudgetApproved:
		text = fmt.Sprintf("✅ Your budget request was approved!\n\nCategory: %s\nWe will contact you shortly to move forward.", b.Category)
	case model.BudgetRejected:
		text = fmt.Sprintf("❌ Unfortunately your budget request was not approved.\n\nCategory: %s\nYou can submit a new request at any time.", b.Category)
	case model.BudgetCompleted:
		text = fmt.Sprintf("🎉 Your project is complete!\n\nCategory: %s\nThank you for working with us.", b.Category)
	default:
		return
	}
	uc.sendTo(ctx, cid, text)
}

func (uc *budgetUC) notifyAdminNewBudget(ctx context.Context, b *model.Budget) {
	text := fmt.Sprintf("📥 New budget request!\n\nCategory: %s\nObjective: %s\nDeadline: %s\nBudget: %s",
		b.Category, b.Answers.Objective, b.Answers.Deadline, b.Answers.Budget)
	rows := [][]adapter.InlineButton{
		{{Text: "🔍 Analyze", Data: action.Encode(action.KindStatus, b.ID, string(model.BudgetAnalyzing))}},
		{{Text: "📋 Details", Data: action.Encode(action.KindViewBudget, b.ID)}},
	}
	if err := uc.bot.SendButtons(ctx, uc.auth.AdminID(), text, rows); err != nil {
		uc.log.Warn().Err(err).Str("budget_id", b.ID).Msg("failed to notify admin of new budget")
	}
}

func (uc *budgetUC) sendTo(ctx context.Context, cid int64, text string) {
	if err := uc.bot.SendMessage(ctx, cid, text); err != nil {
		uc.log.Warn().Err(err).Int64("chat_id", cid).Msg("notification send failed")
	}
}
