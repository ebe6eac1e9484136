package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/action"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
)

const (
	stepProposalValue       = "proposal_value"
	stepProposalDescription = "proposal_description"
)

// Compile-time check
var _ ProposalUseCase = (*proposalUC)(nil)

// ProposalUseCase runs the admin's two-step proposal composition (value, then
// justification) and delivers the offer to the customer with accept/reject
// buttons. The customer's answer is handled by BudgetUseCase.
type ProposalUseCase interface {
	Begin(ctx context.Context, senderID int64, budgetID string) (Reply, error)
	HandleAnswer(ctx context.Context, senderID int64, text string) (Reply, error)
	Cancel(ctx context.Context, senderID int64) error
	Active(ctx context.Context, senderID int64) bool
}

type proposalUC struct {
	budgets repository.BudgetRepository
	state   repository.StateRepository
	bot     adapter.TelegramBotAdapter
	auth    adapter.Authorizer
	log     *zerolog.Logger
}

func NewProposalUseCase(
	budgets repository.BudgetRepository,
	state repository.StateRepository,
	bot adapter.TelegramBotAdapter,
	auth adapter.Authorizer,
	logger *zerolog.Logger,
) *proposalUC {
	return &proposalUC{budgets: budgets, state: state, bot: bot, auth: auth, log: logger}
}

func (uc *proposalUC) Begin(ctx context.Context, senderID int64, budgetID string) (Reply, error) {
	if !uc.auth.IsAdmin(senderID) {
		return Reply{}, domain.ErrNotAuthorized
	}
	b, err := uc.budgets.FindByID(ctx, repository.NoTX, budgetID)
	if err != nil {
		return Reply{}, err
	}
	if !b.ProposalOpen() {
		return Reply{}, domain.ErrProposalResolved
	}
	st := &repository.ConversationState{
		Step: stepProposalValue,
		Data: map[string]string{"budget_id": budgetID},
	}
	if err := uc.state.SetState(ctx, senderID, st); err != nil {
		return Reply{}, err
	}
	return Reply{Text: "💰 Enter the proposed value for the project:"}, nil
}

func (uc *proposalUC) HandleAnswer(ctx context.Context, senderID int64, text string) (Reply, error) {
	st, err := uc.state.GetState(ctx, senderID)
	if err != nil {
		return Reply{}, domain.ErrNotFound
	}
	text = strings.TrimSpace(text)

	switch st.Step {
	case stepProposalValue:
		if text == "" {
			return Reply{Text: "💰 Please enter a value."}, nil
		}
		st.Data["value"] = text
		st.Step = stepProposalDescription
		if err := uc.state.SetState(ctx, senderID, st); err != nil {
			return Reply{}, err
		}
		return Reply{Text: "📝 Enter a description or justification for the proposal:"}, nil

	case stepProposalDescription:
		return uc.deliver(ctx, senderID, st, text)
	}
	return Reply{}, fmt.Errorf("proposal step %q: %w", st.Step, domain.ErrInvalidArgument)
}

func (uc *proposalUC) Cancel(ctx context.Context, senderID int64) error {
	return uc.state.ClearState(ctx, senderID)
}

func (uc *proposalUC) Active(ctx context.Context, senderID int64) bool {
	st, err := uc.state.GetState(ctx, senderID)
	return err == nil && strings.HasPrefix(st.Step, "proposal_")
}

func (uc *proposalUC) deliver(ctx context.Context, senderID int64, st *repository.ConversationState, description string) (Reply, error) {
	budgetID := st.Data["budget_id"]
	value := st.Data["value"]

	b, err := uc.budgets.FindByID(ctx, repository.NoTX, budgetID)
	if err != nil {
		return Reply{}, err
	}
	cid, err := chatID(b.UserID)
	if err != nil {
		return Reply{}, err
	}

	text := fmt.Sprintf("💼 New budget proposal\n\nProject: %s\nProposed value: R$ %s\n\nDescription:\n%s\n\nDo you accept this proposal?",
		b.Category, value, description)
	rows := [][]adapter.InlineButton{{
		{Text: "✅ Accept", Data: action.Encode(action.KindAcceptProposal, budgetID, value)},
		{Text: "❌ Decline", Data: action.Encode(action.KindRejectProposal, budgetID)},
	}}
	if err := uc.bot.SendButtons(ctx, cid, text, rows); err != nil {
		uc.log.Error().Err(err).Str("budget_id", budgetID).Msg("proposal delivery failed")
		return Reply{}, fmt.Errorf("deliver proposal: %w", err)
	}
	if err := uc.state.ClearState(ctx, senderID); err != nil {
		uc.log.Warn().Err(err).Int64("tg_id", senderID).Msg("proposal: state clear failed")
	}
	return Reply{Text: "✅ Proposal sent! Waiting for the customer's answer.", Done: true}, nil
}
