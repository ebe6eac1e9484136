package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/usecase"
)

// BotFacade composes usecases into high-level bot commands.
// Facade methods return strings so the Telegram adapter just forwards them.
type BotFacade struct {
	UserUC      usecase.UserUseCase
	BudgetUC    usecase.BudgetUseCase
	RelayUC     usecase.RelayUseCase
	IntakeUC    usecase.IntakeUseCase
	ProposalUC  usecase.ProposalUseCase
	ProductUC   usecase.ProductUseCase
	OrderUC     usecase.OrderUseCase
	AnalysisUC  usecase.AnalysisUseCase
	BroadcastUC usecase.BroadcastUseCase
	StatsUC     usecase.StatsUseCase
	PricingUC   usecase.PricingUseCase
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	budgetUC usecase.BudgetUseCase,
	relayUC usecase.RelayUseCase,
	intakeUC usecase.IntakeUseCase,
	proposalUC usecase.ProposalUseCase,
	productUC usecase.ProductUseCase,
	orderUC usecase.OrderUseCase,
	analysisUC usecase.AnalysisUseCase,
	broadcastUC usecase.BroadcastUseCase,
	statsUC usecase.StatsUseCase,
	pricingUC usecase.PricingUseCase,
) *BotFacade {
	return &BotFacade{
		UserUC:      userUC,
		BudgetUC:    budgetUC,
		RelayUC:     relayUC,
		IntakeUC:    intakeUC,
		ProposalUC:  proposalUC,
		ProductUC:   productUC,
		OrderUC:     orderUC,
		AnalysisUC:  analysisUC,
		BroadcastUC: broadcastUC,
		StatsUC:     statsUC,
		PricingUC:   pricingUC,
	}
}

// HandleStart registers or refreshes the user and returns the welcome text.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, name, username string) (string, error) {
	u, err := b.UserUC.Touch(ctx, tgID, name, username)
	if err != nil {
		return "", fmt.Errorf("touch user: %w", err)
	}
	return fmt.Sprintf("👋 Hello, %s!\n\nI can prepare a budget for your next project, sell ready-made products and put you in touch with our team.", u.Name), nil
}

// StatusEmoji maps a budget status to its display emoji.
func StatusEmoji(s model.BudgetStatus) string {
	switch s {
	case model.BudgetPending:
		return "⏳"
	case model.BudgetAnalyzing:
		return "🔍"
	case model.BudgetApproved:
		return "✅"
	case model.BudgetRejected:
		return "❌"
	case model.BudgetCompleted:
		return "🎉"
	}
	return "❓"
}

// FormatBudgetDetails renders the full card for one budget.
func FormatBudgetDetails(b *model.Budget) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Budget - %s\n\n", b.Category)
	fmt.Fprintf(&sb, "Status: %s %s\n", StatusEmoji(b.Status), b.Status)
	fmt.Fprintf(&sb, "Date: %s\n\n", b.CreatedAt.Format("02/01/2006"))
	fmt.Fprintf(&sb, "Objective: %s\n", b.Answers.Objective)
	fmt.Fprintf(&sb, "Audience: %s\n", b.Answers.Audience)
	fmt.Fprintf(&sb, "Features: %s\n", b.Answers.Features)
	fmt.Fprintf(&sb, "Deadline: %s\n", b.Answers.Deadline)
	fmt.Fprintf(&sb, "Budget: %s\n", b.Answers.Budget)
	fmt.Fprintf(&sb, "Design: %s\n", b.Answers.Design)
	if b.Answers.Maintenance {
		sb.WriteString("Maintenance: yes\n")
	} else {
		sb.WriteString("Maintenance: no\n")
	}
	if b.Answers.Technologies != "" {
		fmt.Fprintf(&sb, "Technologies: %s\n", b.Answers.Technologies)
	}
	if b.Answers.Hosting {
		sb.WriteString("Hosting: yes\n")
	}
	if b.Answers.Integrations != "" {
		fmt.Fprintf(&sb, "Integrations: %s\n", b.Answers.Integrations)
	}
	if len(b.Answers.Specific) > 0 {
		sb.WriteString("\nSpecific details:\n")
		for k, v := range b.Answers.Specific {
			fmt.Fprintf(&sb, "%s: %s\n", k, v)
		}
	}
	return sb.String()
}

// HandleInfo renders the admin's /info output: budget card plus transcript
// statistics for the given customer.
func (b *BotFacade) HandleInfo(ctx context.Context, tgID int64, userID string) (string, error) {
	bd, stats, err := b.StatsUC.BudgetInfo(ctx, tgID, userID)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(FormatBudgetDetails(bd))
	fmt.Fprintf(&sb, "\n💬 Transcript: %d message(s)", stats.Count)
	if stats.Count > 0 {
		fmt.Fprintf(&sb, "\nFirst: %s\nLast: %s",
			stats.FirstAt.Format("02/01/2006 15:04"),
			stats.LastAt.Format("02/01/2006 15:04"))
	}
	if bd.ChatActive {
		sb.WriteString("\n\n🟢 Chat is open")
	} else {
		sb.WriteString("\n\n⚪ Chat is closed")
	}
	return sb.String(), nil
}

// FormatProductCard renders one store item with its star price.
func (b *BotFacade) FormatProductCard(ctx context.Context, p *model.Product) (string, int64, error) {
	stars, err := b.PricingUC.Stars(ctx, p.Price)
	if err != nil {
		return "", 0, err
	}
	text := fmt.Sprintf("%s\n\n%s\n\n💰 R$ %s (⭐️ %d)", p.Name, p.Description, p.Price, stars)
	return text, stars, nil
}

// UserFacingError maps domain errors to the text shown in chat; unknown
// errors collapse to a generic notice so internals never leak.
func UserFacingError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrNoActiveChat):
		return "💬 You have no open chat. Open one from your budget first."
	case errors.Is(err, domain.ErrChatAlreadyActive):
		return "💬 You already have an open chat."
	case errors.Is(err, domain.ErrRecipientUnresolved):
		return "⚠️ I could not tell who this reply is for. Reply directly to a forwarded customer message."
	case errors.Is(err, domain.ErrProposalResolved):
		return "⚠️ This proposal was already answered."
	case errors.Is(err, domain.ErrInvalidTransition):
		return "⚠️ That status change is not allowed."
	case errors.Is(err, domain.ErrNotAuthorized), errors.Is(err, domain.ErrNotChatOwner):
		return "🚫 You are not allowed to do that."
	case errors.Is(err, domain.ErrNotFound):
		return "🔎 Not found."
	}
	return "😕 Something went wrong. Please try again."
}
