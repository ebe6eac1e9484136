package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
)

// apology is returned whenever the AI backend fails; the bot never surfaces
// raw provider errors to users.
const apology = "😔 Sorry, I could not process that right now. Please try again in a moment."

const analysisSystem = "You are an assistant for a software development agency. " +
	"Analyze the budget request below and summarize scope, risks and a suggested price range in BRL. Be concise."

const productSystem = "You are a sales assistant for a software development agency. " +
	"Answer the customer's question using only the catalog below. If unsure, suggest talking to the team."

const stepAIQA = "ai_qa"

// Compile-time check
var _ AnalysisUseCase = (*analysisUC)(nil)

type AnalysisUseCase interface {
	// AnalyzeBudget produces an admin-facing assessment of a request.
	AnalyzeBudget(ctx context.Context, budgetID string) (string, error)
	// ProductQA answers a customer question grounded on the catalog.
	ProductQA(ctx context.Context, question string) (string, error)

	// StartQA puts the sender in Q&A mode so their next messages go to the
	// assistant instead of the relay.
	StartQA(ctx context.Context, senderID int64) error
	StopQA(ctx context.Context, senderID int64) error
	QAActive(ctx context.Context, senderID int64) bool
}

type analysisUC struct {
	budgets  repository.BudgetRepository
	products repository.ProductRepository
	state    repository.StateRepository
	ai       adapter.AIAdapter
	log      *zerolog.Logger
}

func NewAnalysisUseCase(
	budgets repository.BudgetRepository,
	products repository.ProductRepository,
	state repository.StateRepository,
	ai adapter.AIAdapter,
	logger *zerolog.Logger,
) *analysisUC {
	return &analysisUC{budgets: budgets, products: products, state: state, ai: ai, log: logger}
}

func (uc *analysisUC) StartQA(ctx context.Context, senderID int64) error {
	return uc.state.SetState(ctx, senderID, &repository.ConversationState{Step: stepAIQA, Data: map[string]string{}})
}

func (uc *analysisUC) StopQA(ctx context.Context, senderID int64) error {
	return uc.state.ClearState(ctx, senderID)
}

func (uc *analysisUC) QAActive(ctx context.Context, senderID int64) bool {
	st, err := uc.state.GetState(ctx, senderID)
	return err == nil && st.Step == stepAIQA
}

func (uc *analysisUC) AnalyzeBudget(ctx context.Context, budgetID string) (string, error) {
	b, err := uc.budgets.FindByID(ctx, repository.NoTX, budgetID)
	if err != nil {
		return "", err
	}
	reply, err := uc.ai.Generate(ctx, analysisSystem, budgetPrompt(b))
	if err != nil {
		uc.log.Warn().Err(err).Str("budget_id", budgetID).Msg("ai analysis failed")
		return apology, nil
	}
	return reply, nil
}

func (uc *analysisUC) ProductQA(ctx context.Context, question string) (string, error) {
	products, err := uc.products.FindAll(ctx, repository.NoTX)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, p := range products {
		fmt.Fprintf(&sb, "- %s (%s, R$ %s): %s\n", p.Name, p.Category, p.Price, p.Description)
	}
	reply, err := uc.ai.Generate(ctx, productSystem+"\n\nCatalog:\n"+sb.String(), question)
	if err != nil {
		uc.log.Warn().Err(err).Msg("ai product answer failed")
		return apology, nil
	}
	return reply, nil
}

func budgetPrompt(b *model.Budget) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Category: %s\nObjective: %s\nAudience: %s\nFeatures: %s\nDeadline: %s\nBudget: %s\nDesign: %s\nMaintenance: %v\n",
		b.Category, b.Answers.Objective, b.Answers.Audience, b.Answers.Features,
		b.Answers.Deadline, b.Answers.Budget, b.Answers.Design, b.Answers.Maintenance)
	for k, v := range b.Answers.Specific {
		fmt.Fprintf(&sb, "%s: %s\n", k, v)
	}
	return sb.String()
}
