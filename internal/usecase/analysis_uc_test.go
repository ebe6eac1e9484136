package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
)

func newAnalysisFixture(ai mockAI) (*analysisUC, *memBudgetRepo, *memProductRepo) {
	budgets := newMemBudgetRepo()
	products := newMemProductRepo()
	state := newMemStateRepo()
	uc := NewAnalysisUseCase(budgets, products, state, ai, testLogger())
	return uc, budgets, products
}

func TestAnalyzeBudgetBuildsPromptFromAnswers(t *testing.T) {
	uc, budgets, _ := newAnalysisFixture(mockAI{reply: "Medium scope, around R$ 3.000."})
	ctx := context.Background()

	b := model.NewBudget("b-1", "100", model.CategorySite, model.IntakeAnswers{
		Objective: "sell shoes",
		Specific:  map[string]string{"type": "store"},
	})
	_ = budgets.Save(ctx, nil, b)

	out, err := uc.AnalyzeBudget(ctx, "b-1")
	if err != nil {
		t.Fatalf("AnalyzeBudget: %v", err)
	}
	if out != "Medium scope, around R$ 3.000." {
		t.Fatalf("out = %q", out)
	}
}

func TestAnalyzeBudgetUnknownBudget(t *testing.T) {
	uc, _, _ := newAnalysisFixture(mockAI{reply: "x"})
	if _, err := uc.AnalyzeBudget(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAnalyzeBudgetApologizesOnProviderFailure(t *testing.T) {
	uc, budgets, _ := newAnalysisFixture(mockAI{err: errors.New("quota exceeded")})
	ctx := context.Background()

	b := model.NewBudget("b-1", "100", model.CategoryBot, model.IntakeAnswers{})
	_ = budgets.Save(ctx, nil, b)

	out, err := uc.AnalyzeBudget(ctx, "b-1")
	if err != nil {
		t.Fatalf("provider failures must not propagate, got %v", err)
	}
	if !strings.Contains(out, "Sorry") {
		t.Fatalf("out = %q, want the apology", out)
	}
}

func TestProductQAApologizesOnProviderFailure(t *testing.T) {
	uc, _, products := newAnalysisFixture(mockAI{err: errors.New("down")})
	_ = products.Save(context.Background(), nil, model.NewProduct("p-1", "Bot", "d", "10", model.CategoryBot))

	out, err := uc.ProductQA(context.Background(), "do you sell bots?")
	if err != nil {
		t.Fatalf("ProductQA: %v", err)
	}
	if !strings.Contains(out, "Sorry") {
		t.Fatalf("out = %q, want the apology", out)
	}
}

func TestQALifecycle(t *testing.T) {
	uc, _, _ := newAnalysisFixture(mockAI{reply: "hi"})
	ctx := context.Background()

	if uc.QAActive(ctx, customerID) {
		t.Fatal("fresh sender should not be in Q&A mode")
	}
	if err := uc.StartQA(ctx, customerID); err != nil {
		t.Fatalf("StartQA: %v", err)
	}
	if !uc.QAActive(ctx, customerID) {
		t.Fatal("Q&A mode not active after StartQA")
	}
	if err := uc.StopQA(ctx, customerID); err != nil {
		t.Fatalf("StopQA: %v", err)
	}
	if uc.QAActive(ctx, customerID) {
		t.Fatal("Q&A mode still active after StopQA")
	}
}
