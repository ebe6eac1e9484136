package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
)

func newProposalFixture() (*proposalUC, *memBudgetRepo, *memStateRepo, *mockBot) {
	budgets := newMemBudgetRepo()
	state := newMemStateRepo()
	bot := newMockBot()
	uc := NewProposalUseCase(budgets, state, bot, mockAuth{admin: adminID}, testLogger())
	return uc, budgets, state, bot
}

func TestProposalBeginRequiresAdmin(t *testing.T) {
	uc, budgets, _, _ := newProposalFixture()
	b := model.NewBudget("b-1", "100", model.CategorySite, model.IntakeAnswers{})
	_ = budgets.Save(context.Background(), nil, b)

	if _, err := uc.Begin(context.Background(), customerID, "b-1"); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestProposalBeginRefusesResolvedBudget(t *testing.T) {
	uc, budgets, _, _ := newProposalFixture()
	b := model.NewBudget("b-1", "100", model.CategorySite, model.IntakeAnswers{})
	now := time.Now()
	b.ProposalResolvedAt = &now
	_ = budgets.Save(context.Background(), nil, b)

	if _, err := uc.Begin(context.Background(), adminID, "b-1"); !errors.Is(err, domain.ErrProposalResolved) {
		t.Fatalf("err = %v, want ErrProposalResolved", err)
	}
}

func TestProposalFlowDeliversOffer(t *testing.T) {
	uc, budgets, _, bot := newProposalFixture()
	ctx := context.Background()
	b := model.NewBudget("b-1", "100", model.CategoryBot, model.IntakeAnswers{})
	_ = budgets.Save(ctx, nil, b)

	if _, err := uc.Begin(ctx, adminID, "b-1"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if !uc.Active(ctx, adminID) {
		t.Fatal("proposal conversation should be active")
	}

	if _, err := uc.HandleAnswer(ctx, adminID, "R$ 1.500,00"); err != nil {
		t.Fatalf("value answer: %v", err)
	}
	reply, err := uc.HandleAnswer(ctx, adminID, "Covers bot development and 30 days of support.")
	if err != nil {
		t.Fatalf("description answer: %v", err)
	}
	if !reply.Done {
		t.Fatal("flow should finish after the description")
	}
	if uc.Active(ctx, adminID) {
		t.Fatal("state not cleared after delivery")
	}

	offers := bot.sentTo(customerID)
	if len(offers) != 1 {
		t.Fatalf("offer not delivered, got %v", offers)
	}
	if !strings.Contains(offers[0].Text, "R$ 1.500,00") {
		t.Fatalf("offer text missing the value: %q", offers[0].Text)
	}
	if len(offers[0].Rows) != 1 || len(offers[0].Rows[0]) != 2 {
		t.Fatalf("offer must carry accept/decline buttons, got %v", offers[0].Rows)
	}
	// The value survives the callback round-trip including the colon.
	if !strings.HasPrefix(offers[0].Rows[0][0].Data, "accept_proposal:b-1:") {
		t.Fatalf("accept payload = %q", offers[0].Rows[0][0].Data)
	}
}
