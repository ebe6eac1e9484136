package usecase

import (
	"context"
	"strconv"
	"testing"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
)

func newIntakeFixture() (*intakeUC, *memBudgetRepo, *memStateRepo) {
	budgets := newMemBudgetRepo()
	bot := newMockBot()
	budgetUC := NewBudgetUseCase(budgets, fakeTxManager{}, bot, mockAuth{admin: adminID}, nil, testLogger())
	state := newMemStateRepo()
	uc := NewIntakeUseCase(state, budgetUC, testLogger())
	return uc, budgets, state
}

func TestIntakeFullSiteFlow(t *testing.T) {
	uc, budgets, _ := newIntakeFixture()
	ctx := context.Background()

	reply, err := uc.Begin(ctx, customerID)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if len(reply.Rows) != 4 {
		t.Fatalf("category keyboard rows = %d, want 4", len(reply.Rows))
	}
	if !uc.Active(ctx, customerID) {
		t.Fatal("intake should be active after Begin")
	}

	if _, err := uc.HandleCategory(ctx, customerID, "intake_cat_SITE"); err != nil {
		t.Fatalf("HandleCategory: %v", err)
	}

	general := []string{"sell shoes", "local buyers", "cart and checkout", "1 month", "R$ 5.000", "have a logo"}
	for i, answer := range general {
		reply, err = uc.HandleAnswer(ctx, customerID, answer)
		if err != nil {
			t.Fatalf("general answer %d: %v", i, err)
		}
	}
	// The last general answer hands off to the maintenance buttons.
	if len(reply.Rows) == 0 {
		t.Fatal("maintenance keyboard missing after design answer")
	}

	if _, err := uc.HandleMaintenance(ctx, customerID, true); err != nil {
		t.Fatalf("HandleMaintenance: %v", err)
	}

	// Six site-specific questions close the flow.
	for i := 0; i < 6; i++ {
		reply, err = uc.HandleAnswer(ctx, customerID, "answer "+strconv.Itoa(i))
		if err != nil {
			t.Fatalf("specific answer %d: %v", i, err)
		}
	}
	if !reply.Done {
		t.Fatal("flow did not finish after the last specific answer")
	}
	if uc.Active(ctx, customerID) {
		t.Fatal("state not cleared after finish")
	}

	all, _ := budgets.FindAllByUser(ctx, nil, "100")
	if len(all) != 1 {
		t.Fatalf("budgets created = %d, want 1", len(all))
	}
	b := all[0]
	if b.Category != model.CategorySite || b.Status != model.BudgetPending {
		t.Fatalf("unexpected budget: %+v", b)
	}
	if b.Answers.Objective != "sell shoes" || !b.Answers.Maintenance {
		t.Fatalf("answers not mapped: %+v", b.Answers)
	}
	if len(b.Answers.Specific) != 6 {
		t.Fatalf("specific answers = %d, want 6", len(b.Answers.Specific))
	}
	if b.Answers.Specific["type"] != "answer 0" {
		t.Fatalf("specific[type] = %q", b.Answers.Specific["type"])
	}
}

func TestIntakeCancelClearsState(t *testing.T) {
	uc, _, _ := newIntakeFixture()
	ctx := context.Background()

	if _, err := uc.Begin(ctx, customerID); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := uc.Cancel(ctx, customerID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if uc.Active(ctx, customerID) {
		t.Fatal("intake still active after cancel")
	}
}

func TestIntakeRejectsUnknownCategory(t *testing.T) {
	uc, _, _ := newIntakeFixture()
	ctx := context.Background()

	if _, err := uc.Begin(ctx, customerID); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := uc.HandleCategory(ctx, customerID, "intake_cat_SPACESHIP"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}
