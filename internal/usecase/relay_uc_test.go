package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
)

func newRelayFixture() (*relayUC, *memBudgetRepo, *memMessageRepo, *mockBot) {
	budgets := newMemBudgetRepo()
	messages := newMemMessageRepo()
	bot := newMockBot()
	uc := NewRelayUseCase(budgets, messages, bot, mockAuth{admin: adminID}, testLogger())
	return uc, budgets, messages, bot
}

func TestFromAdminRequiresReplyProvenance(t *testing.T) {
	uc, _, _, _ := newRelayFixture()

	err := uc.FromAdmin(context.Background(), Inbound{SenderID: adminID, MessageID: 1})
	if !errors.Is(err, domain.ErrRecipientUnresolved) {
		t.Fatalf("err = %v, want ErrRecipientUnresolved", err)
	}
}

func TestFromAdminPrefersActiveChat(t *testing.T) {
	uc, budgets, messages, bot := newRelayFixture()

	older := model.NewBudget("b-old", "100", model.CategorySite, model.IntakeAnswers{})
	older.CreatedAt = time.Now().Add(-time.Hour)
	older.ChatActive = true
	newer := model.NewBudget("b-new", "100", model.CategoryBot, model.IntakeAnswers{})
	_ = budgets.Save(context.Background(), nil, older)
	_ = budgets.Save(context.Background(), nil, newer)

	err := uc.FromAdmin(context.Background(), Inbound{
		SenderID: adminID, MessageID: 42, Text: "hi", RepliedOrigin: 100,
	})
	if err != nil {
		t.Fatalf("FromAdmin: %v", err)
	}
	if len(messages.saved) != 1 || messages.saved[0].BudgetID != "b-old" {
		t.Fatalf("message not logged against the active chat: %+v", messages.saved)
	}
	if !messages.saved[0].FromAdmin {
		t.Fatal("message not marked as from admin")
	}
	if len(bot.copied) != 1 || bot.copied[0] != 42 {
		t.Fatalf("copy not delivered, got %v", bot.copied)
	}
}

func TestFromAdminFallsBackToLatestBudget(t *testing.T) {
	uc, budgets, messages, _ := newRelayFixture()

	older := model.NewBudget("b-old", "100", model.CategorySite, model.IntakeAnswers{})
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := model.NewBudget("b-new", "100", model.CategoryBot, model.IntakeAnswers{})
	_ = budgets.Save(context.Background(), nil, older)
	_ = budgets.Save(context.Background(), nil, newer)

	err := uc.FromAdmin(context.Background(), Inbound{
		SenderID: adminID, MessageID: 7, Text: "answer", RepliedOrigin: 100,
	})
	if err != nil {
		t.Fatalf("FromAdmin: %v", err)
	}
	if len(messages.saved) != 1 || messages.saved[0].BudgetID != "b-new" {
		t.Fatalf("message should land on the latest budget: %+v", messages.saved)
	}
}

func TestFromAdminKeepsLogOnDeliveryFailure(t *testing.T) {
	uc, budgets, messages, bot := newRelayFixture()
	bot.copyErr = errors.New("blocked")

	b := model.NewBudget("b-1", "100", model.CategorySite, model.IntakeAnswers{})
	b.ChatActive = true
	_ = budgets.Save(context.Background(), nil, b)

	err := uc.FromAdmin(context.Background(), Inbound{
		SenderID: adminID, MessageID: 5, Text: "hi", RepliedOrigin: 100,
	})
	if err == nil {
		t.Fatal("expected delivery error")
	}
	// The transcript records the attempt even when Telegram refused it.
	if len(messages.saved) != 1 {
		t.Fatalf("log entry dropped on delivery failure: %+v", messages.saved)
	}
}

func TestFromCustomerNeedsActiveChat(t *testing.T) {
	uc, budgets, _, _ := newRelayFixture()

	b := model.NewBudget("b-1", "100", model.CategorySite, model.IntakeAnswers{})
	_ = budgets.Save(context.Background(), nil, b)

	err := uc.FromCustomer(context.Background(), Inbound{SenderID: 100, MessageID: 1, Text: "hello"})
	if !errors.Is(err, domain.ErrNoActiveChat) {
		t.Fatalf("err = %v, want ErrNoActiveChat", err)
	}
}

func TestFromCustomerForwardsToAdmin(t *testing.T) {
	uc, budgets, messages, bot := newRelayFixture()

	b := model.NewBudget("b-1", "100", model.CategorySite, model.IntakeAnswers{})
	b.ChatActive = true
	_ = budgets.Save(context.Background(), nil, b)

	in := Inbound{
		SenderID:  100,
		MessageID: 9,
		Text:      "photo of the issue",
		Attachment: model.Attachment{
			Kind:   model.AttachmentPhoto,
			FileID: "file-1",
		},
	}
	if err := uc.FromCustomer(context.Background(), in); err != nil {
		t.Fatalf("FromCustomer: %v", err)
	}
	if len(bot.forwarded) != 1 || bot.forwarded[0] != 9 {
		t.Fatalf("forward missing, got %v", bot.forwarded)
	}
	if len(messages.saved) != 1 {
		t.Fatalf("transcript entry missing")
	}
	m := messages.saved[0]
	if m.FromAdmin || m.BudgetID != "b-1" || m.Attachment.Kind != model.AttachmentPhoto {
		t.Fatalf("unexpected transcript entry: %+v", m)
	}
	if m.ID == "" {
		t.Fatal("message id not assigned")
	}
}
