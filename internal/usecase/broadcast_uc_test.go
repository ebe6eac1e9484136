package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/infra/worker"
)

func newBroadcastFixture(t *testing.T) (*broadcastUC, *memBudgetRepo, *mockBot) {
	t.Helper()
	budgets := newMemBudgetRepo()
	state := newMemStateRepo()
	bot := newMockBot()
	pool := worker.NewPool(4, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(func() {
		cancel()
		pool.Stop()
	})
	uc := NewBroadcastUseCase(budgets, state, bot, mockAuth{admin: adminID}, pool, testLogger())
	return uc, budgets, bot
}

func TestBroadcastBeginRequiresAdmin(t *testing.T) {
	uc, _, _ := newBroadcastFixture(t)
	if _, err := uc.Begin(context.Background(), customerID); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestBroadcastCollectAndSend(t *testing.T) {
	uc, budgets, bot := newBroadcastFixture(t)
	ctx := context.Background()

	for i, uid := range []string{"100", "200", "100"} {
		b := model.NewBudget("b-"+strings.Repeat("x", i+1), uid, model.CategorySite, model.IntakeAnswers{})
		_ = budgets.Save(ctx, nil, b)
	}

	if _, err := uc.Begin(ctx, adminID); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := uc.Collect(ctx, adminID, 11); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	reply, err := uc.Collect(ctx, adminID, 12)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !strings.Contains(reply.Text, "2 message(s)") {
		t.Fatalf("collect reply = %q", reply.Text)
	}

	reply, err = uc.Send(ctx, adminID)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !reply.Done {
		t.Fatal("Send should close the conversation")
	}
	if uc.Active(ctx, adminID) {
		t.Fatal("state not cleared after Send")
	}

	// Dispatch is asynchronous; wait for the final report to the admin.
	deadline := time.Now().Add(5 * time.Second)
	for {
		var report *sentMessage
		for _, m := range bot.sentTo(adminID) {
			if strings.Contains(m.Text, "Broadcast finished") {
				cp := m
				report = &cp
				break
			}
		}
		if report != nil {
			if !strings.Contains(report.Text, "Delivered: 4") {
				t.Fatalf("report = %q, want 4 deliveries (2 messages x 2 customers)", report.Text)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("broadcast report never arrived")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := len(bot.copied); got != 4 {
		t.Fatalf("copies = %d, want 4", got)
	}
}

func TestBroadcastSendWithoutItems(t *testing.T) {
	uc, _, _ := newBroadcastFixture(t)
	ctx := context.Background()

	if _, err := uc.Begin(ctx, adminID); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	reply, err := uc.Send(ctx, adminID)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Done {
		t.Fatal("empty broadcast must not dispatch")
	}
}
