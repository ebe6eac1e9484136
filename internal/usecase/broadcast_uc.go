package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
	"github.com/misterioso013/meu-orcamento-bot/internal/infra/metrics"
	"github.com/misterioso013/meu-orcamento-bot/internal/infra/worker"
)

const stepBroadcastCollect = "broadcast_collect"

// Compile-time check
var _ BroadcastUseCase = (*broadcastUC)(nil)

// BroadcastUseCase lets the admin compose a sequence of messages and copy
// them to every customer that owns a budget. Items keep their media because
// delivery uses copy semantics on the originals.
type BroadcastUseCase interface {
	Begin(ctx context.Context, senderID int64) (Reply, error)
	// Collect records one composed message (by id in the admin's chat).
	Collect(ctx context.Context, senderID int64, messageID int) (Reply, error)
	// Send dispatches asynchronously and reports to the admin when done.
	Send(ctx context.Context, senderID int64) (Reply, error)
	Cancel(ctx context.Context, senderID int64) error
	Active(ctx context.Context, senderID int64) bool
}

type broadcastUC struct {
	budgets repository.BudgetRepository
	state   repository.StateRepository
	bot     adapter.TelegramBotAdapter
	auth    adapter.Authorizer
	pool    *worker.Pool
	log     *zerolog.Logger
}

func NewBroadcastUseCase(
	budgets repository.BudgetRepository,
	state repository.StateRepository,
	bot adapter.TelegramBotAdapter,
	auth adapter.Authorizer,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *broadcastUC {
	return &broadcastUC{budgets: budgets, state: state, bot: bot, auth: auth, pool: pool, log: logger}
}

func (uc *broadcastUC) Begin(ctx context.Context, senderID int64) (Reply, error) {
	if !uc.auth.IsAdmin(senderID) {
		return Reply{}, domain.ErrNotAuthorized
	}
	st := &repository.ConversationState{Step: stepBroadcastCollect, Data: map[string]string{}}
	if err := uc.state.SetState(ctx, senderID, st); err != nil {
		return Reply{}, err
	}
	return Reply{Text: "📢 Send me the messages to broadcast (text, photos, anything).\nUse /send to deliver them or /cancel to abort."}, nil
}

func (uc *broadcastUC) Collect(ctx context.Context, senderID int64, messageID int) (Reply, error) {
	st, err := uc.state.GetState(ctx, senderID)
	if err != nil || st.Step != stepBroadcastCollect {
		return Reply{}, domain.ErrNotFound
	}
	items := append(parseItems(st.Data["items"]), messageID)
	st.Data["items"] = joinItems(items)
	if err := uc.state.SetState(ctx, senderID, st); err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("✔️ Added. %d message(s) queued. /send to deliver, /cancel to abort.", len(items))}, nil
}

func (uc *broadcastUC) Send(ctx context.Context, senderID int64) (Reply, error) {
	st, err := uc.state.GetState(ctx, senderID)
	if err != nil || st.Step != stepBroadcastCollect {
		return Reply{}, domain.ErrNotFound
	}
	items := parseItems(st.Data["items"])
	if len(items) == 0 {
		return Reply{Text: "Nothing to send yet. Compose at least one message first."}, nil
	}

	userIDs, err := uc.budgets.DistinctUserIDs(ctx, repository.NoTX)
	if err != nil {
		return Reply{}, err
	}
	if err := uc.state.ClearState(ctx, senderID); err != nil {
		uc.log.Warn().Err(err).Msg("broadcast: state clear failed")
	}

	go uc.dispatch(senderID, userIDs, items)
	return Reply{
		Text: fmt.Sprintf("📤 Broadcasting %d message(s) to %d customer(s). I will report when done.", len(items), len(userIDs)),
		Done: true,
	}, nil
}

func (uc *broadcastUC) Cancel(ctx context.Context, senderID int64) error {
	return uc.state.ClearState(ctx, senderID)
}

func (uc *broadcastUC) Active(ctx context.Context, senderID int64) bool {
	st, err := uc.state.GetState(ctx, senderID)
	return err == nil && st.Step == stepBroadcastCollect
}

// dispatch fans deliveries out to the worker pool, throttled under
// Telegram's global send limit (approx. 30 msg/s).
func (uc *broadcastUC) dispatch(adminChat int64, userIDs []string, items []int) {
	throttle := time.NewTicker(time.Second / 25)
	defer throttle.Stop()

	var delivered, failed int64
	var wg sync.WaitGroup

	for _, uid := range userIDs {
		cid, err := chatID(uid)
		if err != nil {
			atomic.AddInt64(&failed, int64(len(items)))
			continue
		}
		for _, msgID := range items {
			<-throttle.C
			wg.Add(1)
			cid, msgID := cid, msgID
			task := func(ctx context.Context) error {
				defer wg.Done()
				if err := uc.bot.CopyMessage(ctx, cid, adminChat, msgID); err != nil {
					// Commonly the user blocked the bot; count and move on.
					atomic.AddInt64(&failed, 1)
					uc.log.Warn().Err(err).Int64("chat_id", cid).Msg("broadcast delivery failed")
					return nil
				}
				atomic.AddInt64(&delivered, 1)
				return nil
			}
			if err := uc.pool.Submit(task); err != nil {
				wg.Done()
				atomic.AddInt64(&failed, 1)
				uc.log.Warn().Err(err).Int64("chat_id", cid).Msg("broadcast submit failed")
			}
		}
	}
	wg.Wait()

	metrics.AddBroadcastDelivered(atomic.LoadInt64(&delivered))
	report := fmt.Sprintf("📢 Broadcast finished.\n\nDelivered: %d\nFailed: %d", delivered, failed)
	if err := uc.bot.SendMessage(context.Background(), adminChat, report); err != nil {
		uc.log.Warn().Err(err).Msg("broadcast report send failed")
	}
}

func parseItems(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func joinItems(items []int) string {
	parts := make([]string, len(items))
	for i, n := range items {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
