package usecase

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
	"github.com/misterioso013/meu-orcamento-bot/internal/infra/metrics"
)

// Inbound is one message event as seen by the relay, already reduced by the
// Telegram adapter: attachment classified, reply provenance resolved.
type Inbound struct {
	SenderID   int64
	MessageID  int
	Text       string
	Attachment model.Attachment

	// RepliedOrigin is the numeric id of the original sender of the message
	// being replied to, 0 when the message is not a reply or the origin is
	// hidden by privacy settings.
	RepliedOrigin int64
}

// Compile-time check
var _ RelayUseCase = (*relayUC)(nil)

// RelayUseCase bridges the admin and customers through the bot. Every relayed
// message is persisted before the forward attempt; the log records attempted
// sends and is never rolled back on delivery failure.
type RelayUseCase interface {
	// FromAdmin copies an admin reply to the customer who originally sent the
	// replied-to message. Fails with ErrRecipientUnresolved when the reply
	// provenance cannot name a customer.
	FromAdmin(ctx context.Context, in Inbound) error
	// FromCustomer forwards a customer message to the admin, provided the
	// customer has an active chat. Fails with ErrNoActiveChat otherwise.
	FromCustomer(ctx context.Context, in Inbound) error
}

type relayUC struct {
	budgets  repository.BudgetRepository
	messages repository.MessageRepository
	bot      adapter.TelegramBotAdapter
	auth     adapter.Authorizer
	log      *zerolog.Logger
}

func NewRelayUseCase(
	budgets repository.BudgetRepository,
	messages repository.MessageRepository,
	bot adapter.TelegramBotAdapter,
	auth adapter.Authorizer,
	logger *zerolog.Logger,
) *relayUC {
	return &relayUC{budgets: budgets, messages: messages, bot: bot, auth: auth, log: logger}
}

func (uc *relayUC) FromAdmin(ctx context.Context, in Inbound) error {
	if in.RepliedOrigin == 0 {
		return domain.ErrRecipientUnresolved
	}
	targetID := fmt.Sprint(in.RepliedOrigin)

	// The admin may answer outside an active chat; the reply lands on the
	// customer's most recent budget.
	b, err := uc.budgets.FindActiveChatByUser(ctx, repository.NoTX, targetID)
	if err != nil {
		b, err = uc.budgets.FindLatestByUser(ctx, repository.NoTX, targetID)
		if err != nil {
			return fmt.Errorf("admin reply to %s: %w", targetID, domain.ErrRecipientUnresolved)
		}
	}

	m := &model.Message{
		ID:         ulid.Make().String(),
		Content:    in.Text,
		Attachment: in.Attachment,
		FromAdmin:  true,
		UserID:     targetID,
		BudgetID:   b.ID,
	}
	if err := uc.messages.Save(ctx, repository.NoTX, m); err != nil {
		return err
	}

	metrics.IncRelayed("admin")
	if err := uc.bot.CopyMessage(ctx, in.RepliedOrigin, in.SenderID, in.MessageID); err != nil {
		// The log entry stays; it records the attempt.
		uc.log.Warn().Err(err).Str("budget_id", b.ID).Msg("admin relay delivery failed")
		return fmt.Errorf("deliver admin reply: %w", err)
	}
	return nil
}

func (uc *relayUC) FromCustomer(ctx context.Context, in Inbound) error {
	senderID := fmt.Sprint(in.SenderID)
	b, err := uc.budgets.FindActiveChatByUser(ctx, repository.NoTX, senderID)
	if err != nil {
		return domain.ErrNoActiveChat
	}

	m := &model.Message{
		ID:         ulid.Make().String(),
		Content:    in.Text,
		Attachment: in.Attachment,
		FromAdmin:  false,
		UserID:     senderID,
		BudgetID:   b.ID,
	}
	if err := uc.messages.Save(ctx, repository.NoTX, m); err != nil {
		return err
	}

	metrics.IncRelayed("customer")
	// Forward keeps the sender header so the admin can answer by reply.
	if err := uc.bot.ForwardMessage(ctx, uc.auth.AdminID(), in.SenderID, in.MessageID); err != nil {
		uc.log.Warn().Err(err).Str("budget_id", b.ID).Msg("customer relay delivery failed")
		return fmt.Errorf("deliver customer message: %w", err)
	}
	return nil
}
