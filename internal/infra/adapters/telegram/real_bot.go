package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/application"
	"github.com/misterioso013/meu-orcamento-bot/internal/config"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	red "github.com/misterioso013/meu-orcamento-bot/internal/infra/redis"
	"github.com/misterioso013/meu-orcamento-bot/internal/usecase"
)

// RealTelegramBotAdapter polls updates with tgbotapi and routes them to the
// facade. It also implements the outbound adapter port.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	auth        adapter.Authorizer
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// NewRealTelegramBotAdapter builds the adapter without its facade; call
// SetFacade once the usecases (which themselves need this adapter for
// notifications) are wired.
func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	auth adapter.Authorizer,
	rateLimiter *red.RateLimiter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		auth:          auth,
		rateLimiter:   rateLimiter,
		log:           logger,
		updateWorkers: workers,
	}, nil
}

// SetFacade breaks the construction cycle: the facade needs the bot adapter
// for notifications, the adapter needs the facade for routing.
func (r *RealTelegramBotAdapter) SetFacade(f *application.BotFacade) { r.facade = f }

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.facade == nil {
		return errors.New("bot facade not set")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Warn().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// ----- outbound port -----

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kb := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				kb = append(kb, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				kb = append(kb, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				kb = append(kb, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, kb)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	_, err := r.bot.Send(photo)
	return err
}

func (r *RealTelegramBotAdapter) CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	copyMsg := tgbotapi.NewCopyMessage(toChatID, fromChatID, messageID)
	_, err := r.bot.Request(copyMsg)
	return err
}

func (r *RealTelegramBotAdapter) ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	fwd := tgbotapi.NewForward(toChatID, fromChatID, messageID)
	_, err := r.bot.Send(fwd)
	return err
}

// ----- inbound routing -----

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	senderID := msg.From.ID

	name := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	if _, err := r.facade.UserUC.Touch(ctx, senderID, name, msg.From.UserName); err != nil {
		r.log.Warn().Err(err).Int64("tg_id", senderID).Msg("user upsert failed")
	}

	command := "message"
	fields := strings.Fields(msg.Text)
	if len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		command = fields[0]
	}

	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(senderID, command), 20, time.Minute)
		if err != nil {
			r.log.Warn().Err(err).Msg("rate limiter error")
		} else if !allowed {
			return r.SendMessage(ctx, senderID, "⏳ Too many requests. Please slow down.")
		}
	}

	switch command {
	case "/start":
		text, err := r.facade.HandleStart(ctx, senderID, name, msg.From.UserName)
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendMainMenu(ctx, senderID, text)

	case "/budget":
		reply, err := r.facade.IntakeUC.Begin(ctx, senderID)
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendReply(ctx, senderID, reply)

	case "/budgets":
		return r.sendBudgetList(ctx, senderID)

	case "/store", "/products":
		return r.sendStoreMenu(ctx, senderID)

	case "/ai":
		if err := r.facade.AnalysisUC.StartQA(ctx, senderID); err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.SendMessage(ctx, senderID, "💬 Ask me anything about our products and services. Use /cancel to leave.")

	case "/cancel":
		// All conversational flows share one state slot, one clear fits all.
		if err := r.facade.IntakeUC.Cancel(ctx, senderID); err != nil {
			r.log.Warn().Err(err).Msg("cancel: state clear failed")
		}
		return r.SendMessage(ctx, senderID, "✖️ Cancelled.")

	case "/broadcast":
		reply, err := r.facade.BroadcastUC.Begin(ctx, senderID)
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendReply(ctx, senderID, reply)

	case "/send":
		reply, err := r.facade.BroadcastUC.Send(ctx, senderID)
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendReply(ctx, senderID, reply)

	case "/done":
		return r.handleDone(ctx, msg, fields)

	case "/info":
		return r.handleInfo(ctx, msg)

	case "/paid":
		if !r.auth.IsAdmin(senderID) {
			return r.SendMessage(ctx, senderID, application.UserFacingError(domain.ErrNotAuthorized))
		}
		if len(fields) < 2 {
			return r.SendMessage(ctx, senderID, "Usage: /paid <order_id>")
		}
		if err := r.facade.OrderUC.MarkPaid(ctx, fields[1]); err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.SendMessage(ctx, senderID, "✅ Order settled and product delivered.")

	case "/addproduct":
		reply, err := r.facade.ProductUC.BeginAdd(ctx, senderID)
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendReply(ctx, senderID, reply)

	case "/help":
		return r.SendMessage(ctx, senderID, helpText(r.auth.IsAdmin(senderID)))

	default:
		return r.routeMessage(ctx, msg, senderID)
	}
}

// routeMessage handles non-command messages: active conversations first,
// then the support-chat relay.
func (r *RealTelegramBotAdapter) routeMessage(ctx context.Context, msg *tgbotapi.Message, senderID int64) error {
	if r.auth.IsAdmin(senderID) {
		switch {
		case r.facade.ProposalUC.Active(ctx, senderID):
			reply, err := r.facade.ProposalUC.HandleAnswer(ctx, senderID, msg.Text)
			if err != nil {
				return r.SendMessage(ctx, senderID, application.UserFacingError(err))
			}
			return r.sendReply(ctx, senderID, reply)

		case r.facade.BroadcastUC.Active(ctx, senderID):
			reply, err := r.facade.BroadcastUC.Collect(ctx, senderID, msg.MessageID)
			if err != nil {
				return r.SendMessage(ctx, senderID, application.UserFacingError(err))
			}
			return r.sendReply(ctx, senderID, reply)

		case r.facade.ProductUC.Active(ctx, senderID):
			if fileID := largestPhotoID(msg); fileID != "" {
				reply, err := r.facade.ProductUC.HandlePhoto(ctx, senderID, fileID)
				if err != nil {
					return r.SendMessage(ctx, senderID, application.UserFacingError(err))
				}
				return r.sendReply(ctx, senderID, reply)
			}
			reply, err := r.facade.ProductUC.HandleAnswer(ctx, senderID, msg.Text)
			if err != nil {
				return r.SendMessage(ctx, senderID, application.UserFacingError(err))
			}
			return r.sendReply(ctx, senderID, reply)
		}

		if msg.ReplyToMessage != nil {
			if err := r.facade.RelayUC.FromAdmin(ctx, inbound(msg)); err != nil {
				return r.SendMessage(ctx, senderID, application.UserFacingError(err))
			}
			return nil
		}
		return nil
	}

	if r.facade.IntakeUC.Active(ctx, senderID) {
		reply, err := r.facade.IntakeUC.HandleAnswer(ctx, senderID, msg.Text)
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendReply(ctx, senderID, reply)
	}

	if r.facade.AnalysisUC.QAActive(ctx, senderID) && msg.Text != "" {
		answer, err := r.facade.AnalysisUC.ProductQA(ctx, msg.Text)
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.SendMessage(ctx, senderID, answer)
	}

	// Any relay failure is reported to the sender, delivery errors included;
	// the transcript entry (when one was written) stays.
	if err := r.facade.RelayUC.FromCustomer(ctx, inbound(msg)); err != nil {
		return r.SendMessage(ctx, senderID, application.UserFacingError(err))
	}
	return nil
}

func (r *RealTelegramBotAdapter) handleDone(ctx context.Context, msg *tgbotapi.Message, fields []string) error {
	senderID := msg.From.ID
	if !r.auth.IsAdmin(senderID) {
		return r.SendMessage(ctx, senderID, application.UserFacingError(domain.ErrNotAuthorized))
	}

	budgetID := ""
	if len(fields) >= 2 {
		budgetID = fields[1]
	} else if origin := repliedOrigin(msg); origin != 0 {
		b, err := r.facade.BudgetUC.ActiveChat(ctx, fmt.Sprint(origin))
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		budgetID = b.ID
	} else {
		return r.SendMessage(ctx, senderID, "Usage: /done <budget_id>, or reply to a customer's message with /done.")
	}

	if _, err := r.facade.BudgetUC.EndChat(ctx, senderID, budgetID); err != nil {
		return r.SendMessage(ctx, senderID, application.UserFacingError(err))
	}
	return r.SendMessage(ctx, senderID, "💬 Chat closed.")
}

func (r *RealTelegramBotAdapter) handleInfo(ctx context.Context, msg *tgbotapi.Message) error {
	senderID := msg.From.ID
	if !r.auth.IsAdmin(senderID) {
		return r.SendMessage(ctx, senderID, application.UserFacingError(domain.ErrNotAuthorized))
	}
	origin := repliedOrigin(msg)
	if origin == 0 {
		return r.SendMessage(ctx, senderID, "Reply to a forwarded customer message with /info.")
	}
	text, err := r.facade.HandleInfo(ctx, senderID, fmt.Sprint(origin))
	if err != nil {
		return r.SendMessage(ctx, senderID, application.UserFacingError(err))
	}
	return r.SendMessage(ctx, senderID, text)
}

func (r *RealTelegramBotAdapter) sendReply(ctx context.Context, chatID int64, reply usecase.Reply) error {
	if reply.Text == "" {
		return nil
	}
	if len(reply.Rows) > 0 {
		return r.SendButtons(ctx, chatID, reply.Text, reply.Rows)
	}
	return r.SendMessage(ctx, chatID, reply.Text)
}

// inbound reduces a raw Telegram message into the relay's view of it. The
// attachment kind is decided here, once.
func inbound(msg *tgbotapi.Message) usecase.Inbound {
	in := usecase.Inbound{
		SenderID:      msg.From.ID,
		MessageID:     msg.MessageID,
		Text:          msg.Text,
		RepliedOrigin: repliedOrigin(msg),
	}
	if in.Text == "" {
		in.Text = msg.Caption
	}
	switch {
	case len(msg.Photo) > 0:
		in.Attachment = model.Attachment{Kind: model.AttachmentPhoto, FileID: largestPhotoID(msg)}
	case msg.Video != nil:
		in.Attachment = model.Attachment{Kind: model.AttachmentVideo, FileID: msg.Video.FileID}
	case msg.Document != nil:
		in.Attachment = model.Attachment{Kind: model.AttachmentDocument, FileID: msg.Document.FileID, FileName: msg.Document.FileName}
	case msg.Audio != nil:
		in.Attachment = model.Attachment{Kind: model.AttachmentAudio, FileID: msg.Audio.FileID}
	case msg.Voice != nil:
		in.Attachment = model.Attachment{Kind: model.AttachmentAudio, FileID: msg.Voice.FileID}
	}
	return in
}

// repliedOrigin resolves the original sender of the replied-to message.
// Returns 0 when there is no reply or privacy settings hide the origin.
func repliedOrigin(msg *tgbotapi.Message) int64 {
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.ForwardFrom == nil {
		return 0
	}
	return msg.ReplyToMessage.ForwardFrom.ID
}

func largestPhotoID(msg *tgbotapi.Message) string {
	if len(msg.Photo) == 0 {
		return ""
	}
	return msg.Photo[len(msg.Photo)-1].FileID
}

func helpText(isAdmin bool) string {
	base := "Commands:\n" +
		"/start - main menu\n" +
		"/budget - request a project budget\n" +
		"/budgets - list your budgets\n" +
		"/store - browse products\n" +
		"/ai - ask our assistant\n" +
		"/cancel - abort the current flow"
	if !isAdmin {
		return base
	}
	return base + "\n\nAdmin:\n" +
		"/broadcast - compose a broadcast, then /send\n" +
		"/done - close a chat (reply or /done <budget_id>)\n" +
		"/info - customer info (reply to a forwarded message)\n" +
		"/paid <order_id> - settle an order\n" +
		"/addproduct - add a store product"
}
