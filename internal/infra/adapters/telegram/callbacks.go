package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/misterioso013/meu-orcamento-bot/internal/application"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/action"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	red "github.com/misterioso013/meu-orcamento-bot/internal/infra/redis"
)

// handleQuery routes inline button presses. Parameterless buttons are matched
// verbatim or by prefix; everything else goes through the action codec.
func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.From == nil {
		return nil
	}
	senderID := query.From.ID
	data := query.Data

	// Telegram keeps the button spinner until the callback is answered.
	defer func() {
		if _, err := r.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			r.log.Debug().Err(err).Msg("callback answer failed")
		}
	}()

	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(senderID, "callback"), 30, time.Minute)
		if err != nil {
			r.log.Warn().Err(err).Msg("rate limiter error")
		} else if !allowed {
			return nil
		}
	}

	switch data {
	case "store":
		return r.sendStoreMenu(ctx, senderID)
	case "create_budget":
		reply, err := r.facade.IntakeUC.Begin(ctx, senderID)
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendReply(ctx, senderID, reply)
	case "view_budgets":
		return r.sendBudgetList(ctx, senderID)
	case "chat_ai":
		if err := r.facade.AnalysisUC.StartQA(ctx, senderID); err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.SendMessage(ctx, senderID, "💬 Ask me anything about our products and services. Use /cancel to leave.")
	case "back_to_menu":
		return r.sendMainMenu(ctx, senderID, "What would you like to do?")
	case "add_product":
		reply, err := r.facade.ProductUC.BeginAdd(ctx, senderID)
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendReply(ctx, senderID, reply)
	case "intake_maint_yes", "intake_maint_no":
		reply, err := r.facade.IntakeUC.HandleMaintenance(ctx, senderID, data == "intake_maint_yes")
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendReply(ctx, senderID, reply)
	}

	switch {
	case strings.HasPrefix(data, "intake_cat_"):
		reply, err := r.facade.IntakeUC.HandleCategory(ctx, senderID, data)
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendReply(ctx, senderID, reply)
	case strings.HasPrefix(data, "product_cat_"):
		reply, err := r.facade.ProductUC.HandleCategory(ctx, senderID, data)
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendReply(ctx, senderID, reply)
	}

	kind, args, err := action.Parse(data)
	if err != nil {
		r.log.Warn().Str("data", data).Msg("unroutable callback payload")
		return nil
	}
	return r.dispatchAction(ctx, senderID, kind, args)
}

func (r *RealTelegramBotAdapter) dispatchAction(ctx context.Context, senderID int64, kind action.Kind, args []string) error {
	switch kind {
	case action.KindStatus:
		status, ok := model.ParseBudgetStatus(args[1])
		if !ok {
			return r.SendMessage(ctx, senderID, application.UserFacingError(domain.ErrInvalidArgument))
		}
		b, err := r.facade.BudgetUC.SetStatus(ctx, senderID, args[0], status)
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.SendMessage(ctx, senderID,
			fmt.Sprintf("%s Budget %s is now %s.", application.StatusEmoji(b.Status), b.ID, b.Status))

	case action.KindAcceptProposal:
		if _, err := r.facade.BudgetUC.AcceptProposal(ctx, senderID, args[0], args[1]); err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.SendMessage(ctx, senderID,
			"🎉 Proposal accepted! We will contact you shortly to get started.")

	case action.KindRejectProposal:
		if _, err := r.facade.BudgetUC.RejectProposal(ctx, senderID, args[0]); err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.SendMessage(ctx, senderID,
			"Ok, proposal declined. Your request went back to analysis and we may send a new offer.")

	case action.KindStartChat:
		if _, err := r.facade.BudgetUC.StartChat(ctx, senderID, args[0]); err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.SendMessage(ctx, senderID,
			"💬 Chat opened! Send your messages here and our team will answer. Close the chat from the budget card when you are done.")

	case action.KindEndChat:
		if _, err := r.facade.BudgetUC.EndChat(ctx, senderID, args[0]); err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.SendMessage(ctx, senderID, "💬 Chat closed.")

	case action.KindViewBudget:
		return r.sendBudgetDetails(ctx, senderID, args[0])

	case action.KindPropose:
		reply, err := r.facade.ProposalUC.Begin(ctx, senderID, args[0])
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendReply(ctx, senderID, reply)

	case action.KindAnalyzeBudget:
		if !r.auth.IsAdmin(senderID) {
			return r.SendMessage(ctx, senderID, application.UserFacingError(domain.ErrNotAuthorized))
		}
		text, err := r.facade.AnalysisUC.AnalyzeBudget(ctx, args[0])
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.SendMessage(ctx, senderID, "🤖 Analysis:\n\n"+text)

	case action.KindStoreCategory:
		return r.sendProductList(ctx, senderID, args[0])

	case action.KindViewProduct:
		return r.sendProductCard(ctx, senderID, args[0])

	case action.KindBuyProduct:
		order, product, err := r.facade.OrderUC.Purchase(ctx, senderID, args[0])
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.SendMessage(ctx, senderID, fmt.Sprintf(
			"🧾 Order created!\n\n%s\n⭐️ %d stars\nOrder id: %s\n\nYou will receive the download link as soon as the payment is confirmed.",
			product.Name, order.Stars, order.ID))

	case action.KindEditProduct:
		reply, err := r.facade.ProductUC.BeginEdit(ctx, senderID, args[0])
		if err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.sendReply(ctx, senderID, reply)

	case action.KindDeleteProduct:
		rows := [][]adapter.InlineButton{{
			{Text: "🗑️ Yes, delete", Data: action.Encode(action.KindConfirmDelete, args[0])},
			{Text: "↩️ Keep it", Data: action.Encode(action.KindViewProduct, args[0])},
		}}
		return r.SendButtons(ctx, senderID, "Delete this product? This cannot be undone.", rows)

	case action.KindConfirmDelete:
		if err := r.facade.ProductUC.Delete(ctx, senderID, args[0]); err != nil {
			return r.SendMessage(ctx, senderID, application.UserFacingError(err))
		}
		return r.SendMessage(ctx, senderID, "🗑️ Product deleted.")
	}

	r.log.Warn().Str("kind", string(kind)).Msg("unhandled action kind")
	return nil
}

// ----- rendered menus -----

func (r *RealTelegramBotAdapter) sendMainMenu(ctx context.Context, chatID int64, text string) error {
	rows := [][]adapter.InlineButton{
		{{Text: "💰 Request a budget", Data: "create_budget"}, {Text: "📋 My budgets", Data: "view_budgets"}},
		{{Text: "🛍️ Store", Data: "store"}, {Text: "🤖 Ask our AI", Data: "chat_ai"}},
	}
	return r.SendButtons(ctx, chatID, text, rows)
}

func (r *RealTelegramBotAdapter) sendBudgetList(ctx context.Context, chatID int64) error {
	budgets, err := r.facade.BudgetUC.ListByUser(ctx, fmt.Sprint(chatID))
	if err != nil {
		return r.SendMessage(ctx, chatID, application.UserFacingError(err))
	}
	if len(budgets) == 0 {
		return r.SendMessage(ctx, chatID, "You have no budget requests yet. Use /budget to create one.")
	}
	rows := make([][]adapter.InlineButton, 0, len(budgets)+1)
	for _, b := range budgets {
		label := fmt.Sprintf("%s %s - %s (%s)",
			application.StatusEmoji(b.Status), b.Category, b.Status, b.CreatedAt.Format("02/01/2006"))
		rows = append(rows, []adapter.InlineButton{
			{Text: label, Data: action.Encode(action.KindViewBudget, b.ID)},
		})
	}
	rows = append(rows, []adapter.InlineButton{{Text: "↩️ Menu", Data: "back_to_menu"}})
	return r.SendButtons(ctx, chatID, "💰 Your budgets:", rows)
}

// sendBudgetDetails renders the card plus role-dependent buttons: the admin
// gets the workflow controls, the owner gets the chat toggle.
func (r *RealTelegramBotAdapter) sendBudgetDetails(ctx context.Context, senderID int64, budgetID string) error {
	b, err := r.facade.BudgetUC.Get(ctx, budgetID)
	if err != nil {
		return r.SendMessage(ctx, senderID, application.UserFacingError(err))
	}
	isAdmin := r.auth.IsAdmin(senderID)
	if !isAdmin && b.UserID != fmt.Sprint(senderID) {
		return r.SendMessage(ctx, senderID, application.UserFacingError(domain.ErrNotAuthorized))
	}

	var rows [][]adapter.InlineButton
	if isAdmin {
		rows = append(rows,
			[]adapter.InlineButton{
				{Text: "✅ Approve", Data: action.Encode(action.KindStatus, b.ID, string(model.BudgetApproved))},
				{Text: "❌ Reject", Data: action.Encode(action.KindStatus, b.ID, string(model.BudgetRejected))},
			},
			[]adapter.InlineButton{
				{Text: "🔍 Analyze", Data: action.Encode(action.KindStatus, b.ID, string(model.BudgetAnalyzing))},
				{Text: "🎉 Complete", Data: action.Encode(action.KindStatus, b.ID, string(model.BudgetCompleted))},
			},
			[]adapter.InlineButton{
				{Text: "💼 Send proposal", Data: action.Encode(action.KindPropose, b.ID)},
				{Text: "🤖 AI analysis", Data: action.Encode(action.KindAnalyzeBudget, b.ID)},
			},
		)
	} else if b.ChatActive {
		rows = append(rows, []adapter.InlineButton{
			{Text: "💬 Close chat", Data: action.Encode(action.KindEndChat, b.ID)},
		})
	} else {
		rows = append(rows, []adapter.InlineButton{
			{Text: "💬 Talk to the team", Data: action.Encode(action.KindStartChat, b.ID)},
		})
	}
	return r.SendButtons(ctx, senderID, application.FormatBudgetDetails(b), rows)
}

func (r *RealTelegramBotAdapter) sendStoreMenu(ctx context.Context, chatID int64) error {
	rows := [][]adapter.InlineButton{
		{
			{Text: "🌐 Sites", Data: action.Encode(action.KindStoreCategory, string(model.CategorySite))},
			{Text: "🤖 Bots", Data: action.Encode(action.KindStoreCategory, string(model.CategoryBot))},
		},
		{
			{Text: "📱 Apps", Data: action.Encode(action.KindStoreCategory, string(model.CategoryApp))},
			{Text: "📜 Scripts", Data: action.Encode(action.KindStoreCategory, string(model.CategoryScript))},
		},
	}
	if r.auth.IsAdmin(chatID) {
		rows = append(rows, []adapter.InlineButton{{Text: "➕ Add product", Data: "add_product"}})
	}
	rows = append(rows, []adapter.InlineButton{{Text: "↩️ Menu", Data: "back_to_menu"}})
	return r.SendButtons(ctx, chatID, "🛍️ Our store. Pick a category:", rows)
}

func (r *RealTelegramBotAdapter) sendProductList(ctx context.Context, chatID int64, rawCategory string) error {
	cat, ok := model.ParseCategory(rawCategory)
	if !ok {
		return r.SendMessage(ctx, chatID, application.UserFacingError(domain.ErrInvalidArgument))
	}
	products, err := r.facade.ProductUC.ListByCategory(ctx, cat)
	if err != nil {
		return r.SendMessage(ctx, chatID, application.UserFacingError(err))
	}
	if len(products) == 0 {
		return r.SendMessage(ctx, chatID, "📭 Nothing in this category yet. Check back soon!")
	}
	rows := make([][]adapter.InlineButton, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, []adapter.InlineButton{
			{Text: fmt.Sprintf("%s - R$ %s", p.Name, p.Price), Data: action.Encode(action.KindViewProduct, p.ID)},
		})
	}
	rows = append(rows, []adapter.InlineButton{{Text: "↩️ Store", Data: "store"}})
	return r.SendButtons(ctx, chatID, fmt.Sprintf("🛍️ %s products:", cat), rows)
}

func (r *RealTelegramBotAdapter) sendProductCard(ctx context.Context, chatID int64, productID string) error {
	p, err := r.facade.ProductUC.Get(ctx, productID)
	if err != nil {
		return r.SendMessage(ctx, chatID, application.UserFacingError(err))
	}
	text, _, err := r.facade.FormatProductCard(ctx, p)
	if err != nil {
		return r.SendMessage(ctx, chatID, application.UserFacingError(err))
	}

	rows := [][]adapter.InlineButton{
		{{Text: "⭐️ Buy", Data: action.Encode(action.KindBuyProduct, p.ID)}},
	}
	if r.auth.IsAdmin(chatID) {
		rows = append(rows, []adapter.InlineButton{
			{Text: "✏️ Edit", Data: action.Encode(action.KindEditProduct, p.ID)},
			{Text: "🗑️ Delete", Data: action.Encode(action.KindDeleteProduct, p.ID)},
		})
	}
	rows = append(rows, []adapter.InlineButton{{Text: "↩️ Store", Data: "store"}})

	if p.Image != "" {
		if err := r.SendPhoto(ctx, chatID, p.Image, text); err != nil {
			r.log.Warn().Err(err).Str("product_id", p.ID).Msg("product photo send failed")
		} else {
			return r.SendButtons(ctx, chatID, "Options:", rows)
		}
	}
	return r.SendButtons(ctx, chatID, text, rows)
}
