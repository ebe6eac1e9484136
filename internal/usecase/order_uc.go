package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
	"github.com/misterioso013/meu-orcamento-bot/internal/infra/metrics"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

type OrderUseCase interface {
	// Purchase opens a PENDING order and returns the star price to charge.
	Purchase(ctx context.Context, senderID int64, productID string) (*model.Order, *model.Product, error)
	// MarkPaid settles the order after the platform's payment notice and
	// delivers the product's download link.
	MarkPaid(ctx context.Context, orderID string) error
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
}

type orderUC struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	tm       repository.TransactionManager
	pricing  PricingUseCase
	bot      adapter.TelegramBotAdapter
	auth     adapter.Authorizer
	log      *zerolog.Logger
}

func NewOrderUseCase(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	tm repository.TransactionManager,
	pricing PricingUseCase,
	bot adapter.TelegramBotAdapter,
	auth adapter.Authorizer,
	logger *zerolog.Logger,
) *orderUC {
	return &orderUC{orders: orders, products: products, tm: tm, pricing: pricing, bot: bot, auth: auth, log: logger}
}

func (uc *orderUC) Purchase(ctx context.Context, senderID int64, productID string) (*model.Order, *model.Product, error) {
	p, err := uc.products.FindByID(ctx, repository.NoTX, productID)
	if err != nil {
		return nil, nil, err
	}
	stars, err := uc.pricing.Stars(ctx, p.Price)
	if err != nil {
		return nil, nil, err
	}

	o := model.NewOrder(uuid.NewString(), fmt.Sprint(senderID), productID, stars)
	if err := uc.orders.Save(ctx, repository.NoTX, o); err != nil {
		return nil, nil, err
	}
	metrics.IncOrder("created")
	return o, p, nil
}

func (uc *orderUC) MarkPaid(ctx context.Context, orderID string) error {
	var o *model.Order
	var p *model.Product
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		o, err = uc.orders.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderPending {
			return fmt.Errorf("order %s is %s: %w", orderID, o.Status, domain.ErrInvalidTransition)
		}
		p, err = uc.products.FindByID(ctx, tx, o.ProductID)
		if err != nil {
			return err
		}
		return uc.orders.UpdateStatus(ctx, tx, orderID, model.OrderPaid)
	})
	if err != nil {
		return err
	}

	metrics.IncOrder("paid")
	if cid, err := chatID(o.UserID); err == nil {
		text := fmt.Sprintf("🎉 Payment confirmed!\n\n%s\n\n⬇️ Download: %s", p.Name, p.DownloadLink)
		if err := uc.bot.SendMessage(ctx, cid, text); err != nil {
			uc.log.Warn().Err(err).Str("order_id", orderID).Msg("download delivery failed")
		}
	}
	uc.notifyAdminSale(ctx, o, p)
	return nil
}

func (uc *orderUC) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	return uc.orders.FindAllByUser(ctx, repository.NoTX, userID)
}

func (uc *orderUC) notifyAdminSale(ctx context.Context, o *model.Order, p *model.Product) {
	text := fmt.Sprintf("💸 Sale!\n\nProduct: %s\nStars: %d\nCustomer: %s", p.Name, o.Stars, o.UserID)
	if err := uc.bot.SendMessage(ctx, uc.auth.AdminID(), text); err != nil {
		uc.log.Warn().Err(err).Str("order_id", o.ID).Msg("sale notice failed")
	}
}
