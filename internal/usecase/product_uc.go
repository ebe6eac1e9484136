package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
)

// Product management conversation steps.
const (
	stepProductName        = "product_name"
	stepProductDescription = "product_description"
	stepProductPrice       = "product_price"
	stepProductCategory    = "product_category"
	stepProductLink        = "product_link"
	stepProductImage       = "product_image"
)

// Compile-time check
var _ ProductUseCase = (*productUC)(nil)

// ProductUseCase covers customer catalog browsing and the admin's add/edit
// conversation. The edit flow reuses the add steps against an existing id.
type ProductUseCase interface {
	Get(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context) ([]*model.Product, error)
	ListByCategory(ctx context.Context, category model.Category) ([]*model.Product, error)
	Delete(ctx context.Context, senderID int64, id string) error

	BeginAdd(ctx context.Context, senderID int64) (Reply, error)
	BeginEdit(ctx context.Context, senderID int64, productID string) (Reply, error)
	HandleAnswer(ctx context.Context, senderID int64, text string) (Reply, error)
	HandleCategory(ctx context.Context, senderID int64, raw string) (Reply, error)
	HandlePhoto(ctx context.Context, senderID int64, fileID string) (Reply, error)
	Cancel(ctx context.Context, senderID int64) error
	Active(ctx context.Context, senderID int64) bool
}

type productUC struct {
	products repository.ProductRepository
	state    repository.StateRepository
	auth     adapter.Authorizer
	log      *zerolog.Logger
}

func NewProductUseCase(
	products repository.ProductRepository,
	state repository.StateRepository,
	auth adapter.Authorizer,
	logger *zerolog.Logger,
) *productUC {
	return &productUC{products: products, state: state, auth: auth, log: logger}
}

func (uc *productUC) Get(ctx context.Context, id string) (*model.Product, error) {
	return uc.products.FindByID(ctx, repository.NoTX, id)
}

func (uc *productUC) List(ctx context.Context) ([]*model.Product, error) {
	return uc.products.FindAll(ctx, repository.NoTX)
}

func (uc *productUC) ListByCategory(ctx context.Context, category model.Category) ([]*model.Product, error) {
	return uc.products.FindByCategory(ctx, repository.NoTX, category)
}

func (uc *productUC) Delete(ctx context.Context, senderID int64, id string) error {
	if !uc.auth.IsAdmin(senderID) {
		return domain.ErrNotAuthorized
	}
	return uc.products.Delete(ctx, repository.NoTX, id)
}

func (uc *productUC) BeginAdd(ctx context.Context, senderID int64) (Reply, error) {
	if !uc.auth.IsAdmin(senderID) {
		return Reply{}, domain.ErrNotAuthorized
	}
	st := &repository.ConversationState{Step: stepProductName, Data: map[string]string{}}
	if err := uc.state.SetState(ctx, senderID, st); err != nil {
		return Reply{}, err
	}
	return Reply{Text: "🏷️ Product name:"}, nil
}

func (uc *productUC) BeginEdit(ctx context.Context, senderID int64, productID string) (Reply, error) {
	if !uc.auth.IsAdmin(senderID) {
		return Reply{}, domain.ErrNotAuthorized
	}
	p, err := uc.products.FindByID(ctx, repository.NoTX, productID)
	if err != nil {
		return Reply{}, err
	}
	st := &repository.ConversationState{
		Step: stepProductName,
		Data: map[string]string{"product_id": p.ID},
	}
	if err := uc.state.SetState(ctx, senderID, st); err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("✏️ Editing %q. New name (or . to keep):", p.Name)}, nil
}

func (uc *productUC) HandleAnswer(ctx context.Context, senderID int64, text string) (Reply, error) {
	st, err := uc.state.GetState(ctx, senderID)
	if err != nil {
		return Reply{}, domain.ErrNotFound
	}
	text = strings.TrimSpace(text)

	switch st.Step {
	case stepProductName:
		st.Data["name"] = text
		st.Step = stepProductDescription
		if err := uc.state.SetState(ctx, senderID, st); err != nil {
			return Reply{}, err
		}
		return Reply{Text: "📝 Description:"}, nil

	case stepProductDescription:
		st.Data["description"] = text
		st.Step = stepProductPrice
		if err := uc.state.SetState(ctx, senderID, st); err != nil {
			return Reply{}, err
		}
		return Reply{Text: "💰 Price in BRL (e.g. 149.90):"}, nil

	case stepProductPrice:
		normalized := strings.ReplaceAll(text, ",", ".")
		// "." keeps the current price, but only when editing.
		keep := normalized == "." && st.Data["product_id"] != ""
		if !keep {
			if _, err := strconv.ParseFloat(normalized, 64); err != nil {
				return Reply{Text: "💰 That doesn't look like a price. Try again (e.g. 149.90):"}, nil
			}
		}
		st.Data["price"] = normalized
		st.Step = stepProductCategory
		if err := uc.state.SetState(ctx, senderID, st); err != nil {
			return Reply{}, err
		}
		return Reply{
			Text: "🏷️ Category:",
			Rows: [][]adapter.InlineButton{
				{{Text: "🌐 Site", Data: "product_cat_SITE"}},
				{{Text: "🤖 Bot", Data: "product_cat_BOT"}},
				{{Text: "📱 App", Data: "product_cat_APP"}},
				{{Text: "📜 Script", Data: "product_cat_SCRIPT"}},
			},
		}, nil

	case stepProductLink:
		st.Data["link"] = text
		st.Step = stepProductImage
		if err := uc.state.SetState(ctx, senderID, st); err != nil {
			return Reply{}, err
		}
		return Reply{Text: "🖼️ Send a product photo, or type skip:"}, nil

	case stepProductImage:
		if strings.EqualFold(text, "skip") {
			return uc.finish(ctx, senderID, st)
		}
		return Reply{Text: "🖼️ Send a photo, or type skip:"}, nil
	}
	return Reply{}, fmt.Errorf("product step %q: %w", st.Step, domain.ErrInvalidArgument)
}

func (uc *productUC) HandleCategory(ctx context.Context, senderID int64, raw string) (Reply, error) {
	st, err := uc.state.GetState(ctx, senderID)
	if err != nil || st.Step != stepProductCategory {
		return Reply{}, domain.ErrInvalidArgument
	}
	cat, ok := model.ParseCategory(strings.TrimPrefix(raw, "product_cat_"))
	if !ok {
		return Reply{}, fmt.Errorf("product category %q: %w", raw, domain.ErrInvalidArgument)
	}
	st.Data["category"] = string(cat)
	st.Step = stepProductLink
	if err := uc.state.SetState(ctx, senderID, st); err != nil {
		return Reply{}, err
	}
	return Reply{Text: "🔗 Download link delivered after purchase:"}, nil
}

func (uc *productUC) HandlePhoto(ctx context.Context, senderID int64, fileID string) (Reply, error) {
	st, err := uc.state.GetState(ctx, senderID)
	if err != nil || st.Step != stepProductImage {
		return Reply{}, domain.ErrInvalidArgument
	}
	st.Data["image"] = fileID
	return uc.finish(ctx, senderID, st)
}

func (uc *productUC) Cancel(ctx context.Context, senderID int64) error {
	return uc.state.ClearState(ctx, senderID)
}

func (uc *productUC) Active(ctx context.Context, senderID int64) bool {
	st, err := uc.state.GetState(ctx, senderID)
	return err == nil && strings.HasPrefix(st.Step, "product_")
}

func (uc *productUC) finish(ctx context.Context, senderID int64, st *repository.ConversationState) (Reply, error) {
	cat, ok := model.ParseCategory(st.Data["category"])
	if !ok {
		return Reply{}, domain.ErrInvalidArgument
	}

	if id := st.Data["product_id"]; id != "" {
		p, err := uc.products.FindByID(ctx, repository.NoTX, id)
		if err != nil {
			return Reply{}, err
		}
		applyField(&p.Name, st.Data["name"])
		applyField(&p.Description, st.Data["description"])
		applyField(&p.Price, st.Data["price"])
		applyField(&p.DownloadLink, st.Data["link"])
		applyField(&p.Image, st.Data["image"])
		p.Category = cat
		if err := uc.products.Update(ctx, repository.NoTX, p); err != nil {
			return Reply{}, err
		}
		_ = uc.state.ClearState(ctx, senderID)
		return Reply{Text: fmt.Sprintf("✅ Product %q updated.", p.Name), Done: true}, nil
	}

	p := model.NewProduct(uuid.NewString(), st.Data["name"], st.Data["description"], st.Data["price"], cat)
	p.DownloadLink = st.Data["link"]
	p.Image = st.Data["image"]
	if err := uc.products.Save(ctx, repository.NoTX, p); err != nil {
		return Reply{}, err
	}
	_ = uc.state.ClearState(ctx, senderID)
	return Reply{Text: fmt.Sprintf("✅ Product %q added to the store.", p.Name), Done: true}, nil
}

// applyField keeps the current value when the admin answered "." during edit.
func applyField(dst *string, v string) {
	if v != "" && v != "." {
		*dst = v
	}
}
