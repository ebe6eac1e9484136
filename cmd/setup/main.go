package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/misterioso013/meu-orcamento-bot/internal/config"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
	pg "github.com/misterioso013/meu-orcamento-bot/internal/infra/db/postgres"
)

// Creates the schema and seeds a starter catalog. Safe to run repeatedly.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	log.Println("[1/2] Creating schema...")
	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("create schema: %v", err)
	}

	log.Println("[2/2] Seeding products...")
	seedProducts(ctx, pool)

	log.Println("✅ Setup complete.")
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    username   TEXT NOT NULL DEFAULT '',
    is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
    is_active  BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS budgets (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    category             TEXT NOT NULL,
    objective            TEXT NOT NULL DEFAULT '',
    audience             TEXT NOT NULL DEFAULT '',
    features             TEXT NOT NULL DEFAULT '',
    deadline             TEXT NOT NULL DEFAULT '',
    budget               TEXT NOT NULL DEFAULT '',
    design               TEXT NOT NULL DEFAULT '',
    maintenance          BOOLEAN NOT NULL DEFAULT FALSE,
    technologies         TEXT NOT NULL DEFAULT '',
    hosting              BOOLEAN NOT NULL DEFAULT FALSE,
    integrations         TEXT NOT NULL DEFAULT '',
    specific_answers     JSONB NOT NULL DEFAULT '{}',
    status               TEXT NOT NULL DEFAULT 'PENDING',
    chat_active          BOOLEAN NOT NULL DEFAULT FALSE,
    proposal_resolved_at TIMESTAMPTZ,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_budgets_user ON budgets (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_budgets_status ON budgets (status);
CREATE UNIQUE INDEX IF NOT EXISTS uq_budgets_active_chat ON budgets (user_id) WHERE chat_active;

CREATE TABLE IF NOT EXISTS messages (
    id         TEXT PRIMARY KEY,
    content    TEXT NOT NULL DEFAULT '',
    file_kind  TEXT NOT NULL DEFAULT '',
    file_id    TEXT NOT NULL DEFAULT '',
    file_name  TEXT NOT NULL DEFAULT '',
    from_admin BOOLEAN NOT NULL DEFAULT FALSE,
    user_id    TEXT NOT NULL,
    budget_id  TEXT NOT NULL REFERENCES budgets (id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_messages_budget ON messages (budget_id, id);

CREATE TABLE IF NOT EXISTS products (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    price         TEXT NOT NULL,
    image         TEXT NOT NULL DEFAULT '',
    category      TEXT NOT NULL,
    download_link TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products (category, created_at DESC);

CREATE TABLE IF NOT EXISTS orders (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    product_id TEXT NOT NULL REFERENCES products (id),
    status     TEXT NOT NULL DEFAULT 'PENDING',
    stars      BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id, created_at DESC);
`

func seedProducts(ctx context.Context, pool *pgxpool.Pool) {
	repo := pg.NewPostgresProductRepo(pool)

	existing, err := repo.FindAll(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list products: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d products already present. No changes.\n", len(existing))
		return
	}

	seed := []struct {
		Name, Description, Price string
		Category                 model.Category
		Link                     string
	}{
		{"Landing Page Template", "Responsive one-page site, ready to customize.", "149.90", model.CategorySite, "https://example.com/dl/landing"},
		{"Telegram Store Bot", "Sell digital goods straight from Telegram.", "299.90", model.CategoryBot, "https://example.com/dl/store-bot"},
		{"Price Watcher Script", "Track product prices and get alerts.", "79.90", model.CategoryScript, "https://example.com/dl/watcher"},
	}

	for _, s := range seed {
		p := model.NewProduct(uuid.NewString(), s.Name, s.Description, s.Price, s.Category)
		p.DownloadLink = s.Link
		if err := repo.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("seed product %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%s, R$ %s)\n", p.Name, p.ID, p.Price)
	}
}
