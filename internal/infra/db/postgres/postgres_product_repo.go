package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `id, name, description, price, image, category, download_link, created_at, updated_at`

func (r *ProductRepo) Save(ctx context.Context, qx any, p *model.Product) error {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO products (id, name, description, price, image, category, download_link, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW());`
	_, err = ex.Exec(ctx, q, p.ID, p.Name, p.Description, p.Price, p.Image, string(p.Category), p.DownloadLink)
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, qx any, id string) (*model.Product, error) {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1;`
	return scanProduct(ex.QueryRow(ctx, q, id))
}

func (r *ProductRepo) FindAll(ctx context.Context, qx any) ([]*model.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC;`
	return r.findMany(ctx, qx, q)
}

func (r *ProductRepo) FindByCategory(ctx context.Context, qx any, category model.Category) ([]*model.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY created_at DESC;`
	return r.findMany(ctx, qx, q, string(category))
}

func (r *ProductRepo) Update(ctx context.Context, qx any, p *model.Product) error {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return err
	}
	const q = `
UPDATE products
   SET name = $2, description = $3, price = $4, image = $5, category = $6,
       download_link = $7, updated_at = NOW()
 WHERE id = $1;`
	tag, err := ex.Exec(ctx, q, p.ID, p.Name, p.Description, p.Price, p.Image, string(p.Category), p.DownloadLink)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, qx any, id string) error {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) findMany(ctx context.Context, qx any, q string, args ...any) ([]*model.Product, error) {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	var category string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &category, &p.DownloadLink, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	p.Category = model.Category(category)
	return &p, nil
}
