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

var _ repository.OrderRepository = (*OrderRepo)(nil)

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

func (r *OrderRepo) Save(ctx context.Context, qx any, o *model.Order) error {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO orders (id, user_id, product_id, status, stars, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW(),NOW());`
	_, err = ex.Exec(ctx, q, o.ID, o.UserID, o.ProductID, string(o.Status), o.Stars)
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, qx any, id string) (*model.Order, error) {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, user_id, product_id, status, stars, created_at, updated_at FROM orders WHERE id = $1;`
	return scanOrder(ex.QueryRow(ctx, q, id))
}

func (r *OrderRepo) FindAllByUser(ctx context.Context, qx any, userID string) ([]*model.Order, error) {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, user_id, product_id, status, stars, created_at, updated_at
  FROM orders WHERE user_id = $1 ORDER BY created_at DESC;`
	rows, err := ex.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, qx any, id string, status model.OrderStatus) error {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return err
	}
	const q = `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1;`
	tag, err := ex.Exec(ctx, q, id, string(status))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var status string
	err := row.Scan(&o.ID, &o.UserID, &o.ProductID, &status, &o.Stars, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}
