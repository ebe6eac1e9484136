package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
)

var _ repository.MessageRepository = (*MessageRepo)(nil)

// MessageRepo persists the relay transcript. Rows are inserted once and never
// touched again; ULID ids keep the natural order stable.
type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Save(ctx context.Context, qx any, m *model.Message) error {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO messages (id, content, file_kind, file_id, file_name, from_admin, user_id, budget_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW());`
	_, err = ex.Exec(ctx, q,
		m.ID, m.Content,
		string(m.Attachment.Kind), m.Attachment.FileID, m.Attachment.FileName,
		m.FromAdmin, m.UserID, m.BudgetID)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

func (r *MessageRepo) FindByBudget(ctx context.Context, qx any, budgetID string) ([]*model.Message, error) {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT id, content, file_kind, file_id, file_name, from_admin, user_id, budget_id, created_at
  FROM messages WHERE budget_id = $1 ORDER BY id ASC;`
	rows, err := ex.Query(ctx, q, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Message
	for rows.Next() {
		var m model.Message
		var kind string
		if err := rows.Scan(&m.ID, &m.Content, &kind, &m.Attachment.FileID, &m.Attachment.FileName,
			&m.FromAdmin, &m.UserID, &m.BudgetID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Attachment.Kind = model.AttachmentKind(kind)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *MessageRepo) Stats(ctx context.Context, qx any, budgetID string) (*repository.TranscriptStats, error) {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT COUNT(*), MIN(created_at), MAX(created_at) FROM messages WHERE budget_id = $1;`
	var stats repository.TranscriptStats
	var first, last sql.NullTime
	if err := ex.QueryRow(ctx, q, budgetID).Scan(&stats.Count, &first, &last); err != nil {
		return nil, fmt.Errorf("transcript stats: %w", err)
	}
	if first.Valid {
		stats.FirstAt = first.Time
	}
	if last.Valid {
		stats.LastAt = last.Time
	}
	return &stats, nil
}
