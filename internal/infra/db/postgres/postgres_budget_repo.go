package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
)

var _ repository.BudgetRepository = (*BudgetRepo)(nil)

type BudgetRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresBudgetRepo(pool *pgxpool.Pool) *BudgetRepo {
	return &BudgetRepo{pool: pool}
}

const budgetColumns = `id, user_id, category, objective, audience, features, deadline,
budget, design, maintenance, technologies, hosting, integrations, specific_answers,
status, chat_active, proposal_resolved_at, created_at, updated_at`

func (r *BudgetRepo) Save(ctx context.Context, qx any, b *model.Budget) error {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return err
	}
	specific, err := json.Marshal(b.Answers.Specific)
	if err != nil {
		return fmt.Errorf("marshal specific answers: %w", err)
	}
	const q = `
INSERT INTO budgets (id, user_id, category, objective, audience, features, deadline,
	budget, design, maintenance, technologies, hosting, integrations, specific_answers,
	status, chat_active, proposal_resolved_at, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,COALESCE($18,NOW()),NOW())
ON CONFLICT (id) DO UPDATE SET
  objective = EXCLUDED.objective,
  audience = EXCLUDED.audience,
  features = EXCLUDED.features,
  deadline = EXCLUDED.deadline,
  budget = EXCLUDED.budget,
  design = EXCLUDED.design,
  maintenance = EXCLUDED.maintenance,
  technologies = EXCLUDED.technologies,
  hosting = EXCLUDED.hosting,
  integrations = EXCLUDED.integrations,
  specific_answers = EXCLUDED.specific_answers,
  status = EXCLUDED.status,
  chat_active = EXCLUDED.chat_active,
  proposal_resolved_at = EXCLUDED.proposal_resolved_at,
  updated_at = NOW();`
	_, err = ex.Exec(ctx, q,
		b.ID, b.UserID, string(b.Category),
		b.Answers.Objective, b.Answers.Audience, b.Answers.Features, b.Answers.Deadline,
		b.Answers.Budget, b.Answers.Design, b.Answers.Maintenance,
		b.Answers.Technologies, b.Answers.Hosting, b.Answers.Integrations, specific,
		string(b.Status), b.ChatActive, b.ProposalResolvedAt, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

func (r *BudgetRepo) FindByID(ctx context.Context, qx any, id string) (*model.Budget, error) {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1;`
	return scanBudget(ex.QueryRow(ctx, q, id))
}

func (r *BudgetRepo) FindAllByUser(ctx context.Context, qx any, userID string) ([]*model.Budget, error) {
	q := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 ORDER BY created_at DESC;`
	return r.findMany(ctx, qx, q, userID)
}

func (r *BudgetRepo) FindAll(ctx context.Context, qx any) ([]*model.Budget, error) {
	q := `SELECT ` + budgetColumns + ` FROM budgets ORDER BY created_at DESC;`
	return r.findMany(ctx, qx, q)
}

func (r *BudgetRepo) FindByStatus(ctx context.Context, qx any, status model.BudgetStatus) ([]*model.Budget, error) {
	q := `SELECT ` + budgetColumns + ` FROM budgets WHERE status = $1 ORDER BY created_at DESC;`
	return r.findMany(ctx, qx, q, string(status))
}

func (r *BudgetRepo) FindActiveChatByUser(ctx context.Context, qx any, userID string) (*model.Budget, error) {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 AND chat_active LIMIT 1;`
	return scanBudget(ex.QueryRow(ctx, q, userID))
}

func (r *BudgetRepo) FindLatestByUser(ctx context.Context, qx any, userID string) (*model.Budget, error) {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1;`
	return scanBudget(ex.QueryRow(ctx, q, userID))
}

func (r *BudgetRepo) UpdateStatus(ctx context.Context, qx any, id string, status model.BudgetStatus) error {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return err
	}
	const q = `UPDATE budgets SET status = $2, updated_at = NOW() WHERE id = $1;`
	tag, err := ex.Exec(ctx, q, id, string(status))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BudgetRepo) ApplyProposal(ctx context.Context, qx any, id, value string) error {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return err
	}
	// Single statement; a resolved proposal never matches, so replays fail,
	// and a budget already past analysis keeps its terminal status.
	const q = `
UPDATE budgets
   SET status = 'APPROVED', budget = $2, proposal_resolved_at = NOW(), updated_at = NOW()
 WHERE id = $1 AND proposal_resolved_at IS NULL
   AND status IN ('PENDING', 'ANALYZING');`
	tag, err := ex.Exec(ctx, q, id, value)
	if err != nil {
		return fmt.Errorf("apply proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.resolveProposalMiss(ctx, qx, id)
	}
	return nil
}

func (r *BudgetRepo) RejectProposal(ctx context.Context, qx any, id string) error {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return err
	}
	const q = `
UPDATE budgets
   SET status = 'ANALYZING', proposal_resolved_at = NOW(), updated_at = NOW()
 WHERE id = $1 AND proposal_resolved_at IS NULL;`
	tag, err := ex.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("reject proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.resolveMiss(ctx, qx, id, domain.ErrProposalResolved)
	}
	return nil
}

func (r *BudgetRepo) ActivateChat(ctx context.Context, qx any, id string) error {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return err
	}
	// The single-active-chat invariant lives in this statement: activation
	// only succeeds when no other budget of the same user has an open chat.
	const q = `
UPDATE budgets
   SET chat_active = TRUE, updated_at = NOW()
 WHERE id = $1
   AND NOT EXISTS (
       SELECT 1 FROM budgets other
        WHERE other.user_id = budgets.user_id AND other.chat_active
   );`
	tag, err := ex.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("activate chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.resolveMiss(ctx, qx, id, domain.ErrChatAlreadyActive)
	}
	return nil
}

func (r *BudgetRepo) DeactivateChat(ctx context.Context, qx any, id string) error {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return err
	}
	const q = `UPDATE budgets SET chat_active = FALSE, updated_at = NOW() WHERE id = $1;`
	tag, err := ex.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("deactivate chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BudgetRepo) DistinctUserIDs(ctx context.Context, qx any) ([]string, error) {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT DISTINCT user_id FROM budgets;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// resolveMiss decides whether a zero-row conditional update means a missing
// budget or a failed condition.
func (r *BudgetRepo) resolveMiss(ctx context.Context, qx any, id string, condErr error) error {
	if _, err := r.FindByID(ctx, qx, id); err != nil {
		return err
	}
	return condErr
}

// resolveProposalMiss distinguishes the two ways ApplyProposal can fail on an
// existing budget: the proposal was already resolved, or the budget moved to
// a status that no longer admits an approval.
func (r *BudgetRepo) resolveProposalMiss(ctx context.Context, qx any, id string) error {
	b, err := r.FindByID(ctx, qx, id)
	if err != nil {
		return err
	}
	if b.ProposalResolvedAt != nil {
		return domain.ErrProposalResolved
	}
	return fmt.Errorf("budget %s: %s -> %s: %w", id, b.Status, model.BudgetApproved, domain.ErrInvalidTransition)
}

func (r *BudgetRepo) findMany(ctx context.Context, qx any, q string, args ...any) ([]*model.Budget, error) {
	ex, err := pick(r.pool, qx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBudget(row pgx.Row) (*model.Budget, error) {
	var b model.Budget
	var category, status string
	var specific []byte
	err := row.Scan(
		&b.ID, &b.UserID, &category,
		&b.Answers.Objective, &b.Answers.Audience, &b.Answers.Features, &b.Answers.Deadline,
		&b.Answers.Budget, &b.Answers.Design, &b.Answers.Maintenance,
		&b.Answers.Technologies, &b.Answers.Hosting, &b.Answers.Integrations, &specific,
		&status, &b.ChatActive, &b.ProposalResolvedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan budget: %w", err)
	}
	b.Category = model.Category(category)
	b.Status = model.BudgetStatus(status)
	b.Answers.Specific = map[string]string{}
	if len(specific) > 0 {
		if err := json.Unmarshal(specific, &b.Answers.Specific); err != nil {
			return nil, fmt.Errorf("unmarshal specific answers: %w", err)
		}
	}
	return &b, nil
}
