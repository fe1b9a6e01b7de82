package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
	"github.com/Pari658/Expense-Management/internal/domain/repository"
)

const expenseColumns = `e.id, e.description, e.amount::text, e.currency, e.status, e.submitted_by,
	e.company_id, e.approved_by, e.receipt_url, e.created_at, e.updated_at`

type ExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// scanExpense reads expenseColumns, plus the submitter summary when
// withSubmitter is set.
func scanExpense(row pgx.Row, withSubmitter bool) (*entity.Expense, error) {
	e := &entity.Expense{}
	var amount, status string
	dest := []any{&e.ID, &e.Description, &amount, &e.Currency, &status, &e.SubmittedBy,
		&e.CompanyID, &e.ApprovedBy, &e.ReceiptURL, &e.CreatedAt, &e.UpdatedAt}
	var sub entity.UserSummary
	if withSubmitter {
		dest = append(dest, &sub.Name, &sub.Email)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, mapErr(err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	e.Amount = d
	e.Status = entity.ExpenseStatus(status)
	if withSubmitter {
		sub.ID = e.SubmittedBy
		e.Submitter = &sub
	}
	return e, nil
}

func (r *ExpenseRepository) list(ctx context.Context, withSubmitter bool, sql string, args ...any) ([]*entity.Expense, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*entity.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows, withSubmitter)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ExpenseRepository) Create(ctx context.Context, e *entity.Expense) error {
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO expenses (id, description, amount, currency, status, submitted_by,
			company_id, approved_by, receipt_url, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9, $10, $11)
	`, e.ID, e.Description, e.Amount.String(), e.Currency, string(e.Status), e.SubmittedBy,
		e.CompanyID, e.ApprovedBy, e.ReceiptURL, e.CreatedAt, e.UpdatedAt)
	return mapErr(err)
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*entity.Expense, error) {
	return scanExpense(r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses e WHERE e.id = $1`, id), false)
}

func (r *ExpenseRepository) ListBySubmitter(ctx context.Context, userID string) ([]*entity.Expense, error) {
	return r.list(ctx, false, `
		SELECT `+expenseColumns+`
		FROM expenses e
		WHERE e.submitted_by = $1
		ORDER BY e.created_at, e.id
	`, userID)
}

func (r *ExpenseRepository) ListPendingFor(ctx context.Context, approverID string) ([]*entity.Expense, error) {
	return r.list(ctx, true, `
		SELECT `+expenseColumns+`, u.name, u.email
		FROM expenses e
		JOIN users u ON u.id = e.submitted_by
		WHERE e.approved_by = $1 AND e.status = $2
		ORDER BY e.created_at, e.id
	`, approverID, string(entity.StatusPending))
}

func (r *ExpenseRepository) ListByCompany(ctx context.Context, companyID string) ([]*entity.Expense, error) {
	return r.list(ctx, false, `
		SELECT `+expenseColumns+`
		FROM expenses e
		WHERE e.company_id = $1
		ORDER BY e.created_at, e.id
	`, companyID)
}

func (r *ExpenseRepository) UpdateStatus(ctx context.Context, id, approverID string, next entity.ExpenseStatus) (*entity.Expense, error) {
	e, err := scanExpense(r.pool.QueryRow(ctx, `
		UPDATE expenses e
		SET status = $1, updated_at = $2
		WHERE e.id = $3 AND e.approved_by = $4 AND e.status = $5
		RETURNING `+expenseColumns+`
	`, string(next), time.Now().UTC(), id, approverID, string(entity.StatusPending)), false)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.ErrConflict
	}
	return e, err
}

func (r *ExpenseRepository) SetReceiptURL(ctx context.Context, id, url string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE expenses SET receipt_url = $1, updated_at = $2 WHERE id = $3
	`, url, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ExpenseRepository = (*ExpenseRepository)(nil)
