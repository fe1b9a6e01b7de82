package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
	"github.com/Pari658/Expense-Management/internal/domain/repository"
)

const expenseColumns = `e.id, e.description, e.amount, e.currency, e.status, e.submitted_by,
	e.company_id, e.approved_by, e.receipt_url, e.created_at, e.updated_at`

type ExpenseRepository struct {
	db *sql.DB
}

func scanExpense(row scanner, withSubmitter bool) (*entity.Expense, error) {
	e := &entity.Expense{}
	var amount, status string
	var approver sql.NullString
	dest := []any{&e.ID, &e.Description, &amount, &e.Currency, &status, &e.SubmittedBy,
		&e.CompanyID, &approver, &e.ReceiptURL, &e.CreatedAt, &e.UpdatedAt}
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
	if approver.Valid {
		e.ApprovedBy = &approver.String
	}
	if withSubmitter {
		sub.ID = e.SubmittedBy
		e.Submitter = &sub
	}
	return e, nil
}

func (r *ExpenseRepository) list(ctx context.Context, withSubmitter bool, query string, args ...any) ([]*entity.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, description, amount, currency, status, submitted_by,
			company_id, approved_by, receipt_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Description, e.Amount.String(), e.Currency, string(e.Status), e.SubmittedBy,
		e.CompanyID, nullString(e.ApprovedBy), e.ReceiptURL, e.CreatedAt, e.UpdatedAt)
	return mapErr(err)
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*entity.Expense, error) {
	return scanExpense(r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses e WHERE e.id = ?`, id), false)
}

func (r *ExpenseRepository) ListBySubmitter(ctx context.Context, userID string) ([]*entity.Expense, error) {
	return r.list(ctx, false, `
		SELECT `+expenseColumns+` FROM expenses e WHERE e.submitted_by = ? ORDER BY e.rowid
	`, userID)
}

func (r *ExpenseRepository) ListPendingFor(ctx context.Context, approverID string) ([]*entity.Expense, error) {
	return r.list(ctx, true, `
		SELECT `+expenseColumns+`, u.name, u.email
		FROM expenses e
		JOIN users u ON u.id = e.submitted_by
		WHERE e.approved_by = ? AND e.status = ?
		ORDER BY e.rowid
	`, approverID, string(entity.StatusPending))
}

func (r *ExpenseRepository) ListByCompany(ctx context.Context, companyID string) ([]*entity.Expense, error) {
	return r.list(ctx, false, `
		SELECT `+expenseColumns+` FROM expenses e WHERE e.company_id = ? ORDER BY e.rowid
	`, companyID)
}

func (r *ExpenseRepository) UpdateStatus(ctx context.Context, id, approverID string, next entity.ExpenseStatus) (*entity.Expense, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET status = ?, updated_at = ?
		WHERE id = ? AND approved_by = ? AND status = ?
	`, string(next), time.Now().UTC(), id, approverID, string(entity.StatusPending))
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, repository.ErrConflict
	}
	e, err := r.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.ErrConflict
	}
	return e, err
}

func (r *ExpenseRepository) SetReceiptURL(ctx context.Context, id, url string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET receipt_url = ?, updated_at = ? WHERE id = ?
	`, url, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ExpenseRepository = (*ExpenseRepository)(nil)
