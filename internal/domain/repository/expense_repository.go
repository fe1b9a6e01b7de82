package repository

import (
	"context"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *entity.Expense) error
	GetByID(ctx context.Context, id string) (*entity.Expense, error)
	ListBySubmitter(ctx context.Context, userID string) ([]*entity.Expense, error)
	// ListPendingFor returns pending expenses assigned to approverID with
	// the submitter summary joined in.
	ListPendingFor(ctx context.Context, approverID string) ([]*entity.Expense, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Expense, error)
	// UpdateStatus writes next only while the row is Pending and assigned
	// to approverID; otherwise it returns ErrConflict.
	UpdateStatus(ctx context.Context, id, approverID string, next entity.ExpenseStatus) (*entity.Expense, error)
	SetReceiptURL(ctx context.Context, id, url string) error
}
