package repository

import (
	"context"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.User, error)
	Count(ctx context.Context) (int, error)
}

// UserIndex is a secondary search index over users.
type UserIndex interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, companyID, q string, size int) ([]entity.UserSummary, error)
}
