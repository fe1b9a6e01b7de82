package repository

import (
	"context"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
)

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByName(ctx context.Context, name string) (*entity.Company, error)
}

// Registrar performs the one-time bootstrap of the first company and its
// admin atomically. It returns ErrConflict when any user already exists or
// a concurrent bootstrap won.
type Registrar interface {
	Bootstrap(ctx context.Context, c *entity.Company, admin *entity.User) error
}
