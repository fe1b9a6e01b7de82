package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
	"github.com/Pari658/Expense-Management/internal/domain/repository"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type CompanyRepository struct {
	pool *pgxpool.Pool
}

func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

func scanCompany(row pgx.Row) (*entity.Company, error) {
	c := &entity.Company{}
	if err := row.Scan(&c.ID, &c.Name, &c.DefaultCurrency, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	return scanCompany(r.pool.QueryRow(ctx, `
		SELECT id, name, default_currency, created_at, updated_at FROM companies WHERE id = $1
	`, id))
}

func (r *CompanyRepository) GetByName(ctx context.Context, name string) (*entity.Company, error) {
	return scanCompany(r.pool.QueryRow(ctx, `
		SELECT id, name, default_currency, created_at, updated_at FROM companies WHERE name = $1
	`, name))
}

// Bootstrap claims the single bootstrap row, then creates the company and
// its admin. Losing the claim, or finding existing users, yields ErrConflict.
func (r *CompanyRepository) Bootstrap(ctx context.Context, c *entity.Company, admin *entity.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `INSERT INTO bootstrap (id) VALUES (1) ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	var users int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		return err
	}
	if users > 0 {
		return repository.ErrConflict
	}

	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if _, err := tx.Exec(ctx, `
		INSERT INTO companies (id, name, default_currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.Name, c.DefaultCurrency, c.CreatedAt, c.UpdatedAt); err != nil {
		return mapErr(err)
	}
	if err := insertUser(ctx, tx, admin); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var (
	_ repository.CompanyRepository = (*CompanyRepository)(nil)
	_ repository.Registrar         = (*CompanyRepository)(nil)
)
