package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
	"github.com/Pari658/Expense-Management/internal/domain/repository"
)

type CompanyRepository struct {
	db *sql.DB
}

func scanCompany(row scanner) (*entity.Company, error) {
	c := &entity.Company{}
	if err := row.Scan(&c.ID, &c.Name, &c.DefaultCurrency, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	return scanCompany(r.db.QueryRowContext(ctx, `
		SELECT id, name, default_currency, created_at, updated_at FROM companies WHERE id = ?
	`, id))
}

func (r *CompanyRepository) GetByName(ctx context.Context, name string) (*entity.Company, error) {
	return scanCompany(r.db.QueryRowContext(ctx, `
		SELECT id, name, default_currency, created_at, updated_at FROM companies WHERE name = ?
	`, name))
}

// Bootstrap mirrors the postgres implementation: the bootstrap row is the
// unique claim on first registration.
func (r *CompanyRepository) Bootstrap(ctx context.Context, c *entity.Company, admin *entity.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO bootstrap (id) VALUES (1) ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return repository.ErrConflict
	}
	var users int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		return err
	}
	if users > 0 {
		return repository.ErrConflict
	}

	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO companies (id, name, default_currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.DefaultCurrency, c.CreatedAt, c.UpdatedAt); err != nil {
		return mapErr(err)
	}
	if err := insertUser(ctx, tx, admin); err != nil {
		return err
	}
	return tx.Commit()
}

var (
	_ repository.CompanyRepository = (*CompanyRepository)(nil)
	_ repository.Registrar         = (*CompanyRepository)(nil)
)
