package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Pari658/Expense-Management/config"
	repo "github.com/Pari658/Expense-Management/internal/domain/repository"
	pginfra "github.com/Pari658/Expense-Management/internal/infrastructure/postgres"
	"github.com/Pari658/Expense-Management/internal/infrastructure/sqlite"
	"github.com/Pari658/Expense-Management/pkg/helpers"
)

// Container holds the process-wide components built once in main and handed
// to the router. Optional clients (Redis, GCS, ES, RabbitMQ) are nil when
// not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	JWT    *helpers.JWTManager

	PGPool *pgxpool.Pool
	SQLite *sqlite.DB

	Redis *redis.Client
	GCS   *storage.Client
	ES    *elasticsearch.Client
	Jobs  *helpers.JobQueue

	Users     repo.UserRepository
	Companies repo.CompanyRepository
	Registrar repo.Registrar
	Expenses  repo.ExpenseRepository
}

// UsePostgres points the repositories at a pgx pool.
func (c *Container) UsePostgres(pool *pgxpool.Pool) {
	c.PGPool = pool
	companies := pginfra.NewCompanyRepository(pool)
	c.Users = pginfra.NewUserRepository(pool)
	c.Companies = companies
	c.Registrar = companies
	c.Expenses = pginfra.NewExpenseRepository(pool)
}

// UseSQLite points the repositories at an opened SQLite database.
func (c *Container) UseSQLite(db *sqlite.DB) {
	c.SQLite = db
	companies := db.Companies()
	c.Users = db.Users()
	c.Companies = companies
	c.Registrar = companies
	c.Expenses = db.Expenses()
}

// Close releases every client the container owns.
func (c *Container) Close() {
	if c.Jobs != nil {
		c.Jobs.Close()
	}
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.SQLite != nil {
		_ = c.SQLite.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
