package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Pari658/Expense-Management/config"
	"github.com/Pari658/Expense-Management/internal/application"
	"github.com/Pari658/Expense-Management/internal/container"
	pginfra "github.com/Pari658/Expense-Management/internal/infrastructure/postgres"
	"github.com/Pari658/Expense-Management/internal/infrastructure/sqlite"
	"github.com/Pari658/Expense-Management/pkg/helpers"
)

// seed bootstraps a demo company with an Admin, a Manager and an Employee.
// It only works against an empty database.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	c := &container.Container{Config: cfg, Logger: logger, JWT: helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)}
	defer c.Close()

	if cfg.DBDriver == "sqlite" {
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			logger.Fatalf("open sqlite: %v", err)
		}
		c.UseSQLite(db)
	} else {
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), logger); err != nil {
			logger.Fatalf("migrate: %v", err)
		}
		pool, err := pginfra.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatalf("connect: %v", err)
		}
		c.UsePostgres(pool)
	}

	auth := application.NewAuthService(c.Users, c.Companies, c.Registrar, c.JWT, nil, logger)
	users := application.NewUserService(c.Users, nil, nil, logger)

	const password = "password123"
	s, err := auth.Register(ctx, application.RegisterInput{
		Name:        "Demo Admin",
		Email:       "admin@demo.test",
		Password:    password,
		CompanyName: "Demo Co",
		Currency:    "USD",
	})
	if err != nil {
		if errors.Is(err, application.ErrValidation) {
			logger.Info("database already has users; nothing to seed")
			return
		}
		logger.Fatalf("register admin: %v", err)
	}
	admin := s.User

	manager, err := users.CreateUser(ctx, admin, application.CreateUserInput{
		Name: "Demo Manager", Email: "manager@demo.test", Password: password, Role: "Manager", ManagerID: admin.ID,
	})
	if err != nil {
		logger.Fatalf("create manager: %v", err)
	}
	employee, err := users.CreateUser(ctx, admin, application.CreateUserInput{
		Name: "Demo Employee", Email: "employee@demo.test", Password: password, Role: "Employee", ManagerID: manager.ID,
	})
	if err != nil {
		logger.Fatalf("create employee: %v", err)
	}

	for _, u := range []struct{ role, email, id string }{
		{"Admin", admin.Email, admin.ID},
		{"Manager", manager.Email, manager.ID},
		{"Employee", employee.Email, employee.ID},
	} {
		logger.WithFields(logrus.Fields{"role": u.role, "id": u.id}).Info("seeded")
		fmt.Printf("%-8s %s / %s\n", u.role, u.email, password)
	}
}
