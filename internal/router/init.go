package router

import (
	"github.com/Pari658/Expense-Management/internal/application"
	"github.com/Pari658/Expense-Management/internal/container"
	repo "github.com/Pari658/Expense-Management/internal/domain/repository"
	"github.com/Pari658/Expense-Management/internal/infrastructure/search"
	"github.com/Pari658/Expense-Management/internal/infrastructure/storage"
	handlers "github.com/Pari658/Expense-Management/internal/interface/http"
	"github.com/Pari658/Expense-Management/internal/router/modules"
	tpl "github.com/Pari658/Expense-Management/pkg/mailer/templates"
)

type Services struct {
	Auth     *application.AuthService
	Users    *application.UserService
	Expenses *application.ExpenseService
}

// BuildServices wires application services from the container. Optional
// infrastructure is left as nil interfaces so services can skip it.
func BuildServices(c *container.Container) Services {
	cfg := c.Config

	var pub application.Publisher
	if c.Jobs != nil && cfg.MailSendEnabled {
		pub = c.Jobs
	}
	notifier := application.NewNotifier(pub, tpl.Branding{AppName: cfg.AppName, AppURL: cfg.AppURL}, c.Logger)

	var index repo.UserIndex
	if c.ES != nil {
		index = search.NewUserIndex(c.ES, cfg.ESUsersIndex)
	}
	var receipts application.ReceiptStore
	if c.GCS != nil && cfg.GCSBucket != "" {
		receipts = storage.NewGCSReceiptStore(c.GCS, cfg.GCSBucket)
	}

	return Services{
		Auth:     application.NewAuthService(c.Users, c.Companies, c.Registrar, c.JWT, c.Redis, c.Logger),
		Users:    application.NewUserService(c.Users, index, notifier, c.Logger),
		Expenses: application.NewExpenseService(c.Expenses, c.Users, c.Companies, receipts, notifier, c.Logger),
	}
}

// InitModules builds every feature module and adds it to the registry.
// Call once during startup.
func InitModules(r *Registry, c *container.Container) {
	svc := BuildServices(c)
	cfg := c.Config

	authHandler := handlers.NewAuthHandler(svc.Auth, c.Logger, cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(svc.Users, c.Logger)
	expenseHandler := handlers.NewExpenseHandler(svc.Expenses, c.Logger)

	r.Add(modules.NewAuthModule(authHandler, svc.Auth, c.Redis))
	r.Add(modules.NewUserModule(userHandler, svc.Auth, c.Redis))
	r.Add(modules.NewExpenseModule(expenseHandler, svc.Auth, c.Redis))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
