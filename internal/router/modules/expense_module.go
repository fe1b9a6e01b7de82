package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
	handlers "github.com/Pari658/Expense-Management/internal/interface/http"
	"github.com/Pari658/Expense-Management/internal/interface/middleware"
)

type ExpenseModule struct {
	Handler *handlers.ExpenseHandler
	Authn   middleware.Authenticator
	RDB     *redis.Client
}

func NewExpenseModule(h *handlers.ExpenseHandler, authn middleware.Authenticator, rdb *redis.Client) *ExpenseModule {
	return &ExpenseModule{Handler: h, Authn: authn, RDB: rdb}
}

func (m *ExpenseModule) Register(rg *gin.RouterGroup) {
	exp := rg.Group("/expenses")
	exp.Use(
		middleware.Auth(m.Authn),
		middleware.RateLimit(m.RDB, middleware.APIIPLimit),
		middleware.RateLimit(m.RDB, middleware.APIUserLimit),
	)
	{
		exp.POST("", m.Handler.Submit)
		exp.GET("", m.Handler.ListMine)
		exp.GET("/approvals", middleware.RequireRole(entity.RoleManager, entity.RoleAdmin), m.Handler.Approvals)
		exp.GET("/all", middleware.RequireRole(entity.RoleAdmin), m.Handler.ListCompany)
		// The assigned approver check happens in the service; role alone is not enough.
		exp.PUT("/:id/status", middleware.RequireRole(entity.RoleManager, entity.RoleAdmin), m.Handler.UpdateStatus)
		exp.POST("/:id/receipt", m.Handler.UploadReceipt)
	}
}
