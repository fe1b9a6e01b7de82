package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Pari658/Expense-Management/internal/domain/entity"
	handlers "github.com/Pari658/Expense-Management/internal/interface/http"
	"github.com/Pari658/Expense-Management/internal/interface/middleware"
)

// UserModule serves Admin user administration:
// POST /api/users, GET /api/users, GET /api/users/search
type UserModule struct {
	Handler *handlers.UserHandler
	Authn   middleware.Authenticator
	RDB     *redis.Client
}

func NewUserModule(h *handlers.UserHandler, authn middleware.Authenticator, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Authn: authn, RDB: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(
		middleware.Auth(m.Authn),
		middleware.RateLimit(m.RDB, middleware.APIUserLimit),
		middleware.RequireRole(entity.RoleAdmin),
	)
	{
		users.POST("", m.Handler.Create)
		users.GET("", m.Handler.List)
		users.GET("/search", m.Handler.Search)
	}
}
