package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/Pari658/Expense-Management/internal/interface/http"
	"github.com/Pari658/Expense-Management/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Authn   middleware.Authenticator
	RDB     *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, authn middleware.Authenticator, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Authn: authn, RDB: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// public, limited per IP
	rg.POST("/auth/register", middleware.RateLimit(m.RDB, middleware.RegisterLimit), m.Handler.Register)
	rg.POST("/auth/login", middleware.RateLimit(m.RDB, middleware.LoginLimit), m.Handler.Login)

	auth := rg.Group("/auth")
	auth.Use(middleware.Auth(m.Authn))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
	}
}
