package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Pari658/Expense-Management/internal/container"
	"github.com/Pari658/Expense-Management/internal/interface/middleware"
	"github.com/Pari658/Expense-Management/pkg/response"
	"github.com/Pari658/Expense-Management/pkg/validation"
)

// NewEngine builds the gin engine with global middleware and every module
// registered under /api.
func NewEngine(c *container.Container) *gin.Engine {
	cfg := c.Config
	validation.Init()

	r := gin.New()
	if err := middleware.TrustClientIPFrom(r, cfg.TrustedProxyList(), cfg.TrustedPlatform); err != nil {
		c.Logger.WithError(err).Warn("invalid trusted proxies; using the peer address only")
		_ = middleware.TrustClientIPFrom(r, nil, "")
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	origins := cfg.CORSOrigins()
	if len(origins) == 0 {
		origins = []string{cfg.AppURL}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}
	r.NoRoute(func(ctx *gin.Context) {
		response.Error[any](ctx, http.StatusNotFound, "route not found", nil)
	})

	reg := NewRegistry(r, c.Logger)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}
