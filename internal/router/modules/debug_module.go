package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Pari658/Expense-Management/internal/interface/middleware"
)

type DebugModule struct {
	RDB *redis.Client
}

func NewDebugModule(rdb *redis.Client) *DebugModule { return &DebugModule{RDB: rdb} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar counters, private networks only, rate-limited per IP
	rg.GET("/debug/vars",
		middleware.OnlyFrom(middleware.AllowPrivateIP()),
		middleware.RateLimit(m.RDB, middleware.DebugLimit),
		gin.WrapH(expvar.Handler()))
}
