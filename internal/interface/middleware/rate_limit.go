package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Pari658/Expense-Management/pkg/response"
)

// KeyFunc derives the counter key for a request.
type KeyFunc func(c *gin.Context) string

// Limit is one fixed-window budget: at most Max requests per Window for
// every distinct Key. Skip, when set, exempts matching requests.
type Limit struct {
	Name   string
	Max    int
	Window time.Duration
	Key    KeyFunc
	Skip   func(*gin.Context) bool
}

// Budgets used by the route modules.
var (
	RegisterLimit = Limit{Name: "register", Max: 5, Window: time.Minute, Key: ByRouteAndIP}
	LoginLimit    = Limit{Name: "login", Max: 10, Window: time.Minute, Key: ByRouteAndIP}
	APIIPLimit    = Limit{Name: "api-ip", Max: 300, Window: time.Minute, Key: ByIP}
	APIUserLimit  = Limit{Name: "api-user", Max: 120, Window: time.Minute, Key: ByUser}
	DebugLimit    = Limit{Name: "debug", Max: 120, Window: time.Minute, Key: ByIP}
)

func ByIP(c *gin.Context) string { return "ip:" + clientIP(c) }

// ByRouteAndIP gives each route its own per-IP counter.
func ByRouteAndIP(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return "route:" + route + ":ip:" + clientIP(c)
}

// ByUser counts per authenticated user and falls back to the IP.
func ByUser(c *gin.Context) string {
	if uid := c.GetString(CtxUserIDKey); uid != "" {
		return "user:" + uid
	}
	return "anon:" + clientIP(c)
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString(realIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// Increments the window counter, arms its expiry on the first hit and
// returns {count, pttl}.
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RateLimit enforces l on Redis. Without Redis it does nothing, and a
// Redis error lets the request through.
func RateLimit(rdb *redis.Client, l Limit) gin.HandlerFunc {
	if rdb == nil || l.Max <= 0 || l.Window <= 0 || l.Key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (l.Skip != nil && l.Skip(c)) {
			c.Next()
			return
		}
		key := "rl:" + l.Name + ":" + l.Key(c)
		res, err := windowScript.Run(c.Request.Context(), rdb, []string{key}, l.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond

		reset := 0
		if ttl > 0 {
			reset = int((ttl + time.Second - 1) / time.Second)
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(l.Max-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))

		if count > l.Max {
			if reset > 0 {
				c.Header("Retry-After", strconv.Itoa(reset))
			}
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
