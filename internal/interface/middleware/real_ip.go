package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Pari658/Expense-Management/pkg/response"
)

const realIPKey = "real_ip"

// TrustClientIPFrom configures how r resolves c.ClientIP(). Forwarded
// headers (X-Forwarded-For, X-Real-IP) count only when the peer address is
// in proxies; with no proxies the socket address is used. platform is an
// edge header trusted as-is ("cloudflare" selects CF-Connecting-IP) and
// must only be set when every request arrives through that edge.
func TrustClientIPFrom(r *gin.Engine, proxies []string, platform string) error {
	if len(proxies) == 0 {
		proxies = nil
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "":
	case "cloudflare":
		r.TrustedPlatform = gin.PlatformCloudflare
	default:
		r.TrustedPlatform = platform
	}
	return nil
}

// RealIP stores the resolved client address under "real_ip".
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(realIPKey, c.ClientIP())
		c.Next()
	}
}

// AllowFunc reports whether a request may pass a gate.
type AllowFunc func(*gin.Context) bool

// AllowPrivateIP matches loopback and RFC 1918 / ULA client addresses.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		ip := net.ParseIP(clientIP(c))
		return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
	}
}

// OnlyFrom answers 403 to requests allow does not match.
func OnlyFrom(allow AllowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c) {
			response.Abort(c, http.StatusForbidden, "forbidden", nil)
			return
		}
		c.Next()
	}
}
