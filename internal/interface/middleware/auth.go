package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Pari658/Expense-Management/internal/application"
	"github.com/Pari658/Expense-Management/internal/domain/entity"
	"github.com/Pari658/Expense-Management/pkg/helpers"
	"github.com/Pari658/Expense-Management/pkg/response"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

// Authenticator resolves a raw token into a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// Auth resolves the bearer token (or the access_token cookie as fallback)
// and sets user and userID in the Gin context on success.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := authn.Authenticate(c.Request.Context(), tokenFrom(c))
		if err != nil {
			var appErr *application.Error
			if errors.As(err, &appErr) && errors.Is(err, application.ErrUnauthorized) {
				response.Abort(c, http.StatusUnauthorized, appErr.Msg, nil)
				return
			}
			response.Abort(c, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user holds one of roles.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			response.Abort(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if !u.Role.In(roles...) {
			response.Abort(c, http.StatusForbidden, "Not authorized for this action", nil)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by Auth, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	if tok, err := c.Cookie(helpers.AccessTokenCookie); err == nil {
		return tok
	}
	return ""
}
