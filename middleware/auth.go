package middleware

import (
	"context"
	"strings"

	"myhotel/rbac"
	"myhotel/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxUserID    = "auth.user_id"
	ctxToken     = "auth.token"
	ctxPrincipal = "auth.principal"
	ctxLoader    = "auth.loader"
)

// TokenResolver turns a bearer token into a user id.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (uint, error)
}

// PrincipalLoader builds the permission snapshot for a user.
type PrincipalLoader interface {
	Snapshot(ctx context.Context, userID uint) (*rbac.Principal, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Authenticate rejects requests without a live token and loads the caller's
// principal once for the request.
func Authenticate(tokens TokenResolver, principals PrincipalLoader, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		userID, err := tokens.Resolve(c.Request.Context(), token)
		if err != nil {
			WriteError(c, log, err, nil)
			return
		}
		c.Set(ctxToken, token)
		c.Set(ctxUserID, userID)
		c.Set(ctxLoader, principals)
		if _, err := CurrentPrincipal(c); err != nil {
			WriteError(c, log, err, nil)
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the memoized principal, reloading it if the memo
// was dropped by InvalidatePrincipal.
func CurrentPrincipal(c *gin.Context) (*rbac.Principal, error) {
	if v, ok := c.Get(ctxPrincipal); ok {
		if p, ok := v.(*rbac.Principal); ok && p != nil {
			return p, nil
		}
	}
	userID, ok := c.Get(ctxUserID)
	if !ok {
		return nil, services.Unauthorized("missing_token", "Authentication required.")
	}
	loader, ok := c.Get(ctxLoader)
	if !ok {
		return nil, services.Unauthorized("missing_token", "Authentication required.")
	}
	p, err := loader.(PrincipalLoader).Snapshot(c.Request.Context(), userID.(uint))
	if err != nil {
		return nil, err
	}
	c.Set(ctxPrincipal, p)
	return p, nil
}

// InvalidatePrincipal drops the request's memoized principal. Handlers call
// it after changing roles or permissions.
func InvalidatePrincipal(c *gin.Context) {
	c.Set(ctxPrincipal, (*rbac.Principal)(nil))
}

// ActorID is the authenticated user id, or nil on public routes.
func ActorID(c *gin.Context) *uint {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return nil
	}
	id, ok := v.(uint)
	if !ok {
		return nil
	}
	return &id
}

func Token(c *gin.Context) string {
	return c.GetString(ctxToken)
}
