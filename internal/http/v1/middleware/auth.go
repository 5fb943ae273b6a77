package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/appctx"
	"taskwell/internal/domain/auth"
)

// TokenDecoder verifies bearer tokens. Implemented by auth.TokenCodec.
type TokenDecoder interface {
	Decode(tokenString string) (*auth.Claims, error)
}

// PositionChecker resolves the acting employee's rank.
// Implemented by the employee service.
type PositionChecker interface {
	RequireAtLeast(ctx context.Context, min auth.Position) error
}

// Auth middleware validates bearer tokens and populates the request
// principal. A refresh token is rejected here: it opens no door except
// the refresh endpoint itself.
func Auth(decoder TokenDecoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := decoder.Decode(parts[1])
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if claims.IsRefresh() {
			abortUnauthorized(c, "refresh token cannot be used for access")
			return
		}

		principal, err := claims.Principal()
		if err != nil {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		ctx := appctx.WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)

		// Store in gin context for easy access
		c.Set("account_id", principal.AccountID.String())
		c.Set("authorities", principal.Authorities)

		c.Next()
	}
}

// RequirePosition gates a route on the acting employee's rank within the
// current tenant. The rank is read from the database, never from the
// token, so a stale token cannot keep a demoted employee privileged.
func RequirePosition(checker PositionChecker, min auth.Position) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := checker.RequireAtLeast(c.Request.Context(), min); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuthority gates a route on a role or permission string carried
// in the token.
func RequireAuthority(authority string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if appctx.GetPrincipal(c.Request.Context()) == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !appctx.HasAuthority(c.Request.Context(), authority) {
			_ = c.Error(
				apperror.NewForbidden("insufficient permissions").
					WithDetail("required_authority", authority),
			)
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
