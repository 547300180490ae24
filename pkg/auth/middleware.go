package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
)

const principalKey = "auth.principal"

// JWTAuthMiddleware puts the principal of a valid bearer token into the
// gin context. Requests without an Authorization header pass through with
// no principal and are rejected by the services; malformed or invalid
// tokens are rejected here.
func JWTAuthMiddleware(svc *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, "use the format 'Bearer <token>'")
			return
		}

		claims, err := svc.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abort(c, err.Error())
			return
		}

		c.Set(principalKey, claims.Principal())
		c.Next()
	}
}

func abort(c *gin.Context, details string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apperror.Unauthenticated(details))
}

// Principal returns the principal stored by JWTAuthMiddleware, or nil
func Principal(c *gin.Context) *access.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*access.Principal)
	return p
}

// SetPrincipal stores p in the gin context
func SetPrincipal(c *gin.Context, p *access.Principal) {
	c.Set(principalKey, p)
}
