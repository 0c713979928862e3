package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ownerKey  = "owner"
	claimsKey = "claims"
)

// OwnerAuth enforces bearer JWT tokens signed with HS256 and stores the
// token subject as the request owner.
func OwnerAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < len("bearer ") || !strings.EqualFold(authz[:len("bearer ")], "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Set(ownerKey, claims.Subject)
		c.Next()
	}
}

// OwnerFrom returns the authenticated owner, or "" when none was set.
func OwnerFrom(c *gin.Context) string {
	return c.GetString(ownerKey)
}

// ClaimsFrom returns the parsed token claims.
func ClaimsFrom(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

// WithOwner sets owner on the context without a token. Used by tests and
// trusted internal callers.
func WithOwner(owner string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ownerKey, owner)
		c.Next()
	}
}
