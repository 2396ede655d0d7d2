package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxClaimsKey = "auth_claims"

func AuthMiddleware(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromRequest(c, tokens, repo)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches claims when a valid bearer token is present
// and lets the request through either way. Public routes use it to
// personalize responses for signed-in users.
func OptionalAuthMiddleware(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := claimsFromRequest(c, tokens, repo); ok && claims != nil {
			c.Set(CtxClaimsKey, claims)
		}
		c.Next()
	}
}

// claimsFromRequest parses the Authorization header. It returns (nil, true)
// when no token was sent, (nil, false) when a token was sent but rejected.
func claimsFromRequest(c *gin.Context, tokens TokenService, repo *Repo) (*Claims, bool) {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return nil, true
	}

	raw := strings.TrimSpace(h[len("Bearer "):])
	claims, err := tokens.Parse(raw)
	if err != nil {
		return nil, false
	}
	if repo != nil {
		currentVersion, err := repo.GetTokenVersion(c.Request.Context(), claims.UserID)
		if err != nil || currentVersion != claims.TokenVersion {
			return nil, false
		}
	}
	return claims, true
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
