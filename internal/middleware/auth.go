package middleware

import (
	"net/http"
	"strings"

	jwtsvc "foodgram/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// Auth rejects requests without a valid bearer token and stores the
// caller's id in the context as "user_id".
func Auth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "Missing or malformed Authorization header")
			return
		}

		claims, err := jwt.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

// Viewer is the optional variant used on read endpoints: a valid token
// identifies the viewer, anything else leaves the request anonymous.
func Viewer(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := jwt.ValidateToken(token); err == nil {
				c.Set("user_id", claims.UserID)
			}
		}
		c.Next()
	}
}

// ViewerID returns the authenticated caller's id, or 0 for anonymous
// requests.
func ViewerID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
