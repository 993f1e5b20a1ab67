package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// OpsTokenHeader carries the operations token for maintenance endpoints.
const OpsTokenHeader = "X-Ops-Token"

// RequireOpsToken guards operator-only endpoints such as the manual sweep
// trigger. The configured value is a bcrypt hash; the plaintext token only
// travels in the request header. An empty hash disables the endpoints
// entirely rather than leaving them open.
func RequireOpsToken(tokenHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenHash == "" {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Operations endpoints are not configured",
				"code":    "OPS_DISABLED",
			})
			c.Abort()
			return
		}

		token := c.GetHeader(OpsTokenHeader)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Operations token is required",
				"code":    "MISSING_OPS_TOKEN",
			})
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Invalid operations token",
				"code":    "INVALID_OPS_TOKEN",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
