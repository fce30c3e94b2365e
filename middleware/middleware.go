package middleware

import (
	"net/http"
	"time"

	"github.com/dinerozz/orgs-console/pkg/apperr"
	"github.com/dinerozz/orgs-console/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UsernameKey is the gin context key the authenticated username is stored
// under.
const UsernameKey = "username"

// AuthenticationMiddleware checks the bearer credential on every call and
// rejects with the groups service's structured error envelope, so clients
// classify auth failures the same way as any other domain error.
func AuthenticationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			abortWithDomainError(c, apperr.CodeNoToken, "no authentication token provided")
			return
		}

		username, err := utils.ValidateToken(tokenString)
		if err != nil {
			abortWithDomainError(c, apperr.CodeInvalidToken, "invalid authentication token")
			return
		}

		c.Set(UsernameKey, username)
		c.Next()
	}
}

// Username returns the authenticated username from the request context.
func Username(c *gin.Context) string {
	return c.GetString(UsernameKey)
}

func abortWithDomainError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, apperr.ErrorEnvelope{
		Error: apperr.ErrorInfo{
			HTTPCode:   http.StatusInternalServerError,
			HTTPStatus: http.StatusText(http.StatusInternalServerError),
			AppCode:    code,
			AppError:   apperr.Name(code),
			Message:    message,
			CallID:     uuid.NewString(),
			Time:       time.Now().UnixMilli(),
		},
	})
}
