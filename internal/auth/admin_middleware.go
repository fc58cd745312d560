package auth

import (
	"gamestore/backend/internal/apperror"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware rejects callers that are not ADMIN before the request body is read.
// It must be used AFTER SessionMiddleware.
func AdminMiddleware(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, exists := IdentityFrom(c)
		if !exists {
			// This should not happen if SessionMiddleware is used before it
			abort(c, apperror.NewAuthentication("You need to sign in to access this resource"))
			return
		}

		if !id.IsAdmin() {
			abort(c, apperror.NewAuthorization("%s", message))
			return
		}

		c.Next()
	}
}
