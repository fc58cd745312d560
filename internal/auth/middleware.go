package auth

import (
	"context"
	"strings"

	"gamestore/backend/internal/apperror"
	"gamestore/backend/internal/models"
	"gamestore/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionStore returns the token currently accepted for a user.
// A user without a live session, or one that no longer exists, yields "".
type SessionStore interface {
	CurrentToken(ctx context.Context, userID uuid.UUID) (string, error)
}

// ExtractToken reads the raw token from the Authorization header.
// A "Bearer " prefix is tolerated.
func ExtractToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// SessionMiddleware authenticates a request. The token must carry a valid signature, must
// not be expired, and must still be the user's current token.
func SessionMiddleware(codec *jwt.Codec, sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			abort(c, apperror.NewAuthentication("You need to sign in to access this resource"))
			return
		}

		claims, ok := codec.Verify(token)
		if !ok {
			abort(c, apperror.NewAuthentication("Your token is expired, please sign in again"))
			return
		}

		current, err := sessions.CurrentToken(c.Request.Context(), claims.SubjectID())
		if err != nil {
			abort(c, err)
			return
		}
		if current == "" || current != token {
			abort(c, apperror.NewAuthentication("You need to sign in to access this resource"))
			return
		}

		SetIdentity(c, Identity{
			ID:       claims.SubjectID(),
			Role:     models.Role(claims.Role),
			Username: claims.Username,
		})
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
