package auth

import (
	"gamestore/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const identityKey = "identity"

// Identity is the authenticated caller of a request.
type Identity struct {
	ID       uuid.UUID
	Role     models.Role
	Username string
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Is reports whether the caller is the user with the given id.
func (i Identity) Is(userID uuid.UUID) bool {
	return i.ID == userID
}

// SetIdentity attaches the caller to the request.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the caller attached by SessionMiddleware.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
