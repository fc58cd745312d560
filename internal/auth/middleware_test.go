package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gamestore/backend/internal/apperror"
	"gamestore/backend/internal/models"
	"gamestore/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	tokens map[uuid.UUID]string
	err    error
}

func (f *fakeSessions) CurrentToken(_ context.Context, userID uuid.UUID) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.tokens[userID], nil
}

// statusFromErrors stands in for the real error translator.
func statusFromErrors(c *gin.Context) {
	c.Next()
	if len(c.Errors) == 0 {
		return
	}
	if appErr, ok := apperror.As(c.Errors.Last().Err); ok {
		c.JSON(appErr.Status(), gin.H{"message": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"errors": c.Errors.Last().Error()})
}

func newTestRouter(codec *jwt.Codec, sessions SessionStore, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(statusFromErrors)
	handlers := append([]gin.HandlerFunc{SessionMiddleware(codec, sessions)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": id.ID.String(), "role": id.Role, "username": id.Username})
	})
	r.GET("/protected", handlers...)
	return r
}

func doRequest(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionMiddleware(t *testing.T) {
	codec := jwt.NewCodec(jwt.Config{Secret: "middleware-secret", TTL: time.Hour})
	userID := uuid.New()
	token, err := codec.Issue(jwt.Subject{ID: userID, Role: string(models.RoleUser), Username: "player_1"})
	require.NoError(t, err)

	sessions := &fakeSessions{tokens: map[uuid.UUID]string{userID: token}}
	r := newTestRouter(codec, sessions)

	t.Run("missing token", func(t *testing.T) {
		w := doRequest(r, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := doRequest(r, "garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("valid current token", func(t *testing.T) {
		w := doRequest(r, token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), "player_1")
	})

	t.Run("bearer prefix tolerated", func(t *testing.T) {
		w := doRequest(r, "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("superseded token", func(t *testing.T) {
		newer, err := codec.Issue(jwt.Subject{ID: userID, Role: string(models.RoleUser), Username: "player_1"})
		require.NoError(t, err)
		sessions.tokens[userID] = newer
		defer func() { sessions.tokens[userID] = token }()

		assert.Equal(t, http.StatusUnauthorized, doRequest(r, token).Code)
		assert.Equal(t, http.StatusOK, doRequest(r, newer).Code)
	})

	t.Run("logged out user", func(t *testing.T) {
		sessions.tokens[userID] = ""
		defer func() { sessions.tokens[userID] = token }()
		assert.Equal(t, http.StatusUnauthorized, doRequest(r, token).Code)
	})

	t.Run("store failure is not an authentication error", func(t *testing.T) {
		failing := newTestRouter(codec, &fakeSessions{err: errors.New("db down")})
		assert.Equal(t, http.StatusInternalServerError, doRequest(failing, token).Code)
	})
}

func TestAdminMiddleware(t *testing.T) {
	codec := jwt.NewCodec(jwt.Config{Secret: "middleware-secret", TTL: time.Hour})
	adminID, userID := uuid.New(), uuid.New()
	adminToken, err := codec.Issue(jwt.Subject{ID: adminID, Role: string(models.RoleAdmin), Username: "admin"})
	require.NoError(t, err)
	userToken, err := codec.Issue(jwt.Subject{ID: userID, Role: string(models.RoleUser), Username: "player"})
	require.NoError(t, err)

	sessions := &fakeSessions{tokens: map[uuid.UUID]string{adminID: adminToken, userID: userToken}}
	r := newTestRouter(codec, sessions, AdminMiddleware("Admins only"))

	assert.Equal(t, http.StatusOK, doRequest(r, adminToken).Code)

	w := doRequest(r, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Admins only")
}
