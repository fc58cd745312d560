package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/cache"
	"gamestore/backend/internal/database/dbtest"
	"gamestore/backend/internal/service"
	"gamestore/backend/internal/validation"
	"gamestore/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	users  *service.UserService
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	v := validation.New()
	codec := jwt.NewCodec(jwt.Config{Secret: "handler-test-secret", TTL: time.Hour})
	log := zap.NewNop().Sugar()

	users := service.NewUserService(db, v, auth.NewBcryptHasher(bcrypt.MinCost), codec, cache.NopTokenCache{}, log)
	games := service.NewGameService(db, v)
	library := service.NewLibraryService(db, v, games)
	reviews := service.NewReviewService(db, v, games, library)

	router := NewRouter(Dependencies{
		Users:   users,
		Games:   games,
		Library: library,
		Reviews: reviews,
		Tokens:  codec,
		Log:     log,
	})
	return &testAPI{t: t, db: db, users: users, router: router}
}

type result struct {
	Code int
	Body map[string]any
	Raw  string
}

func (r result) data() map[string]any {
	d, _ := r.Body["data"].(map[string]any)
	return d
}

func (r result) message() string {
	m, _ := r.Body["message"].(string)
	return m
}

func (a *testAPI) do(method, path string, body any, token string) result {
	a.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	res := result{Code: w.Code, Raw: w.Body.String()}
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &res.Body), w.Body.String())
	}
	return res
}

func registerBody(username string) map[string]any {
	return map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"fullName": "Test Player",
		"password": "Secret@123",
	}
}

// signUp registers username over HTTP, logs in and returns the user id and token.
func (a *testAPI) signUp(username string) (string, string) {
	a.t.Helper()
	res := a.do(http.MethodPost, "/users", registerBody(username), "")
	require.Equal(a.t, http.StatusCreated, res.Code, res.Raw)
	return a.login(username)
}

// signUpAdmin creates an ADMIN the way the command line does and logs in.
func (a *testAPI) signUpAdmin(username string) (string, string) {
	a.t.Helper()
	in := service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Store Admin",
		Password: "Secret@123",
	}
	_, err := a.users.CreateAdmin(context.Background(), in)
	require.NoError(a.t, err)
	return a.login(username)
}

func (a *testAPI) login(username string) (string, string) {
	a.t.Helper()
	res := a.do(http.MethodPost, "/authentications", map[string]any{"username": username, "password": "Secret@123"}, "")
	require.Equal(a.t, http.StatusOK, res.Code, res.Raw)
	return res.data()["id"].(string), res.data()["token"].(string)
}

func (a *testAPI) uploadGame(adminToken, name string, price float64) string {
	a.t.Helper()
	res := a.do(http.MethodPost, "/games", map[string]any{
		"name":        name,
		"price":       price,
		"description": "A game uploaded by the handler tests.",
	}, adminToken)
	require.Equal(a.t, http.StatusCreated, res.Code, res.Raw)
	return res.data()["id"].(string)
}
