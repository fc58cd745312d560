package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"gamestore/backend/internal/apperror"
	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/cache"
	"gamestore/backend/internal/models"
	"gamestore/backend/internal/validation"
	"gamestore/backend/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("creates a USER account", func(t *testing.T) {
		u, err := env.users.Register(ctx, registerInput("player_one"))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, u.ID)
		assert.Equal(t, "player_one", u.Username)

		var stored models.User
		require.NoError(t, env.db.First(&stored, "id = ?", u.ID).Error)
		assert.Equal(t, models.RoleUser, stored.Role)
		assert.NotEqual(t, "Secret@123", stored.PasswordHash)
		assert.Nil(t, stored.CurrentToken)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		_, err := env.users.Register(ctx, registerInput("player_one"))
		assertKind(t, err, apperror.Conflict)
	})

	t.Run("invalid payload writes nothing", func(t *testing.T) {
		in := registerInput("player_two")
		in.Password = "weakpass"
		_, err := env.users.Register(ctx, in)
		assertKind(t, err, apperror.Validation)

		var count int64
		require.NoError(t, env.db.Model(&models.User{}).Where("username = ?", "player_two").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		in := registerInput("player_long")
		in.Password = strings.Repeat("Aa1@", 21)
		_, err := env.users.Register(ctx, in)
		assertKind(t, err, apperror.Validation)
		assert.Contains(t, err.Error(), `"password" length must be less than or equal to 72 characters long`)
	})

	t.Run("losing a registration race is a conflict", func(t *testing.T) {
		afterCount(t, env.db, "users", func() {
			require.NoError(t, env.db.Create(&models.User{
				Username:     "player_race",
				PasswordHash: "x",
				FullName:     "Racing Player",
				Email:        "race@example.com",
				Role:         models.RoleUser,
			}).Error)
		})

		_, err := env.users.Register(ctx, registerInput("player_race"))
		assertKind(t, err, apperror.Conflict)
		assert.Contains(t, err.Error(), msgUsernameTaken)
	})

	t.Run("create admin", func(t *testing.T) {
		u, err := env.users.CreateAdmin(ctx, registerInput("store_admin"))
		require.NoError(t, err)

		var stored models.User
		require.NoError(t, env.db.First(&stored, "id = ?", u.ID).Error)
		assert.True(t, stored.IsAdmin())
	})
}

func TestUserService_LoginLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.identity(t, "player_one", models.RoleUser)

	t.Run("wrong password and unknown user share a message", func(t *testing.T) {
		_, errPass := env.users.Login(ctx, LoginInput{Username: "player_one", Password: "Wrong@1234"})
		_, errUser := env.users.Login(ctx, LoginInput{Username: "nobody_here", Password: "Secret@123"})
		assertKind(t, errPass, apperror.Authentication)
		assertKind(t, errUser, apperror.Authentication)
		assert.Equal(t, errPass.Error(), errUser.Error())
	})

	first, err := env.users.Login(ctx, LoginInput{Username: "player_one", Password: "Secret@123"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, me.ID, first.ID)

	current, err := env.users.CurrentToken(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Token, current)

	t.Run("second login supersedes the first", func(t *testing.T) {
		second, err := env.users.Login(ctx, LoginInput{Username: "player_one", Password: "Secret@123"})
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)

		current, err := env.users.CurrentToken(ctx, me.ID)
		require.NoError(t, err)
		assert.Equal(t, second.Token, current)
	})

	t.Run("logout clears the session and revokes the cached token", func(t *testing.T) {
		require.NoError(t, env.users.Logout(ctx, me))

		cached, found, _ := env.cache.Get(ctx, me.ID)
		assert.True(t, found)
		assert.Equal(t, cache.Revoked, cached)

		current, err := env.users.CurrentToken(ctx, me.ID)
		require.NoError(t, err)
		assert.Empty(t, current)
	})

	t.Run("unknown user has no token", func(t *testing.T) {
		current, err := env.users.CurrentToken(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, current)
	})
}

func TestUserService_CurrentTokenFallsBackToDatabase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.identity(t, "player_one", models.RoleUser)

	login, err := env.users.Login(ctx, LoginInput{Username: "player_one", Password: "Secret@123"})
	require.NoError(t, err)
	require.NoError(t, env.cache.Delete(ctx, me.ID))

	current, err := env.users.CurrentToken(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, login.Token, current)

	cached, found, _ := env.cache.Get(ctx, me.ID)
	assert.True(t, found)
	assert.Equal(t, login.Token, cached)
}

func TestUserService_CurrentTokenFillLosesToSessionChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.identity(t, "player_one", models.RoleUser)
	creds := LoginInput{Username: "player_one", Password: "Secret@123"}

	tokens := jwt.NewCodec(jwt.Config{Secret: "service-test-secret", TTL: time.Hour})
	racy := &interleavingCache{memoryCache: newMemoryCache()}
	users := NewUserService(env.db, validation.New(), auth.NewBcryptHasher(bcrypt.MinCost), tokens, racy, zap.NewNop().Sugar())

	t.Run("logout between load and fill", func(t *testing.T) {
		login, err := users.Login(ctx, creds)
		require.NoError(t, err)
		require.NoError(t, racy.Delete(ctx, me.ID))

		racy.beforeFill = func() { require.NoError(t, users.Logout(ctx, me)) }
		inFlight, err := users.CurrentToken(ctx, me.ID)
		require.NoError(t, err)
		assert.Equal(t, login.Token, inFlight)

		current, err := users.CurrentToken(ctx, me.ID)
		require.NoError(t, err)
		assert.Empty(t, current, "token accepted after logout")
	})

	t.Run("new login between load and fill", func(t *testing.T) {
		first, err := users.Login(ctx, creds)
		require.NoError(t, err)
		require.NoError(t, racy.Delete(ctx, me.ID))

		var second *LoginResponse
		racy.beforeFill = func() {
			second, err = users.Login(ctx, creds)
			require.NoError(t, err)
		}
		inFlight, err := users.CurrentToken(ctx, me.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Token, inFlight)

		current, err := users.CurrentToken(ctx, me.ID)
		require.NoError(t, err)
		assert.Equal(t, second.Token, current)
	})

	t.Run("deleted account stays revoked", func(t *testing.T) {
		_, err := users.Login(ctx, creds)
		require.NoError(t, err)
		require.NoError(t, racy.Delete(ctx, me.ID))

		racy.beforeFill = func() { require.NoError(t, users.Delete(ctx, me, me.ID.String())) }
		_, err = users.CurrentToken(ctx, me.ID)
		require.NoError(t, err)

		current, err := users.CurrentToken(ctx, me.ID)
		require.NoError(t, err)
		assert.Empty(t, current)
	})
}

func TestUserService_ReadAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.identity(t, "store_admin", models.RoleAdmin)
	alice := env.identity(t, "alice_a", models.RoleUser)
	bob := env.identity(t, "bob_b", models.RoleUser)

	t.Run("list is admin only", func(t *testing.T) {
		_, err := env.users.List(ctx, alice, DefaultPage())
		assertKind(t, err, apperror.Authorization)

		page, err := env.users.List(ctx, admin, Page{Number: 1, Size: 2})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.EqualValues(t, 3, page.TotalItems)
		assert.Equal(t, 2, page.TotalPages())
	})

	t.Run("self and admin may read a profile", func(t *testing.T) {
		u, err := env.users.Get(ctx, alice, alice.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "alice_a", u.Username)

		_, err = env.users.Get(ctx, admin, alice.ID.String())
		require.NoError(t, err)
	})

	t.Run("other users may not", func(t *testing.T) {
		_, err := env.users.Get(ctx, bob, alice.ID.String())
		assertKind(t, err, apperror.Authorization)
	})

	t.Run("missing profile", func(t *testing.T) {
		_, err := env.users.Get(ctx, admin, uuid.NewString())
		assertKind(t, err, apperror.NotFound)

		_, err = env.users.Get(ctx, admin, "not-a-uuid")
		assertKind(t, err, apperror.NotFound)
	})
}

func TestUserService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.identity(t, "store_admin", models.RoleAdmin)
	alice := env.identity(t, "alice_a", models.RoleUser)
	bob := env.identity(t, "bob_b", models.RoleUser)

	t.Run("other non-admin is forbidden", func(t *testing.T) {
		_, err := env.users.Update(ctx, bob, alice.ID.String(), UpdateUserInput{FullName: ptr("Bob Was Here")})
		assertKind(t, err, apperror.Authorization)
	})

	t.Run("self edit changes only given fields", func(t *testing.T) {
		u, err := env.users.Update(ctx, alice, alice.ID.String(), UpdateUserInput{Email: ptr("alice@new.example")})
		require.NoError(t, err)
		assert.Equal(t, "alice@new.example", u.Email)
		assert.Equal(t, "alice_a", u.Username)
		assert.Equal(t, "Test Player", u.FullName)
	})

	t.Run("admin edit", func(t *testing.T) {
		u, err := env.users.Update(ctx, admin, alice.ID.String(), UpdateUserInput{FullName: ptr("Alice Liddell")})
		require.NoError(t, err)
		assert.Equal(t, "Alice Liddell", u.FullName)

		var stored models.User
		require.NoError(t, env.db.First(&stored, "id = ?", alice.ID).Error)
		assert.Equal(t, "Alice Liddell", stored.FullName)
		assert.Equal(t, "alice@new.example", stored.Email)
	})

	t.Run("username taken by another account", func(t *testing.T) {
		_, err := env.users.Update(ctx, alice, alice.ID.String(), UpdateUserInput{Username: ptr("bob_b")})
		assertKind(t, err, apperror.Conflict)
	})

	t.Run("losing a rename race is a conflict", func(t *testing.T) {
		afterCount(t, env.db, "users", func() {
			require.NoError(t, env.db.Create(&models.User{
				Username:     "carol_c",
				PasswordHash: "x",
				FullName:     "Carol Racer",
				Email:        "carol@example.com",
				Role:         models.RoleUser,
			}).Error)
		})

		_, err := env.users.Update(ctx, alice, alice.ID.String(), UpdateUserInput{Username: ptr("carol_c")})
		assertKind(t, err, apperror.Conflict)

		var stored models.User
		require.NoError(t, env.db.First(&stored, "id = ?", alice.ID).Error)
		assert.NotEqual(t, "carol_c", stored.Username)
	})

	t.Run("keeping your own username is fine", func(t *testing.T) {
		_, err := env.users.Update(ctx, alice, alice.ID.String(), UpdateUserInput{Username: ptr("alice_a")})
		require.NoError(t, err)
	})

	t.Run("invalid field", func(t *testing.T) {
		_, err := env.users.Update(ctx, alice, alice.ID.String(), UpdateUserInput{Email: ptr("nope")})
		assertKind(t, err, apperror.Validation)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := env.users.Update(ctx, admin, uuid.NewString(), UpdateUserInput{FullName: ptr("Nobody Here")})
		assertKind(t, err, apperror.NotFound)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.identity(t, "store_admin", models.RoleAdmin)
	alice := env.identity(t, "alice_a", models.RoleUser)

	in := ChangePasswordInput{OldPassword: "Secret@123", NewPassword: "N3w_Secret"}

	t.Run("admin cannot change another account's password", func(t *testing.T) {
		err := env.users.ChangePassword(ctx, admin, alice.ID.String(), in)
		assertKind(t, err, apperror.Authorization)
	})

	t.Run("wrong old password", func(t *testing.T) {
		err := env.users.ChangePassword(ctx, alice, alice.ID.String(), ChangePasswordInput{OldPassword: "Wrong@1234", NewPassword: "N3w_Secret"})
		assertKind(t, err, apperror.Authentication)
	})

	t.Run("weak new password", func(t *testing.T) {
		err := env.users.ChangePassword(ctx, alice, alice.ID.String(), ChangePasswordInput{OldPassword: "Secret@123", NewPassword: "weakpassword"})
		assertKind(t, err, apperror.Validation)
	})

	t.Run("new password longer than bcrypt accepts", func(t *testing.T) {
		err := env.users.ChangePassword(ctx, alice, alice.ID.String(), ChangePasswordInput{OldPassword: "Secret@123", NewPassword: strings.Repeat("Aa1@", 21)})
		assertKind(t, err, apperror.Validation)
	})

	t.Run("self change", func(t *testing.T) {
		require.NoError(t, env.users.ChangePassword(ctx, alice, alice.ID.String(), in))

		_, err := env.users.Login(ctx, LoginInput{Username: "alice_a", Password: "Secret@123"})
		assertKind(t, err, apperror.Authentication)
		_, err = env.users.Login(ctx, LoginInput{Username: "alice_a", Password: "N3w_Secret"})
		require.NoError(t, err)
	})
}

func TestUserService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.identity(t, "store_admin", models.RoleAdmin)
	alice := env.identity(t, "alice_a", models.RoleUser)
	bob := env.identity(t, "bob_b", models.RoleUser)

	t.Run("other non-admin is forbidden", func(t *testing.T) {
		err := env.users.Delete(ctx, bob, alice.ID.String())
		assertKind(t, err, apperror.Authorization)
	})

	t.Run("admin deletes the target, not themselves", func(t *testing.T) {
		g := env.game(t, admin, "Deleted Owner Game", 5)
		_, err := env.library.Buy(ctx, alice, BuyInput{GameID: g.ID.String()})
		require.NoError(t, err)

		require.NoError(t, env.users.Delete(ctx, admin, alice.ID.String()))

		var count int64
		require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", admin.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
		require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", alice.ID).Count(&count).Error)
		assert.Zero(t, count)
		require.NoError(t, env.db.Model(&models.Library{}).Where("user_id = ?", alice.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("self delete", func(t *testing.T) {
		require.NoError(t, env.users.Delete(ctx, bob, bob.ID.String()))
		err := env.users.Delete(ctx, admin, bob.ID.String())
		assertKind(t, err, apperror.NotFound)
	})
}
