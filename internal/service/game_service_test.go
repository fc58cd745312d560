package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gamestore/backend/internal/apperror"
	"gamestore/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.identity(t, "store_admin", models.RoleAdmin)
	player := env.identity(t, "player_one", models.RoleUser)

	valid := GameInput{Name: "Hollow Knight", Price: ptr(14.99), Description: "Descend into a ruined kingdom."}

	t.Run("non-admin cannot write regardless of payload", func(t *testing.T) {
		_, err := env.games.Upload(ctx, player, GameInput{})
		assertKind(t, err, apperror.Authorization)
		_, err = env.games.Edit(ctx, player, uuid.NewString(), GameInput{})
		assertKind(t, err, apperror.Authorization)
		err = env.games.Delete(ctx, player, "garbage")
		assertKind(t, err, apperror.Authorization)
	})

	t.Run("upload validates", func(t *testing.T) {
		_, err := env.games.Upload(ctx, admin, GameInput{Name: "Ok Name", Price: ptr(1.234), Description: "Long enough text"})
		assertKind(t, err, apperror.Validation)
		_, err = env.games.Upload(ctx, admin, GameInput{Name: "Ok Name", Description: "Long enough text"})
		assertKind(t, err, apperror.Validation)
	})

	var created *GameResponse
	t.Run("upload and get", func(t *testing.T) {
		var err error
		created, err = env.games.Upload(ctx, admin, valid)
		require.NoError(t, err)
		assert.Equal(t, "Hollow Knight", created.Name)
		assert.InDelta(t, 14.99, created.Price, 1e-9)
		assert.False(t, created.ReleasedAt.IsZero())

		got, err := env.games.Get(ctx, created.ID.String())
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("free games are allowed", func(t *testing.T) {
		free := valid
		free.Name = "Free Game"
		free.Price = ptr(0.0)
		g, err := env.games.Upload(ctx, admin, free)
		require.NoError(t, err)
		assert.Zero(t, g.Price)
	})

	t.Run("get unknown or malformed id", func(t *testing.T) {
		_, err := env.games.Get(ctx, uuid.NewString())
		assertKind(t, err, apperror.NotFound)
		_, err = env.games.Get(ctx, "123")
		assertKind(t, err, apperror.NotFound)
	})

	t.Run("edit bumps release date", func(t *testing.T) {
		later := created.ReleasedAt.Add(time.Hour)
		env.games.now = func() time.Time { return later }
		defer func() { env.games.now = time.Now }()

		edited, err := env.games.Edit(ctx, admin, created.ID.String(), GameInput{
			Name:        "Hollow Knight: Silksong",
			Price:       ptr(19.99),
			Description: "Ascend a haunted kingdom.",
		})
		require.NoError(t, err)
		assert.Equal(t, "Hollow Knight: Silksong", edited.Name)
		assert.True(t, edited.ReleasedAt.Equal(later))

		_, err = env.games.Edit(ctx, admin, uuid.NewString(), valid)
		assertKind(t, err, apperror.NotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, env.games.Delete(ctx, admin, created.ID.String()))
		assertKind(t, env.games.Delete(ctx, admin, created.ID.String()), apperror.NotFound)
		assertKind(t, env.games.Delete(ctx, admin, "garbage"), apperror.NotFound)
	})
}

func TestGameService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.identity(t, "store_admin", models.RoleAdmin)

	for i := 1; i <= 5; i++ {
		env.game(t, admin, fmt.Sprintf("Game %d", i), float64(i))
	}

	page, err := env.games.List(ctx, Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 5, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages())

	last, err := env.games.List(ctx, Page{Number: 3, Size: 2})
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)

	beyond, err := env.games.List(ctx, Page{Number: 9, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.NotNil(t, beyond.Items)
}
