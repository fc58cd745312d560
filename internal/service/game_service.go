package service

import (
	"context"
	"time"

	"gamestore/backend/internal/apperror"
	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/models"
	"gamestore/backend/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Messages shown to non-admin callers of the catalog write operations.
const (
	MsgUploadDenied = "Non-admin user cannot upload a new game"
	MsgEditDenied   = "Non-admin user cannot update game information"
	MsgDeleteDenied = "Non-admin user cannot delete game"
)

const (
	msgGameNotFound  = "Game id is invalid"
	msgInvalidGameID = "Invalid game id"
)

// region --- DTOs ---

// GameInput is the payload for uploading or editing a game.
type GameInput struct {
	Name        string   `json:"name" validate:"required,min=3,max=100,gamename" example:"Hollow Knight"`
	Price       *float64 `json:"price" validate:"required,min=0,max=9999.99,decimal2" example:"14.99"`
	Description string   `json:"description" validate:"required,min=10,max=100" example:"Descend into a ruined kingdom of insects."`
}

// GameResponse is the public projection of a catalog entry.
type GameResponse struct {
	ID          uuid.UUID `json:"id" example:"8e3cdb43-2c38-4a0e-9c1c-0d9d6a7f2f55"`
	Name        string    `json:"name" example:"Hollow Knight"`
	Description string    `json:"description" example:"Descend into a ruined kingdom of insects."`
	Price       float64   `json:"price" example:"14.99"`
	ReleasedAt  time.Time `json:"releasedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newGameResponse(g models.Game) GameResponse {
	return GameResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Price:       g.Price,
		ReleasedAt:  g.ReleasedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// endregion

// GameService manages the catalog.
type GameService struct {
	db       *gorm.DB
	validate *validation.Validator
	now      func() time.Time
}

func NewGameService(db *gorm.DB, v *validation.Validator) *GameService {
	return &GameService{db: db, validate: v, now: time.Now}
}

// Upload adds a game to the catalog. ADMIN only.
func (s *GameService) Upload(ctx context.Context, id auth.Identity, in GameInput) (*GameResponse, error) {
	if !id.IsAdmin() {
		return nil, apperror.NewAuthorization(MsgUploadDenied)
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	now := s.now()
	game := models.Game{
		Name:        in.Name,
		Price:       *in.Price,
		Description: in.Description,
		ReleasedAt:  now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(&game).Error; err != nil {
		return nil, storeError("game", "create game", err)
	}

	resp := newGameResponse(game)
	return &resp, nil
}

// Get returns one game.
func (s *GameService) Get(ctx context.Context, rawGameID string) (*GameResponse, error) {
	gameID, ok := parseID(rawGameID)
	if !ok {
		return nil, apperror.NewNotFound(msgGameNotFound)
	}

	game, err := s.find(ctx, gameID, msgGameNotFound)
	if err != nil {
		return nil, err
	}
	resp := newGameResponse(*game)
	return &resp, nil
}

// List returns a page of the catalog, oldest release first.
func (s *GameService) List(ctx context.Context, page Page) (PageResult[GameResponse], error) {
	games, err := paginate[models.Game](ctx, s.db, page, "released_at, id")
	if err != nil {
		return PageResult[GameResponse]{}, storeError("game", "list games", err)
	}
	return PageResult[GameResponse]{
		Items:      mapItems(games.Items, newGameResponse),
		TotalItems: games.TotalItems,
		Page:       games.Page,
	}, nil
}

// Edit replaces a game's details and marks it as re-released. ADMIN only.
func (s *GameService) Edit(ctx context.Context, id auth.Identity, rawGameID string, in GameInput) (*GameResponse, error) {
	if !id.IsAdmin() {
		return nil, apperror.NewAuthorization(MsgEditDenied)
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	gameID, ok := parseID(rawGameID)
	if !ok {
		return nil, apperror.NewNotFound(msgInvalidGameID)
	}
	game, err := s.find(ctx, gameID, msgInvalidGameID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	game.Name = in.Name
	game.Price = *in.Price
	game.Description = in.Description
	game.ReleasedAt = now
	game.UpdatedAt = now
	if err := s.db.WithContext(ctx).Save(game).Error; err != nil {
		return nil, storeError("game", "update game", err)
	}

	resp := newGameResponse(*game)
	return &resp, nil
}

// Delete removes a game together with its purchases and reviews. ADMIN only.
func (s *GameService) Delete(ctx context.Context, id auth.Identity, rawGameID string) error {
	if !id.IsAdmin() {
		return apperror.NewAuthorization(MsgDeleteDenied)
	}

	gameID, ok := parseID(rawGameID)
	if !ok {
		return apperror.NewNotFound(msgInvalidGameID)
	}

	result := s.db.WithContext(ctx).Delete(&models.Game{}, "id = ?", gameID)
	if result.Error != nil {
		return storeError("game", "delete game", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFound(msgInvalidGameID)
	}
	return nil
}

// Exists reports whether the catalog holds gameID.
func (s *GameService) Exists(ctx context.Context, gameID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Game{}).Where("id = ?", gameID).Count(&count).Error; err != nil {
		return false, storeError("game", "count games", err)
	}
	return count > 0, nil
}

func (s *GameService) find(ctx context.Context, gameID uuid.UUID, notFound string) (*models.Game, error) {
	var game models.Game
	if err := s.db.WithContext(ctx).First(&game, "id = ?", gameID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NewNotFound("%s", notFound)
		}
		return nil, storeError("game", "find game", err)
	}
	return &game, nil
}
