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

const msgAlreadyOwned = "You already own this game"

// region --- DTOs ---

// BuyInput is the payload for purchasing a game.
type BuyInput struct {
	GameID string `json:"gameId" validate:"required,uuid" example:"8e3cdb43-2c38-4a0e-9c1c-0d9d6a7f2f55"`
}

// PurchaseResponse confirms a purchase.
type PurchaseResponse struct {
	GameID uuid.UUID `json:"gameId" example:"8e3cdb43-2c38-4a0e-9c1c-0d9d6a7f2f55"`
	Price  float64   `json:"price" example:"14.99"`
}

// OwnedGame is one entry of a user's library.
type OwnedGame struct {
	GameID   uuid.UUID `json:"gameId"`
	GameName string    `json:"gameName"`
}

// LibraryResponse lists the games a user owns.
type LibraryResponse struct {
	TotalGame int         `json:"totalGame" example:"1"`
	Games     []OwnedGame `json:"games"`
}

// endregion

// LibraryService records purchases.
type LibraryService struct {
	db       *gorm.DB
	validate *validation.Validator
	games    *GameService
	now      func() time.Time
}

func NewLibraryService(db *gorm.DB, v *validation.Validator, games *GameService) *LibraryService {
	return &LibraryService{db: db, validate: v, games: games, now: time.Now}
}

// Buy adds a game to the caller's library. A game can be bought once per user.
func (s *LibraryService) Buy(ctx context.Context, id auth.Identity, in BuyInput) (*PurchaseResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	gameID, ok := parseID(in.GameID)
	if !ok {
		return nil, apperror.NewValidation("%q must be a valid GUID", "gameId")
	}

	game, err := s.games.find(ctx, gameID, msgInvalidGameID)
	if err != nil {
		return nil, err
	}

	entry := models.Library{UserID: id.ID, GameID: game.ID, PurchasedAt: s.now()}
	if err := s.db.WithContext(ctx).Omit("Game").Create(&entry).Error; err != nil {
		return nil, conflictOr("library", "create library entry", msgAlreadyOwned, err)
	}

	return &PurchaseResponse{GameID: game.ID, Price: game.Price}, nil
}

// List returns the caller's library in purchase order.
func (s *LibraryService) List(ctx context.Context, id auth.Identity) (*LibraryResponse, error) {
	var entries []models.Library
	err := s.db.WithContext(ctx).
		Preload("Game").
		Where("user_id = ?", id.ID).
		Order("purchased_at, game_id").
		Find(&entries).Error
	if err != nil {
		return nil, storeError("library", "list library", err)
	}

	games := mapItems(entries, func(e models.Library) OwnedGame {
		return OwnedGame{GameID: e.Game.ID, GameName: e.Game.Name}
	})
	return &LibraryResponse{TotalGame: len(games), Games: games}, nil
}

// Owns reports whether userID has bought gameID.
func (s *LibraryService) Owns(ctx context.Context, userID, gameID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Library{}).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		Count(&count).Error
	if err != nil {
		return false, storeError("library", "count library entries", err)
	}
	return count > 0, nil
}
