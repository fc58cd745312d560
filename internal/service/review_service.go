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

const (
	msgReviewNotOwned     = "You are not allowed to review this game because you do not own it"
	msgReviewDuplicate    = "You are not allowed to review this game again, edit your previous review to change the review"
	msgReviewNotFound     = "Invalid game id or invalid review id"
	msgInvalidReviewID    = "Invalid review id"
	msgReviewEditDenied   = "Only review author can edit this review"
	msgReviewDeleteDenied = "you are not authorized to delete this review"
)

// region --- DTOs ---

// ReviewInput is the payload for writing or editing a review.
type ReviewInput struct {
	Rating *float64 `json:"rating" validate:"required,min=1,max=5,decimal2" example:"4.5"`
	Review string   `json:"review" validate:"required,min=10,max=1000" example:"Tight controls and a haunting soundtrack."`
}

// ReviewResponse is the full projection of a review.
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	GameID    uuid.UUID `json:"gameId"`
	Rating    float64   `json:"rating" example:"4.5"`
	Review    string    `json:"review" example:"Tight controls and a haunting soundtrack."`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GameReview is a review as listed under its game.
type GameReview struct {
	Rating    float64   `json:"rating" example:"4.5"`
	Review    string    `json:"review" example:"Tight controls and a haunting soundtrack."`
	CreatedAt time.Time `json:"createdAt"`
	Username  string    `json:"username" example:"player_one"`
}

// GameReviewsResponse is every review of a game with the average rating.
// GameRating is null while the game has no reviews.
type GameReviewsResponse struct {
	GameID      uuid.UUID    `json:"gameId"`
	GameName    string       `json:"gameName" example:"Hollow Knight"`
	GameRating  *float64     `json:"gameRating" example:"4.5"`
	TotalReview int          `json:"totalReview" example:"1"`
	Reviews     []GameReview `json:"reviews"`
}

func newReviewResponse(r models.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		GameID:    r.GameID,
		Rating:    r.Rating,
		Review:    r.Review,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// endregion

// ReviewService manages game reviews. Only owners of a game may review it, once.
type ReviewService struct {
	db       *gorm.DB
	validate *validation.Validator
	games    *GameService
	library  *LibraryService
}

func NewReviewService(db *gorm.DB, v *validation.Validator, games *GameService, library *LibraryService) *ReviewService {
	return &ReviewService{db: db, validate: v, games: games, library: library}
}

// Create posts the caller's review of a game they own.
func (s *ReviewService) Create(ctx context.Context, id auth.Identity, rawGameID string, in ReviewInput) (*ReviewResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	gameID, _ := parseID(rawGameID)
	owned, err := s.library.Owns(ctx, id.ID, gameID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, apperror.NewAuthorization(msgReviewNotOwned)
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND game_id = ?", id.ID, gameID).
		Count(&count).Error
	if err != nil {
		return nil, storeError("review", "count reviews", err)
	}
	if count > 0 {
		return nil, apperror.NewConflict(msgReviewDuplicate)
	}

	review := models.Review{
		GameID: gameID,
		UserID: id.ID,
		Rating: *in.Rating,
		Review: in.Review,
	}
	if err := s.db.WithContext(ctx).Omit("User").Create(&review).Error; err != nil {
		return nil, conflictOr("review", "create review", msgReviewDuplicate, err)
	}

	resp := newReviewResponse(review)
	return &resp, nil
}

// Get returns one review of a game.
func (s *ReviewService) Get(ctx context.Context, rawGameID, rawReviewID string) (*ReviewResponse, error) {
	gameID, okGame := parseID(rawGameID)
	reviewID, okReview := parseID(rawReviewID)
	if !okGame || !okReview {
		return nil, apperror.NewNotFound(msgReviewNotFound)
	}

	review, err := s.find(ctx, gameID, reviewID, msgReviewNotFound)
	if err != nil {
		return nil, err
	}
	resp := newReviewResponse(*review)
	return &resp, nil
}

// List returns every review of a game, oldest first, and their average rating.
func (s *ReviewService) List(ctx context.Context, rawGameID string) (*GameReviewsResponse, error) {
	gameID, ok := parseID(rawGameID)
	if !ok {
		return nil, apperror.NewNotFound(msgInvalidGameID)
	}
	game, err := s.games.find(ctx, gameID, msgInvalidGameID)
	if err != nil {
		return nil, err
	}

	var reviews []models.Review
	err = s.db.WithContext(ctx).
		Preload("User").
		Where("game_id = ?", gameID).
		Order("created_at, id").
		Find(&reviews).Error
	if err != nil {
		return nil, storeError("review", "list reviews", err)
	}

	items := mapItems(reviews, func(r models.Review) GameReview {
		return GameReview{Rating: r.Rating, Review: r.Review, CreatedAt: r.CreatedAt, Username: r.User.Username}
	})
	return &GameReviewsResponse{
		GameID:      game.ID,
		GameName:    game.Name,
		GameRating:  AverageRating(reviews),
		TotalReview: len(items),
		Reviews:     items,
	}, nil
}

// AverageRating is the arithmetic mean of the ratings, or nil when there are none.
func AverageRating(reviews []models.Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := sum / float64(len(reviews))
	return &avg
}

// Edit replaces the rating and text of the caller's own review.
func (s *ReviewService) Edit(ctx context.Context, id auth.Identity, rawGameID, rawReviewID string, in ReviewInput) (*ReviewResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	review, err := s.locate(ctx, rawGameID, rawReviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != id.ID {
		return nil, apperror.NewAuthorization(msgReviewEditDenied)
	}

	review.Rating = *in.Rating
	review.Review = in.Review
	err = s.db.WithContext(ctx).Model(review).
		Select("rating", "review", "updated_at").
		Updates(review).Error
	if err != nil {
		return nil, storeError("review", "update review", err)
	}

	resp := newReviewResponse(*review)
	return &resp, nil
}

// Delete removes a review. Its author and ADMIN may delete it.
func (s *ReviewService) Delete(ctx context.Context, id auth.Identity, rawGameID, rawReviewID string) error {
	review, err := s.locate(ctx, rawGameID, rawReviewID)
	if err != nil {
		return err
	}
	if review.UserID != id.ID && !id.IsAdmin() {
		return apperror.NewAuthorization(msgReviewDeleteDenied)
	}

	if err := s.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", review.ID).Error; err != nil {
		return storeError("review", "delete review", err)
	}
	return nil
}

// locate resolves a review under its game, reporting which of the two is missing.
func (s *ReviewService) locate(ctx context.Context, rawGameID, rawReviewID string) (*models.Review, error) {
	gameID, ok := parseID(rawGameID)
	if !ok {
		return nil, apperror.NewNotFound(msgInvalidGameID)
	}
	exists, err := s.games.Exists(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NewNotFound(msgInvalidGameID)
	}

	reviewID, ok := parseID(rawReviewID)
	if !ok {
		return nil, apperror.NewNotFound(msgInvalidReviewID)
	}
	return s.find(ctx, gameID, reviewID, msgInvalidReviewID)
}

func (s *ReviewService) find(ctx context.Context, gameID, reviewID uuid.UUID, notFound string) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).
		Where("id = ? AND game_id = ?", reviewID, gameID).
		First(&review).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NewNotFound("%s", notFound)
		}
		return nil, storeError("review", "find review", err)
	}
	return &review, nil
}
