package handler

import (
	"net/http"

	"gamestore/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// ReviewEnvelope is the documented body of single-review responses.
type ReviewEnvelope struct {
	Message string                 `json:"message" example:"Reviews retrieved successfully"`
	Data    service.ReviewResponse `json:"data"`
}

// GameReviewsEnvelope is the documented body of a game's review list.
type GameReviewsEnvelope struct {
	Message string                      `json:"message" example:"Success retrieved all game reviews"`
	Data    service.GameReviewsResponse `json:"data"`
}

// endregion

// ReviewHandler serves game reviews.
type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create godoc
// @Summary      Review a game
// @Description  Posts the caller's review of a game they own. One review per game.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        gameId path string              true "Game ID"
// @Param        input  body service.ReviewInput true "Review"
// @Success      201 {object} ReviewEnvelope
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Game not owned"
// @Failure      409 {object} ErrorResponse "Already reviewed"
// @Router       /games/{gameId}/reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var input service.ReviewInput
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), id, c.Param("gameId"), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, withData("Review created successfully", review))
}

// Get godoc
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Param        gameId   path string true "Game ID"
// @Param        reviewId path string true "Review ID"
// @Success      200 {object} ReviewEnvelope
// @Failure      404 {object} ErrorResponse
// @Router       /games/{gameId}/reviews/{reviewId} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
	review, err := h.reviews.Get(c.Request.Context(), c.Param("gameId"), c.Param("reviewId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, withData("Reviews retrieved successfully", review))
}

// List godoc
// @Summary      List a game's reviews
// @Description  Returns every review of a game and the average rating, null when there are none.
// @Tags         reviews
// @Produce      json
// @Param        gameId path string true "Game ID"
// @Success      200 {object} GameReviewsEnvelope
// @Failure      404 {object} ErrorResponse
// @Router       /games/{gameId}/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.reviews.List(c.Request.Context(), c.Param("gameId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, withData("Success retrieved all game reviews", reviews))
}

// Edit godoc
// @Summary      Edit a review
// @Description  Replaces the rating and text of the caller's own review.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        gameId   path string              true "Game ID"
// @Param        reviewId path string              true "Review ID"
// @Param        input    body service.ReviewInput true "Review"
// @Success      200 {object} ReviewEnvelope
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Not the author"
// @Failure      404 {object} ErrorResponse
// @Router       /games/{gameId}/reviews/{reviewId} [put]
func (h *ReviewHandler) Edit(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var input service.ReviewInput
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	review, err := h.reviews.Edit(c.Request.Context(), id, c.Param("gameId"), c.Param("reviewId"), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, withData("Success edit game review", review))
}

// Delete godoc
// @Summary      Delete a review
// @Description  The author and ADMIN may delete a review.
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        gameId   path string true "Game ID"
// @Param        reviewId path string true "Review ID"
// @Success      200 {object} Response
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /games/{gameId}/reviews/{reviewId} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), id, c.Param("gameId"), c.Param("reviewId")); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, message("Review deleted successfully"))
}
