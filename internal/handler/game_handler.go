package handler

import (
	"net/http"

	"gamestore/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// GameEnvelope is the documented body of single-game responses.
type GameEnvelope struct {
	Message string               `json:"message" example:"Game retrieved successfully"`
	Data    service.GameResponse `json:"data"`
}

// PaginatedGameEnvelope is the documented body of the catalog list.
type PaginatedGameEnvelope struct {
	Message string                 `json:"message" example:"Data retrieved successfully"`
	Data    []service.GameResponse `json:"data"`
	Meta    PaginationMeta         `json:"meta"`
}

// endregion

// GameHandler serves the catalog.
type GameHandler struct {
	games *service.GameService
}

func NewGameHandler(games *service.GameService) *GameHandler {
	return &GameHandler{games: games}
}

// region --- Admin Handlers ---

// Upload godoc
// @Summary      Upload a game
// @Description  Adds a game to the catalog.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body service.GameInput true "Game Info"
// @Success      201  {object}  GameEnvelope
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /games [post]
func (h *GameHandler) Upload(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var input service.GameInput
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	game, err := h.games.Upload(c.Request.Context(), id, input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, withData("Game successfully uploaded", game))
}

// Edit godoc
// @Summary      Update a game
// @Description  Replaces a game's details and marks it as re-released.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        gameId path      string            true  "Game ID"
// @Param        input  body      service.GameInput true  "New Game Info"
// @Success      200    {object}  GameEnvelope
// @Failure      400    {object}  ErrorResponse
// @Failure      403    {object}  ErrorResponse "Admin access required"
// @Failure      404    {object}  ErrorResponse "Game not found"
// @Router       /games/{gameId} [put]
func (h *GameHandler) Edit(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var input service.GameInput
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	game, err := h.games.Edit(c.Request.Context(), id, c.Param("gameId"), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, withData("Game updated successfully", game))
}

// Delete godoc
// @Summary      Delete a game
// @Description  Deletes a game together with its purchases and reviews.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        gameId path string true "Game ID"
// @Success      200 {object} Response
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{gameId} [delete]
func (h *GameHandler) Delete(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := h.games.Delete(c.Request.Context(), id, c.Param("gameId")); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, message("Game deleted successfully"))
}

// endregion

// region --- Public Handlers ---

// Get godoc
// @Summary      Get a single game by ID
// @Tags         games
// @Produce      json
// @Param        gameId path string true "Game ID"
// @Success      200 {object} GameEnvelope
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{gameId} [get]
func (h *GameHandler) Get(c *gin.Context) {
	game, err := h.games.Get(c.Request.Context(), c.Param("gameId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, withData("Game retrieved successfully", game))
}

// List godoc
// @Summary      Get a list of games
// @Description  Retrieves a paginated list of games, oldest release first.
// @Tags         games
// @Produce      json
// @Param        page    query     int     false  "Page number" default(1)
// @Param        limit   query     int     false  "Items per page" default(10)
// @Success      200 {object} PaginatedGameEnvelope
// @Failure      400 {object} ErrorResponse "Invalid page or limit"
// @Router       /games [get]
func (h *GameHandler) List(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	games, err := h.games.List(c.Request.Context(), page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, paginated("Data retrieved successfully", games))
}

// endregion
