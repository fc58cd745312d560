package handler

import (
	"net/http"

	"gamestore/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// PurchaseEnvelope is the documented body of a purchase.
type PurchaseEnvelope struct {
	Message string                   `json:"message" example:"Game bought successfully"`
	Data    service.PurchaseResponse `json:"data"`
}

// LibraryEnvelope is the documented body of the library list.
type LibraryEnvelope struct {
	Message string                  `json:"message" example:"Retrieved all of your game successfully"`
	Data    service.LibraryResponse `json:"data"`
}

// LibraryHandler serves purchases.
type LibraryHandler struct {
	library *service.LibraryService
}

func NewLibraryHandler(library *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

// Buy godoc
// @Summary      Buy a game
// @Description  Adds a game to the caller's library. Each game can be bought once.
// @Tags         library
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body service.BuyInput true "Game to buy"
// @Success      201 {object} PurchaseEnvelope
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      409 {object} ErrorResponse "Already owned"
// @Router       /library [post]
func (h *LibraryHandler) Buy(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var input service.BuyInput
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	purchase, err := h.library.Buy(c.Request.Context(), id, input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, withData("Game bought successfully", purchase))
}

// List godoc
// @Summary      List owned games
// @Tags         library
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} LibraryEnvelope
// @Failure      401 {object} ErrorResponse
// @Router       /library [get]
func (h *LibraryHandler) List(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	library, err := h.library.List(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, withData("Retrieved all of your game successfully", library))
}
