package handler

import (
	"net/http"

	"gamestore/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// UserEnvelope is the documented body of single-account responses.
type UserEnvelope struct {
	Message string               `json:"message" example:"Successfully get specific user data"`
	Data    service.UserResponse `json:"data"`
}

// LoginEnvelope is the documented body of a successful login.
type LoginEnvelope struct {
	Message string                `json:"message" example:"User logged successfully"`
	Data    service.LoginResponse `json:"data"`
}

// PaginatedUserEnvelope is the documented body of the account list.
type PaginatedUserEnvelope struct {
	Message string                 `json:"message" example:"Successfully get all users data"`
	Data    []service.UserResponse `json:"data"`
	Meta    PaginationMeta         `json:"meta"`
}

// endregion

// UserHandler serves accounts and sessions.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// region --- Auth Handlers ---

// Register godoc
// @Summary      Register a new user
// @Description  Creates a USER account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body service.RegisterInput true "Registration Info"
// @Success      201  {object}  UserEnvelope
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Username already exists"
// @Failure      500  {object}  InternalErrorResponse
// @Router       /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, withData("User successfully created", user))
}

// Login godoc
// @Summary      Log in a user
// @Description  Checks the credentials and returns a token that replaces any previous session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body service.LoginInput true "Login Info"
// @Success      200  {object}  LoginEnvelope
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  InternalErrorResponse
// @Router       /authentications [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.users.Login(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, withData("User logged successfully", result))
}

// Logout godoc
// @Summary      Log out
// @Description  Ends the caller's session. The token stops working immediately.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Failure      401  {object}  ErrorResponse
// @Router       /authentications [delete]
func (h *UserHandler) Logout(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := h.users.Logout(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, message("User successfully logged out"))
}

// endregion

// region --- User Handlers ---

// List godoc
// @Summary      List users
// @Description  Returns a page of accounts. ADMIN only.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedUserEnvelope
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	page, err := parsePage(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	users, err := h.users.List(c.Request.Context(), id, page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, paginated("Successfully get all users data", users))
}

// Get godoc
// @Summary      Get a user
// @Description  Returns one account. Callers may read themselves; ADMIN may read anyone.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "User ID"
// @Success      200 {object} UserEnvelope
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /users/{userId} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id, c.Param("userId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, withData("Successfully get specific user data", user))
}

// Update godoc
// @Summary      Update a user
// @Description  Changes username, email or full name. Omitted fields are kept.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string                  true "User ID"
// @Param        input  body service.UpdateUserInput true "Fields to change"
// @Success      200 {object} UserEnvelope
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Username already exists"
// @Router       /users/{userId} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var input service.UpdateUserInput
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, c.Param("userId"), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, withData("Successfully updated user data", user))
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Replaces the caller's own password.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string                      true "User ID"
// @Param        input  body service.ChangePasswordInput true "Old and new password"
// @Success      200 {object} Response
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse "Old password is wrong"
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /users/{userId}/password [patch]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var input service.ChangePasswordInput
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), id, c.Param("userId"), input); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, message("Successfully updated user password"))
}

// Delete godoc
// @Summary      Delete a user
// @Description  Deletes the account with its library and reviews.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "User ID"
// @Success      200 {object} Response
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /users/{userId} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id, c.Param("userId")); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, message("Successfully deleted user"))
}

// endregion
