package handler

import (
	"gamestore/backend/internal/apperror"
	"gamestore/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every successful reply.
type Response struct {
	Message string          `json:"message" example:"Game retrieved successfully"`
	Data    any             `json:"data,omitempty"`
	Meta    *PaginationMeta `json:"meta,omitempty"`
}

// ErrorResponse is the body of a classified failure.
type ErrorResponse struct {
	Message string `json:"message" example:"Invalid game id"`
}

// InternalErrorResponse is the body of an unexpected failure.
type InternalErrorResponse struct {
	Errors string `json:"errors" example:"connection refused"`
}

func message(msg string) Response {
	return Response{Message: msg}
}

func withData(msg string, data any) Response {
	return Response{Message: msg, Data: data}
}

// identity returns the caller attached by the session middleware. When it is missing the
// request is failed with an AuthenticationError.
func identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		_ = c.Error(apperror.NewAuthentication("You need to sign in to access this resource"))
	}
	return id, ok
}
