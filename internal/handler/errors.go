package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gamestore/backend/internal/apperror"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/samber/oops"
	"go.uber.org/zap"
)

// ErrorHandler turns the last error attached to the request into a response.
// Classified errors become {message} with their status; anything else is logged
// and reported as a 500 with {errors}.
func ErrorHandler(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		if appErr, ok := apperror.As(err); ok {
			c.JSON(appErr.Status(), ErrorResponse{Message: appErr.Message})
			return
		}

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err.Error(),
		}
		if oopsErr, ok := oops.AsOops(err); ok {
			fields = append(fields, "code", oopsErr.Code(), "domain", oopsErr.Domain(), "context", oopsErr.Context())
		}
		log.Errorw("request failed", fields...)

		c.JSON(http.StatusInternalServerError, InternalErrorResponse{Errors: err.Error()})
	}
}

// NotFound answers requests for routes that do not exist.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Message: fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.Path)})
}

func init() {
	// gin's binding settings are process-wide. Every endpoint rejects payload keys it
	// does not know, so the flag is set once when the package loads.
	binding.EnableDecoderDisallowUnknownFields = true
}

// bindJSON decodes the request body into dst. An empty body decodes as an empty object
// so that missing fields are reported by validation.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperror.NewValidation("%s", describeBindError(err))
}

func describeBindError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%q must be a %s", typeErr.Field, jsonKind(typeErr.Type.Kind().String()))
	}

	msg := err.Error()
	if field, ok := strings.CutPrefix(msg, "json: unknown field "); ok {
		return fmt.Sprintf("%s is not allowed", field)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "request body is not valid JSON"
	}
	return msg
}

func jsonKind(goKind string) string {
	switch goKind {
	case "float32", "float64", "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return "number"
	case "bool":
		return "boolean"
	case "string":
		return "string"
	case "struct", "map":
		return "object"
	case "slice", "array":
		return "array"
	default:
		return goKind
	}
}
