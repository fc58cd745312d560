package handler

import (
	"strconv"

	"gamestore/backend/internal/apperror"
	"gamestore/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// PaginationMeta defines the structure for pagination metadata.
type PaginationMeta struct {
	TotalItems  int64 `json:"total_items" example:"5"`
	TotalPages  int   `json:"total_pages" example:"3"`
	CurrentPage int   `json:"current_page" example:"1"`
	PageSize    int   `json:"page_size" example:"2"`
}

func newPaginationMeta[T any](r service.PageResult[T]) *PaginationMeta {
	return &PaginationMeta{
		TotalItems:  r.TotalItems,
		TotalPages:  r.TotalPages(),
		CurrentPage: r.Page.Number,
		PageSize:    r.Page.Size,
	}
}

// paginated wraps one page of a list in the response envelope.
func paginated[T any](msg string, r service.PageResult[T]) Response {
	return Response{Message: msg, Data: r.Items, Meta: newPaginationMeta(r)}
}

// parsePage reads the page and limit query parameters. Absent parameters take the
// defaults; present ones must be in range.
func parsePage(c *gin.Context) (service.Page, error) {
	page := service.DefaultPage()

	if raw, ok := c.GetQuery("page"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > service.MaxPageNumber {
			return page, apperror.NewValidation("Invalid page value")
		}
		page.Number = n
	}

	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > service.MaxPageSize {
			return page, apperror.NewValidation("Invalid limit value")
		}
		page.Size = n
	}

	return page, nil
}
