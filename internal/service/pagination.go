package service

import (
	"context"
	"math"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPageNumber keeps the row offset of any page representable as an int.
	MaxPageNumber = math.MaxInt / MaxPageSize
)

// Page selects a window of a list. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

// DefaultPage is the first page with the default size.
func DefaultPage() Page {
	return Page{Number: 1, Size: DefaultPageSize}
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}

// PageResult is one page of items plus the size of the whole list.
type PageResult[T any] struct {
	Items      []T
	TotalItems int64
	Page       Page
}

// TotalPages is the number of pages of Page.Size needed to hold every item.
func (r PageResult[T]) TotalPages() int {
	if r.Page.Size <= 0 {
		return 0
	}
	return (int(r.TotalItems) + r.Page.Size - 1) / r.Page.Size
}

// paginate counts the rows matched by db and loads the requested window, ordered by order.
func paginate[T any](ctx context.Context, db *gorm.DB, page Page, order string) (PageResult[T], error) {
	var total int64
	if err := db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return PageResult[T]{}, err
	}

	results := make([]T, 0, page.Size)
	if err := db.WithContext(ctx).Order(order).Offset(page.offset()).Limit(page.Size).Find(&results).Error; err != nil {
		return PageResult[T]{}, err
	}

	return PageResult[T]{Items: results, TotalItems: total, Page: page}, nil
}

func mapItems[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
