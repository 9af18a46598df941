package search

import (
	"context"

	"github.com/planetaagua/storefront/internal/models"
)

const (
	defaultSize = 10
	maxSize     = 100
)

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

// Calculate turns 1-based page/size query params into an offset and limit.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxSize {
		size = defaultSize
	}
	from = (page - 1) * size
	return from, size
}
