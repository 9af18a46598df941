package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/planetaagua/storefront/internal/models"
	"github.com/planetaagua/storefront/internal/repo"
	"github.com/planetaagua/storefront/internal/search"
)

type CatalogService struct {
	Products repo.Repository[models.Product]
	Search   search.Searcher
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.Products.Find(ctx, nil, repo.OrderBy("id asc"))
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Products.FindOne(ctx, repo.Filter{"id": id})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

type ProductPage struct {
	Items []models.Product `json:"items"`
	Meta  PageMeta         `json:"meta"`
}

type PageMeta struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (*ProductPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: q required", ErrValidation)
	}
	from, limit := search.Calculate(page, size)
	total, items, err := s.Search.Search(ctx, query, from, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return &ProductPage{
		Items: items,
		Meta:  PageMeta{Page: from/limit + 1, Size: limit, Total: total},
	}, nil
}
