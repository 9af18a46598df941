package search

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/planetaagua/storefront/internal/models"
)

// StoreSearcher matches name or description with a case-insensitive LIKE.
// Used when no Elasticsearch cluster is configured.
type StoreSearcher struct {
	DB *gorm.DB
}

func (s *StoreSearcher) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	where := "LOWER(name) LIKE ? OR LOWER(description) LIKE ?"

	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Product{}).Where(where, pattern, pattern).Count(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("store search count: %w", err)
	}

	items := make([]models.Product, 0, size)
	if err := s.DB.WithContext(ctx).
		Where(where, pattern, pattern).
		Order("id ASC").
		Offset(from).
		Limit(size).
		Find(&items).Error; err != nil {
		return 0, nil, fmt.Errorf("store search: %w", err)
	}
	return total, items, nil
}
