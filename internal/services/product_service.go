// internal/services/product_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/javajoker/purbeurre/internal/models"
	"github.com/javajoker/purbeurre/internal/search"
)

// ProductService serves catalog pages. Products are read-only here; only
// the import job writes them.
type ProductService struct {
	db    *gorm.DB
	index search.Index
}

func NewProductService(db *gorm.DB, index search.Index) *ProductService {
	return &ProductService{
		db:    db,
		index: index,
	}
}

func (s *ProductService) GetProduct(ctx context.Context, productID uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Categories").First(&product, productID).Error; err != nil {
		return nil, lookupError(err, "product", productID)
	}
	return &product, nil
}

// GetProductBySlug returns the oldest product with that slug. Slugs are
// derived from names and may collide.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Categories").
		Where("slug = ?", slug).
		Order("id ASC").
		First(&product).Error
	if err != nil {
		return nil, lookupError(err, "product", slug)
	}
	return &product, nil
}

// Search queries the search index. A blank query returns no hits without
// calling the index.
func (s *ProductService) Search(ctx context.Context, query string, page int) (*search.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &search.Result{
			Hits:    []search.Document{},
			Page:    1,
			PerPage: search.DefaultHitsPerPage,
		}, nil
	}

	result, err := s.index.Search(ctx, query, page, search.DefaultHitsPerPage)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}
	return result, nil
}
