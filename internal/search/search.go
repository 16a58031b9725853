// Package search indexes catalog products for full-text lookup.
package search

import (
	"context"
	"fmt"

	"github.com/javajoker/purbeurre/internal/config"
	"github.com/javajoker/purbeurre/internal/models"
)

const DefaultHitsPerPage = 6

// Document is the indexed view of a product.
type Document struct {
	ID              uint     `json:"id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	GenericName     string   `json:"generic_name,omitempty"`
	Brands          string   `json:"brands,omitempty"`
	CategoryNames   []string `json:"category_names"`
	NutriscoreGrade string   `json:"nutriscore_grade"`
	ImageURL        string   `json:"image_url,omitempty"`
	ImageSmallURL   string   `json:"image_small_url,omitempty"`
}

type Result struct {
	Hits       []Document `json:"hits"`
	TotalHits  int        `json:"total_hits"`
	TotalPages int        `json:"total_pages"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
}

// Index is implemented by every search backend. Hits are ordered by
// relevance, then nutriscore grade, then name.
type Index interface {
	Search(ctx context.Context, query string, page, perPage int) (*Result, error)
	BulkIndex(ctx context.Context, docs []Document) error
}

func NewDocument(p *models.Product) Document {
	return Document{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		GenericName:     deref(p.GenericName),
		Brands:          deref(p.Brands),
		CategoryNames:   p.CategoryNames(),
		NutriscoreGrade: string(p.NutriscoreGrade),
		ImageURL:        deref(p.ImageURL),
		ImageSmallURL:   deref(p.ImageSmallURL),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func normalizePaging(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultHitsPerPage
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

// totalPages is zero when nothing matched.
func totalPages(total, perPage int) int {
	return (total + perPage - 1) / perPage
}

// Open returns the index backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.SearchConfig) (Index, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryIndex(), nil
	case "elasticsearch":
		index, err := NewElasticsearchIndex(ctx, cfg.ElasticsearchURL, cfg.IndexName)
		if err != nil {
			return nil, err
		}
		return index, nil
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Backend)
	}
}
