// internal/services/import_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/javajoker/purbeurre/internal/database"
	"github.com/javajoker/purbeurre/internal/models"
	"github.com/javajoker/purbeurre/internal/openfoodfacts"
	"github.com/javajoker/purbeurre/internal/search"
)

const reindexBatchSize = 500

// CatalogSource yields pages of products to import.
type CatalogSource interface {
	FetchPage(ctx context.Context, page int) (*openfoodfacts.SearchPage, error)
	LastPage(count int) int
}

type ImportOptions struct {
	Concurrency int
	MaxPages    int // 0 imports every page
}

type ImportStats struct {
	Pages             int           `json:"pages"`
	ProductsSeen      int           `json:"products_seen"`
	ProductsSkipped   int           `json:"products_skipped"`
	ProductsCreated   int           `json:"products_created"`
	CategoriesCreated int           `json:"categories_created"`
	Indexed           int           `json:"indexed"`
	Duration          time.Duration `json:"duration"`
}

// ImportService fills the catalog from an external source and rebuilds the
// search index. Pages are fetched concurrently and written by a single
// goroutine, one transaction per page.
type ImportService struct {
	db     *gorm.DB
	source CatalogSource
	index  search.Index
	opts   ImportOptions
}

func NewImportService(db *gorm.DB, source CatalogSource, index search.Index, opts ImportOptions) *ImportService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &ImportService{
		db:     db,
		source: source,
		index:  index,
		opts:   opts,
	}
}

func (s *ImportService) Run(ctx context.Context) (*ImportStats, error) {
	start := time.Now()
	stats := &ImportStats{}

	first, err := s.source.FetchPage(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	lastPage := s.source.LastPage(int(first.Count))
	if s.opts.MaxPages > 0 && lastPage > s.opts.MaxPages {
		lastPage = s.opts.MaxPages
	}

	logrus.WithFields(logrus.Fields{
		"count":       int(first.Count),
		"pages":       lastPage,
		"concurrency": s.opts.Concurrency,
	}).Info("Starting catalog import")

	pages := make(chan *openfoodfacts.SearchPage, s.opts.Concurrency)
	pages <- first

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(pages)

		fetchers, fctx := errgroup.WithContext(gctx)
		fetchers.SetLimit(s.opts.Concurrency)
		for page := 2; page <= lastPage; page++ {
			if fctx.Err() != nil {
				break
			}
			page := page
			fetchers.Go(func() error {
				p, err := s.source.FetchPage(fctx, page)
				if err != nil {
					return fmt.Errorf("failed to fetch page %d: %w", page, err)
				}
				select {
				case pages <- p:
					return nil
				case <-fctx.Done():
					return fctx.Err()
				}
			})
		}
		return fetchers.Wait()
	})

	g.Go(func() error {
		for page := range pages {
			if err := s.savePage(gctx, page, stats); err != nil {
				return err
			}
			stats.Pages++
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}

	indexed, err := s.Reindex(ctx)
	if err != nil {
		return stats, err
	}
	stats.Indexed = indexed
	stats.Duration = time.Since(start)

	logrus.WithFields(logrus.Fields{
		"pages":              stats.Pages,
		"products_created":   stats.ProductsCreated,
		"categories_created": stats.CategoriesCreated,
		"products_skipped":   stats.ProductsSkipped,
		"indexed":            stats.Indexed,
		"duration":           stats.Duration.String(),
	}).Info("Catalog import finished")

	return stats, nil
}

func (s *ImportService) savePage(ctx context.Context, page *openfoodfacts.SearchPage, stats *ImportStats) error {
	return database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		for i := range page.Products {
			stats.ProductsSeen++
			created, categoriesCreated, err := s.saveProduct(tx, &page.Products[i])
			if errors.Is(err, errSkipProduct) {
				stats.ProductsSkipped++
				continue
			}
			if err != nil {
				return err
			}
			if created {
				stats.ProductsCreated++
			}
			stats.CategoriesCreated += categoriesCreated
		}
		return nil
	})
}

var errSkipProduct = errors.New("product skipped")

// saveProduct gets or creates the product by slug and each of its
// categories by tag, then links them.
func (s *ImportService) saveProduct(tx *gorm.DB, p *openfoodfacts.Product) (bool, int, error) {
	name := strings.TrimSpace(p.ProductName)
	grade := models.NutriscoreGrade(strings.ToLower(strings.TrimSpace(p.NutriscoreGrade)))
	productSlug := slug.Make(name)
	if name == "" || productSlug == "" || !grade.Valid() {
		return false, 0, errSkipProduct
	}

	var product models.Product
	res := tx.Where(models.Product{Slug: productSlug}).
		Attrs(models.Product{
			Name:            name,
			GenericName:     optional(p.GenericName),
			Brands:          optional(p.Brands),
			Stores:          optional(p.Stores),
			NutriscoreGrade: grade,
			URL:             optional(p.URL),
			ImageURL:        optional(p.ImageURL),
			ImageSmallURL:   optional(p.ImageSmallURL),
		}).
		FirstOrCreate(&product)
	if res.Error != nil {
		return false, 0, fmt.Errorf("failed to save product %q: %w", name, res.Error)
	}
	created := res.RowsAffected > 0

	pairs := p.CategoryPairs()
	categories := make([]models.Category, 0, len(pairs))
	categoriesCreated := 0
	for _, pair := range pairs {
		var category models.Category
		res := tx.Where(models.Category{Tag: pair[1]}).
			Attrs(models.Category{Name: pair[0]}).
			FirstOrCreate(&category)
		if res.Error != nil {
			return false, 0, fmt.Errorf("failed to save category %q: %w", pair[1], res.Error)
		}
		if res.RowsAffected > 0 {
			categoriesCreated++
		}
		categories = append(categories, category)
	}

	if len(categories) > 0 {
		if err := tx.Model(&product).Association("Categories").Append(categories); err != nil {
			return false, 0, fmt.Errorf("failed to link categories of %q: %w", name, err)
		}
	}

	return created, categoriesCreated, nil
}

// Reindex pushes every product to the search index in batches.
func (s *ImportService) Reindex(ctx context.Context) (int, error) {
	indexed := 0
	var batch []models.Product

	err := s.db.WithContext(ctx).
		Preload("Categories").
		Order("id ASC").
		FindInBatches(&batch, reindexBatchSize, func(tx *gorm.DB, _ int) error {
			docs := make([]search.Document, 0, len(batch))
			for i := range batch {
				docs = append(docs, search.NewDocument(&batch[i]))
			}
			if err := s.index.BulkIndex(ctx, docs); err != nil {
				return err
			}
			indexed += len(docs)
			return nil
		}).Error
	if err != nil {
		return indexed, fmt.Errorf("failed to reindex products: %w", err)
	}
	return indexed, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
