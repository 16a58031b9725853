// Command populate fills the catalog from Open Food Facts and rebuilds the
// search index.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/purbeurre/internal/config"
	"github.com/javajoker/purbeurre/internal/database"
	"github.com/javajoker/purbeurre/internal/logger"
	"github.com/javajoker/purbeurre/internal/openfoodfacts"
	"github.com/javajoker/purbeurre/internal/search"
	"github.com/javajoker/purbeurre/internal/services"
)

func main() {
	reindexOnly := flag.Bool("reindex-only", false, "rebuild the search index without importing")
	maxPages := flag.Int("max-pages", -1, "import at most this many pages (overrides IMPORT_MAX_PAGES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger.Setup(cfg.Log, cfg.IsProduction())

	if *maxPages >= 0 {
		cfg.Import.MaxPages = *maxPages
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	index, err := search.Open(ctx, cfg.Search)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open search index")
	}

	source := openfoodfacts.NewClient(openfoodfacts.Config{
		BaseURL:           cfg.Import.BaseURL,
		PageSize:          cfg.Import.PageSize,
		StateTag:          cfg.Import.StateTag,
		RequestsPerSecond: cfg.Import.RequestsPerSecond,
		Timeout:           time.Minute,
	})

	importer := services.NewImportService(db, source, index, services.ImportOptions{
		Concurrency: cfg.Import.Concurrency,
		MaxPages:    cfg.Import.MaxPages,
	})

	if *reindexOnly {
		indexed, err := importer.Reindex(ctx)
		if err != nil {
			logrus.WithError(err).Fatal("Reindex failed")
		}
		logrus.WithField("products", indexed).Info("Search index rebuilt")
		return
	}

	if _, err := importer.Run(ctx); err != nil {
		logrus.WithError(err).Fatal("Import failed")
	}
}
