package api

import (
	"context"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/config"
	"logitrack/tracker/internal/db/repositories"
	"logitrack/tracker/internal/metrics"
	"logitrack/tracker/internal/models/dtos"
	"logitrack/tracker/internal/providers"
	"logitrack/tracker/internal/services"
	"logitrack/tracker/internal/timeline"
)

// Importer runs imports; satisfied by *services.ImportService.
type Importer interface {
	RunWithID(ctx context.Context, runID string, opts services.ImportOptions, progress services.ProgressFunc) (*dtos.ImportResult, error)
}

// Searcher is satisfied by *services.SearchService.
type Searcher interface {
	Search(ctx context.Context, params dtos.SearchParams) (*dtos.SearchResult, error)
}

// DetailReader is satisfied by *services.DetailService.
type DetailReader interface {
	GetDetail(ctx context.Context, shipmentID string) (*dtos.ShipmentDetail, error)
	GetTimeline(ctx context.Context, shipmentID string) (*timeline.Timeline, error)
}

type Repositories struct {
	Import *repositories.ImportRepository
	Detail *repositories.DetailRepository
	Search *repositories.SearchRepository
}

type Services struct {
	Cache  common.CacheInterface
	Import Importer
	Search Searcher
	Detail DetailReader
}

type Dependencies struct {
	Repo      *Repositories
	Services  *Services
	Metrics   *metrics.MetricsRegistry
	BatchSize int
}

// InitDependencies wires repositories and services over the open database
// handles. Both handles share one connection pool.
func InitDependencies(
	cfg *config.Config,
	sqlDB *sqlx.DB,
	gormDB *gorm.DB,
	cache common.CacheInterface,
	provider providers.SheetProvider,
	lock common.ImportLock,
	metricsReg *metrics.MetricsRegistry,
) (*Dependencies, error) {
	repos := &Repositories{
		Import: repositories.NewImportRepository(gormDB),
		Detail: repositories.NewDetailRepository(gormDB),
		Search: repositories.NewSearchRepository(sqlDB),
	}

	engine := services.NewUpsertEngine(repos.Import, metricsReg)
	importSvc := services.NewImportService(provider, engine, lock, cache, metricsReg, services.ImportSettings{
		Feeds:         cfg.Feeds,
		Mirror:        cfg.Import.Mirror,
		MirrorCascade: cfg.Import.MirrorCascade,
	})

	svcs := &Services{
		Cache:  cache,
		Import: importSvc,
		Search: services.NewSearchService(repos.Search, cache, cfg.SearchTTL, metricsReg),
		Detail: services.NewDetailService(repos.Detail, cache, cfg.DetailTTL, metricsReg),
	}

	return &Dependencies{
		Repo:      repos,
		Services:  svcs,
		Metrics:   metricsReg,
		BatchSize: cfg.Import.BatchSize,
	}, nil
}
