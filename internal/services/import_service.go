package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/config"
	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/logging"
	"logitrack/tracker/internal/metrics"
	"logitrack/tracker/internal/models/dtos"
	"logitrack/tracker/internal/providers"
	"logitrack/tracker/internal/schema"
)

// Import phases, in order. ERROR can follow any of them.
const (
	PhaseStart            = "START"
	PhaseLoadingCSV       = "LOADING_CSV"
	PhaseParallelUpsert   = "PARALLEL_UPSERT"
	PhaseSequentialUpsert = "SEQUENTIAL_UPSERT"
	PhaseMirrorDelete     = "MIRROR_DELETE"
	PhaseDone             = "DONE"
	PhaseError            = "ERROR"
)

// ImportOptions are the per-request switches of an import.
type ImportOptions struct {
	DryRun   bool
	Strict   bool
	Parallel bool
	Batch    int
}

// DefaultImportOptions returns strict, parallel, non-dry-run options.
func DefaultImportOptions(batch int) ImportOptions {
	return ImportOptions{Strict: true, Parallel: true, Batch: batch}
}

// ImportSettings are the process-level import settings.
type ImportSettings struct {
	Feeds         config.Feeds
	Mirror        bool
	MirrorCascade bool
}

// ImportService runs the sheet to database import.
type ImportService struct {
	provider providers.SheetProvider
	engine   *UpsertEngine
	lock     common.ImportLock
	cache    common.CacheInterface
	metrics  *metrics.MetricsRegistry
	settings ImportSettings
}

func NewImportService(
	provider providers.SheetProvider,
	engine *UpsertEngine,
	lock common.ImportLock,
	cache common.CacheInterface,
	m *metrics.MetricsRegistry,
	settings ImportSettings,
) *ImportService {
	return &ImportService{
		provider: provider,
		engine:   engine,
		lock:     lock,
		cache:    cache,
		metrics:  m,
		settings: settings,
	}
}

// importRun is the state of one Run call.
type importRun struct {
	id        string
	log       *zap.SugaredLogger
	mu        sync.Mutex
	progress  ProgressFunc
	phase     string
	phaseAt   time.Time
	completed []string
	persisted dtos.ImportSummary
}

func (r *importRun) emit(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.Debugw("import progress", "line", line)
	if r.progress != nil {
		r.progress(line)
	}
}

func (r *importRun) done(table string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, table)
	r.persisted.Set(table, n)
}

func (s *ImportService) enter(r *importRun, phase string) {
	s.observePhase(r)
	r.phase = phase
	r.phaseAt = time.Now()
	r.log.Infow("import phase", "phase", phase)
}

func (s *ImportService) observePhase(r *importRun) {
	if s.metrics != nil && r.phase != "" {
		s.metrics.ImportDuration.WithLabelValues(r.phase).Observe(time.Since(r.phaseAt).Seconds())
	}
}

// Run executes one import. progress may be nil. Only one import runs at a
// time; a concurrent call fails with a CONFLICT ImportError.
func (s *ImportService) Run(ctx context.Context, opts ImportOptions, progress ProgressFunc) (*dtos.ImportResult, error) {
	return s.RunWithID(ctx, uuid.NewString(), opts, progress)
}

// RunWithID is Run with a caller-chosen run id.
func (s *ImportService) RunWithID(ctx context.Context, runID string, opts ImportOptions, progress ProgressFunc) (*dtos.ImportResult, error) {
	if missing := s.settings.Feeds.Missing(); len(missing) > 0 {
		s.countRun("config_error")
		return nil, newImportError(constants.ErrCodeConfig, "", "Missing env: "+strings.Join(missing, ", "), nil)
	}

	token, err := s.lock.Acquire(ctx)
	if err != nil {
		s.countRun("conflict")
		return nil, classifyImportError("", err)
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), token); err != nil {
			logging.Warn("Failed to release import lock", "run_id", runID, "error", err)
		}
	}()

	opts.Batch = clampBatch(opts.Batch)
	run := &importRun{id: runID, log: logging.WithImport(runID), progress: progress}

	res, err := s.run(ctx, run, opts)
	if err != nil {
		s.enter(run, PhaseError)
		ie := classifyImportError("", err)
		ie.Completed = append([]string(nil), run.completed...)
		run.log.Errorw("Import failed", "kind", ie.Kind, "table", ie.Table, "error", ie.Error(), "completed", ie.Completed)
		s.countRun("error")
		return nil, ie
	}
	s.enter(run, PhaseDone)
	s.observePhase(run)
	if opts.DryRun {
		s.countRun("dryrun")
	} else {
		s.countRun("ok")
	}
	return res, nil
}

func (s *ImportService) run(ctx context.Context, run *importRun, opts ImportOptions) (*dtos.ImportResult, error) {
	s.enter(run, PhaseStart)
	run.emit(fmt.Sprintf("START (strict=%t, batch=%d, parallel=%t, mirror=%t, dryrun=%t)",
		opts.Strict, opts.Batch, opts.Parallel, s.settings.Mirror, opts.DryRun))

	s.enter(run, PhaseLoadingCSV)
	run.emit("Loading CSV from Google Sheets…")
	sheets, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	run.emit(fmt.Sprintf("Loaded: shipments=%d, input_sea=%d, input_air=%d, milestones_sea=%d, milestones_air=%d, notes=%d",
		len(sheets[constants.TableShipments].Rows), len(sheets[constants.TableInputSea].Rows),
		len(sheets[constants.TableInputAir].Rows), len(sheets[constants.TableMilestonesSea].Rows),
		len(sheets[constants.TableMilestonesAir].Rows), len(sheets[constants.TableMilestonesNotes].Rows)))

	prepared, err := s.prepareAll(run, sheets, opts.Strict)
	if err != nil {
		return nil, err
	}

	res := &dtos.ImportResult{
		OK:              true,
		RunID:           run.id,
		DryRun:          opts.DryRun,
		Strict:          opts.Strict,
		Parallel:        opts.Parallel,
		MirrorShipments: s.settings.Mirror,
	}
	for _, t := range schema.All {
		res.Summary.Set(t.Name, prepared[t.Name].Fetched)
	}

	if opts.DryRun {
		run.emit("- dry run: no writes")
		return res, nil
	}

	if err := s.write(ctx, run, prepared, opts); err != nil {
		return nil, err
	}

	if s.settings.Mirror {
		s.enter(run, PhaseMirrorDelete)
		deleted, err := s.engine.Mirror(ctx, prepared[constants.TableShipments].ShipmentIDs(), s.settings.MirrorCascade, run.emit)
		if err != nil {
			return nil, err
		}
		res.MirrorDeleted = deleted
	}

	res.Persisted = run.persisted
	s.invalidateCaches()
	return res, nil
}

// fetchAll downloads every feed concurrently.
func (s *ImportService) fetchAll(ctx context.Context) (map[string]*providers.Sheet, error) {
	urls := s.settings.Feeds.URLs()
	sheets := make(map[string]*providers.Sheet, len(urls))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range schema.All {
		table, target := t.Name, urls[t.Name]
		g.Go(func() error {
			sheet, err := s.provider.FetchSheet(gctx, target)
			if err != nil {
				return classifyImportError(table, err)
			}
			mu.Lock()
			sheets[table] = sheet
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sheets, nil
}

// prepareAll validates every table before anything is written, then drops
// child rows whose shipment is not in the shipments feed.
func (s *ImportService) prepareAll(run *importRun, sheets map[string]*providers.Sheet, strict bool) (map[string]*schema.Prepared, error) {
	out := make(map[string]*schema.Prepared, len(schema.All))
	for _, t := range schema.All {
		sheet := sheets[t.Name]
		p, err := schema.Prepare(t, sheet.Header, sheet.Rows, strict)
		if err != nil {
			return nil, classifyImportError(t.Name, err)
		}
		out[t.Name] = p
	}

	known := make(map[string]struct{})
	for _, id := range out[constants.TableShipments].ShipmentIDs() {
		known[id] = struct{}{}
	}
	for _, t := range schema.All {
		p := out[t.Name]
		if t.Name != constants.TableShipments {
			if orphans := p.KeepShipments(known); orphans > 0 {
				run.log.Debugw("Dropped rows without a known shipment", "table", t.Name, "rows", orphans)
			}
		}
		if p.Dropped > 0 {
			run.log.Debugw("Dropped rows", "table", t.Name, "rows", p.Dropped)
			if s.metrics != nil {
				s.metrics.ImportDroppedTotal.WithLabelValues(t.Name).Add(float64(p.Dropped))
			}
		}
	}
	return out, nil
}

// write upserts shipments first, then the child tables and notes.
func (s *ImportService) write(ctx context.Context, run *importRun, prepared map[string]*schema.Prepared, opts ImportOptions) error {
	ships := prepared[constants.TableShipments]
	n, err := s.engine.UpsertTable(ctx, ships, opts.Batch, run.emit)
	if err != nil {
		return err
	}
	run.done(constants.TableShipments, n)

	tasks := make([]func(context.Context) error, 0, len(schema.ChildTables)+1)
	for _, t := range schema.ChildTables {
		p := prepared[t.Name]
		tasks = append(tasks, func(ctx context.Context) error {
			n, err := s.engine.UpsertTable(ctx, p, opts.Batch, run.emit)
			if err != nil {
				return err
			}
			run.done(p.Table.Name, n)
			return nil
		})
	}
	notes := prepared[constants.TableMilestonesNotes]
	scope := unionIDs(notes.ShipmentIDs(), ships.ShipmentIDs())
	tasks = append(tasks, func(ctx context.Context) error {
		n, err := s.engine.ReplaceNotes(ctx, notes, scope, opts.Batch, run.emit)
		if err != nil {
			return err
		}
		run.done(constants.TableMilestonesNotes, n)
		return nil
	})

	if !opts.Parallel {
		s.enter(run, PhaseSequentialUpsert)
		for _, task := range tasks {
			if err := task(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	s.enter(run, PhaseParallelUpsert)
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error { return task(gctx) })
	}
	return g.Wait()
}

func (s *ImportService) invalidateCaches() {
	if s.cache == nil {
		return
	}
	s.cache.DeleteByPrefix(string(constants.CachePrefixSearch))
	s.cache.DeleteByPrefix(string(constants.CachePrefixDetail))
}

func (s *ImportService) countRun(outcome string) {
	if s.metrics != nil {
		s.metrics.ImportRunsTotal.WithLabelValues(outcome).Inc()
	}
}

func unionIDs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
