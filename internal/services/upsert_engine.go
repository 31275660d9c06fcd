package services

import (
	"context"
	"fmt"
	"strings"

	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/metrics"
	"logitrack/tracker/internal/schema"
)

// ProgressFunc receives one human-readable progress line.
type ProgressFunc func(line string)

func (p ProgressFunc) emit(format string, args ...interface{}) {
	if p != nil {
		p(fmt.Sprintf(format, args...))
	}
}

// ImportWriter is the persistence side of an import.
type ImportWriter interface {
	Upsert(ctx context.Context, t schema.Table, rows []schema.Record) error
	ReplaceNotes(ctx context.Context, shipmentIDs []string, rows []schema.Record, batch int, onBatch func(done int)) error
	ListShipmentIDs(ctx context.Context) ([]string, error)
	DeleteShipments(ctx context.Context, ids []string, cascade bool) (int64, error)
}

// UpsertEngine writes prepared tables in batches and reconciles shipments.
type UpsertEngine struct {
	repo    ImportWriter
	metrics *metrics.MetricsRegistry
}

func NewUpsertEngine(repo ImportWriter, m *metrics.MetricsRegistry) *UpsertEngine {
	return &UpsertEngine{repo: repo, metrics: m}
}

// UpsertTable writes p in chunks of batch rows and returns the rows written.
// A failed chunk aborts the table; earlier chunks stay committed.
func (e *UpsertEngine) UpsertTable(ctx context.Context, p *schema.Prepared, batch int, progress ProgressFunc) (int, error) {
	t := p.Table
	if p.Fetched == 0 {
		progress.emit("- %s: skipped (0 rows)", t.Name)
		return 0, nil
	}
	if len(p.Records) == 0 {
		progress.emit("- %s: skipped (all rows missing keys)", t.Name)
		return 0, nil
	}
	if err := checkConflictKeys(t, p.Records[0]); err != nil {
		return 0, err
	}

	batch = clampBatch(batch)
	total := len(p.Records)
	progress.emit("- %s: upsert %d rows (batch=%d)", t.Name, total, batch)

	for start := 0; start < total; start += batch {
		if err := ctx.Err(); err != nil {
			return start, classifyImportError(t.Name, err)
		}
		end := min(start+batch, total)
		if err := e.repo.Upsert(ctx, t, p.Records[start:end]); err != nil {
			e.countBatch(t.Name, "error")
			return start, newImportError(constants.ErrCodePersistence, t.Name,
				fmt.Sprintf("upsert failed (onConflict=%s)", strings.Join(t.ConflictKeys, ",")), err)
		}
		e.countBatch(t.Name, "ok")
		progress.emit("  • %s: %d/%d", t.Name, end, total)
	}

	e.countRows(t.Name, total)
	return total, nil
}

// ReplaceNotes swaps the notes of every shipment in scope for the notes in p.
func (e *UpsertEngine) ReplaceNotes(ctx context.Context, p *schema.Prepared, scope []string, batch int, progress ProgressFunc) (int, error) {
	t := p.Table
	if len(scope) == 0 {
		progress.emit("- %s: skipped (0 rows)", t.Name)
		return 0, nil
	}

	batch = clampBatch(batch)
	total := len(p.Records)
	progress.emit("- %s: replace %d rows for %d shipments (batch=%d)", t.Name, total, len(scope), batch)

	err := e.repo.ReplaceNotes(ctx, scope, p.Records, batch, func(done int) {
		e.countBatch(t.Name, "ok")
		progress.emit("  • %s: %d/%d", t.Name, done, total)
	})
	if err != nil {
		e.countBatch(t.Name, "error")
		return 0, newImportError(constants.ErrCodePersistence, t.Name, "replace failed", err)
	}

	e.countRows(t.Name, total)
	return total, nil
}

// Mirror deletes stored shipments whose ids are not in sourceIDs. An empty
// source never mirrors, so a blank sheet cannot wipe the table.
func (e *UpsertEngine) Mirror(ctx context.Context, sourceIDs []string, cascade bool, progress ProgressFunc) (int, error) {
	if len(sourceIDs) == 0 {
		progress.emit("- mirror: skipped (no shipments in sheet)")
		return 0, nil
	}

	stored, err := e.repo.ListShipmentIDs(ctx)
	if err != nil {
		return 0, newImportError(constants.ErrCodePersistence, constants.TableShipments, "select shipments for mirror failed", err)
	}

	keep := make(map[string]struct{}, len(sourceIDs))
	for _, id := range sourceIDs {
		keep[id] = struct{}{}
	}
	var toDelete []string
	for _, id := range stored {
		if _, ok := keep[id]; !ok {
			toDelete = append(toDelete, id)
		}
	}

	if len(toDelete) == 0 {
		progress.emit("- mirror: nothing to delete")
		return 0, nil
	}

	progress.emit("- mirror: deleting %d shipments no longer in the sheet", len(toDelete))
	deleted, err := e.repo.DeleteShipments(ctx, toDelete, cascade)
	if err != nil {
		return 0, newImportError(constants.ErrCodePersistence, constants.TableShipments, "mirror delete failed", err)
	}
	if e.metrics != nil {
		e.metrics.MirrorDeletedTotal.Add(float64(deleted))
	}
	return int(deleted), nil
}

func checkConflictKeys(t schema.Table, sample schema.Record) error {
	for _, k := range t.ConflictKeys {
		if _, ok := sample[k]; !ok {
			return newImportError(constants.ErrCodeConfig, t.Name,
				fmt.Sprintf("payload has no conflict column %q", k), nil)
		}
	}
	return nil
}

func clampBatch(batch int) int {
	if batch <= 0 {
		return constants.DefaultBatchSize
	}
	return batch
}

func (e *UpsertEngine) countBatch(table, result string) {
	if e.metrics != nil {
		e.metrics.ImportBatchesTotal.WithLabelValues(table, result).Inc()
	}
}

func (e *UpsertEngine) countRows(table string, n int) {
	if e.metrics != nil {
		e.metrics.ImportRowsTotal.WithLabelValues(table).Add(float64(n))
	}
}
