package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"logitrack/tracker/internal/constants"
	gormModels "logitrack/tracker/internal/models/gorm"
	"logitrack/tracker/internal/schema"
)

// idChunk bounds IN (...) lists so large mirrors stay under driver parameter limits.
const idChunk = 1000

// ImportRepository writes sanitized sheet records with GORM.
type ImportRepository struct {
	db *gorm.DB
}

// NewImportRepository creates a new import repository
func NewImportRepository(db *gorm.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

// Upsert inserts rows into t, updating every non-key column on conflict.
func (r *ImportRepository) Upsert(ctx context.Context, t schema.Table, rows []schema.Record) error {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]clause.Column, 0, len(t.ConflictKeys))
	for _, k := range t.ConflictKeys {
		cols = append(cols, clause.Column{Name: k})
	}

	model, err := modelFor(t.Name)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).
		Model(model).
		Clauses(clause.OnConflict{
			Columns:   cols,
			DoUpdates: clause.AssignmentColumns(t.UpdateColumns()),
		}).
		Create(toMaps(rows)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", t.Name, err)
	}
	return nil
}

// ReplaceNotes deletes every note of shipmentIDs and inserts rows in batches,
// all inside one transaction. onBatch receives the running insert count.
func (r *ImportRepository) ReplaceNotes(ctx context.Context, shipmentIDs []string, rows []schema.Record, batch int, onBatch func(done int)) error {
	if batch <= 0 {
		batch = constants.DefaultBatchSize
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ids := range chunkIDs(shipmentIDs, idChunk) {
			err := tx.Where("shipment_id IN ?", ids).
				Delete(&gormModels.MilestoneNote{}).Error
			if err != nil {
				return fmt.Errorf("failed to delete notes: %w", err)
			}
		}
		for start := 0; start < len(rows); start += batch {
			end := min(start+batch, len(rows))
			if err := tx.Table(constants.TableMilestonesNotes).Create(toMaps(rows[start:end])).Error; err != nil {
				return fmt.Errorf("failed to insert notes %d-%d: %w", start+1, end, err)
			}
			if onBatch != nil {
				onBatch(end)
			}
		}
		return nil
	})
}

// ListShipmentIDs returns every stored shipment id.
func (r *ImportRepository) ListShipmentIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&gormModels.Shipment{}).
		Pluck("shipment_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shipment ids: %w", err)
	}
	return ids, nil
}

// DeleteShipments removes the given shipments in one transaction. With cascade
// their child rows go too. Returns the number of shipments deleted.
func (r *ImportRepository) DeleteShipments(ctx context.Context, ids []string, cascade bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, chunk := range chunkIDs(ids, idChunk) {
			if cascade {
				for _, child := range childModels() {
					if err := tx.Where("shipment_id IN ?", chunk).Delete(child).Error; err != nil {
						return fmt.Errorf("failed to delete children of shipments: %w", err)
					}
				}
			}
			res := tx.Where("shipment_id IN ?", chunk).Delete(&gormModels.Shipment{})
			if res.Error != nil {
				return fmt.Errorf("failed to delete shipments: %w", res.Error)
			}
			deleted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func childModels() []interface{} {
	return []interface{}{
		&gormModels.InputSea{},
		&gormModels.InputAir{},
		&gormModels.MilestoneSea{},
		&gormModels.MilestoneAir{},
		&gormModels.MilestoneNote{},
	}
}

func modelFor(table string) (interface{}, error) {
	switch table {
	case constants.TableShipments:
		return &gormModels.Shipment{}, nil
	case constants.TableInputSea:
		return &gormModels.InputSea{}, nil
	case constants.TableInputAir:
		return &gormModels.InputAir{}, nil
	case constants.TableMilestonesSea:
		return &gormModels.MilestoneSea{}, nil
	case constants.TableMilestonesAir:
		return &gormModels.MilestoneAir{}, nil
	case constants.TableMilestonesNotes:
		return &gormModels.MilestoneNote{}, nil
	}
	return nil, fmt.Errorf("unknown table %q", table)
}

func toMaps(rows []schema.Record) []map[string]interface{} {
	out := make([]map[string]interface{}, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

func chunkIDs(ids []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += size {
		out = append(out, ids[start:min(start+size, len(ids))])
	}
	return out
}
