package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"logitrack/tracker/internal/constants"
	gormModels "logitrack/tracker/internal/models/gorm"
)

// DetailRepository reads everything the detail view needs for one shipment.
type DetailRepository struct {
	db *gorm.DB
}

func NewDetailRepository(db *gorm.DB) *DetailRepository {
	return &DetailRepository{db: db}
}

// GetShipment returns nil, nil when the shipment does not exist.
func (r *DetailRepository) GetShipment(ctx context.Context, shipmentID string) (*gormModels.Shipment, error) {
	var s gormModels.Shipment
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch shipment: %w", err)
	}
	return &s, nil
}

func (r *DetailRepository) ListInputSea(ctx context.Context, shipmentID string) ([]gormModels.InputSea, error) {
	rows := []gormModels.InputSea{}
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("container_number").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch input_sea: %w", err)
	}
	return rows, nil
}

func (r *DetailRepository) ListInputAir(ctx context.Context, shipmentID string) ([]gormModels.InputAir, error) {
	rows := []gormModels.InputAir{}
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("flight").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch input_air: %w", err)
	}
	return rows, nil
}

// GetMilestones returns the milestone row of the given mode as a column map,
// or nil when there is none. Modes other than SEA read the air table.
func (r *DetailRepository) GetMilestones(ctx context.Context, mode constants.Mode, shipmentID string) (map[string]*string, error) {
	table := constants.TableMilestonesAir
	if mode == constants.ModeSea {
		table = constants.TableMilestonesSea
	}

	var rows []map[string]interface{}
	err := r.db.WithContext(ctx).
		Table(table).
		Where("shipment_id = ?", shipmentID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make(map[string]*string, len(rows[0]))
	for k, v := range rows[0] {
		out[k] = textValue(v)
	}
	return out, nil
}

// ListNotes returns every note of the shipment, newest first. Active filtering
// is left to the caller since the flag is stored as raw text.
func (r *DetailRepository) ListNotes(ctx context.Context, shipmentID string) ([]gormModels.MilestoneNote, error) {
	notes := []gormModels.MilestoneNote{}
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("note_time DESC NULLS LAST").
		Order("id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notes: %w", err)
	}
	return notes, nil
}

func textValue(v interface{}) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return &t
	case []byte:
		s := string(t)
		return &s
	case *string:
		return t
	default:
		s := fmt.Sprint(t)
		return &s
	}
}
