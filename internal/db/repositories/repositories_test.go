package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"logitrack/tracker/internal/constants"
	gormModels "logitrack/tracker/internal/models/gorm"
	"logitrack/tracker/internal/schema"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(gormModels.AllModels()...))
	return db
}

func records(t *testing.T, tbl schema.Table, rows ...map[string]string) []schema.Record {
	t.Helper()
	out := make([]schema.Record, 0, len(rows))
	for i, raw := range rows {
		row := make(schema.Row, len(raw))
		for k, v := range raw {
			row[k] = &v
		}
		rec, err := schema.SanitizeRow(tbl, row, i+2)
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestImportRepository_UpsertUpdatesOnConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewImportRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, schema.Shipments, records(t, schema.Shipments,
		map[string]string{"shipment_id": "S1", "carrier": "MAERSK"},
		map[string]string{"shipment_id": "S2", "carrier": "CMA"},
	)))
	require.NoError(t, repo.Upsert(ctx, schema.Shipments, records(t, schema.Shipments,
		map[string]string{"shipment_id": "S1", "carrier": "MSC"},
	)))

	var count int64
	require.NoError(t, db.Model(&gormModels.Shipment{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var s gormModels.Shipment
	require.NoError(t, db.First(&s, "shipment_id = ?", "S1").Error)
	require.NotNil(t, s.Carrier)
	assert.Equal(t, "MSC", *s.Carrier)
}

func TestImportRepository_UpsertCompositeKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewImportRepository(db)
	ctx := context.Background()

	rows := records(t, schema.InputSea,
		map[string]string{"shipment_id": "S1", "container_number": "C1", "weight_kg": "1,200.5"},
		map[string]string{"shipment_id": "S1", "container_number": "C2"},
	)
	require.NoError(t, repo.Upsert(ctx, schema.InputSea, rows))
	require.NoError(t, repo.Upsert(ctx, schema.InputSea, records(t, schema.InputSea,
		map[string]string{"shipment_id": "S1", "container_number": "C1", "vessel": "EVER GIVEN"},
	)))

	var got []gormModels.InputSea
	require.NoError(t, db.Order("container_number").Find(&got).Error)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Vessel)
	assert.Equal(t, "EVER GIVEN", *got[0].Vessel)
	// every non-key column is overwritten on conflict
	assert.False(t, got[0].WeightKg.Valid)
}

func TestImportRepository_ReplaceNotes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewImportRepository(db)
	ctx := context.Background()

	seed := records(t, schema.MilestonesNotes,
		map[string]string{"shipment_id": "S1", "note": "old"},
		map[string]string{"shipment_id": "S2", "note": "keep"},
		map[string]string{"shipment_id": "S3", "note": "vanished"},
	)
	require.NoError(t, repo.ReplaceNotes(ctx, []string{"S1", "S2", "S3"}, seed, 10, nil))

	var progress []int
	fresh := records(t, schema.MilestonesNotes,
		map[string]string{"shipment_id": "S1", "note": "new-1"},
		map[string]string{"shipment_id": "S1", "note": "new-2"},
		map[string]string{"shipment_id": "S1", "note": "new-3"},
	)
	err := repo.ReplaceNotes(ctx, []string{"S1", "S3"}, fresh, 2, func(done int) {
		progress = append(progress, done)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, progress)

	var notes []gormModels.MilestoneNote
	require.NoError(t, db.Order("shipment_id, note").Find(&notes).Error)
	require.Len(t, notes, 4)
	assert.Equal(t, "new-1", *notes[0].Note)
	assert.Equal(t, "S2", notes[3].ShipmentID)

	ids := map[uint64]bool{}
	for _, n := range notes {
		assert.NotZero(t, n.ID)
		ids[n.ID] = true
	}
	assert.Len(t, ids, 4, "note ids are assigned by the database")
}

func TestImportRepository_DeleteShipments(t *testing.T) {
	tests := []struct {
		name         string
		cascade      bool
		wantChildren int64
	}{
		{name: "cascade", cascade: true, wantChildren: 0},
		{name: "no cascade", cascade: false, wantChildren: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewImportRepository(db)
			ctx := context.Background()

			require.NoError(t, repo.Upsert(ctx, schema.Shipments, records(t, schema.Shipments,
				map[string]string{"shipment_id": "S1"},
				map[string]string{"shipment_id": "S2"},
			)))
			require.NoError(t, repo.Upsert(ctx, schema.InputSea, records(t, schema.InputSea,
				map[string]string{"shipment_id": "S2", "container_number": "C9"},
			)))

			deleted, err := repo.DeleteShipments(ctx, []string{"S2"}, tt.cascade)
			require.NoError(t, err)
			assert.Equal(t, int64(1), deleted)

			ids, err := repo.ListShipmentIDs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"S1"}, ids)

			var children int64
			require.NoError(t, db.Model(&gormModels.InputSea{}).Count(&children).Error)
			assert.Equal(t, tt.wantChildren, children)
		})
	}
}

func TestImportRepository_DeleteShipmentsEmpty(t *testing.T) {
	repo := NewImportRepository(setupTestDB(t))
	deleted, err := repo.DeleteShipments(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestImportRepository_UpsertUnknownTable(t *testing.T) {
	repo := NewImportRepository(setupTestDB(t))
	err := repo.Upsert(context.Background(), schema.Table{Name: "nope", ConflictKeys: []string{"id"}},
		[]schema.Record{{"id": "1"}})
	assert.Error(t, err)
}

func TestDetailRepository(t *testing.T) {
	db := setupTestDB(t)
	imp := NewImportRepository(db)
	repo := NewDetailRepository(db)
	ctx := context.Background()

	require.NoError(t, imp.Upsert(ctx, schema.Shipments, records(t, schema.Shipments,
		map[string]string{"shipment_id": "S1", "mode": "AIR"},
	)))
	require.NoError(t, imp.Upsert(ctx, schema.MilestonesAir, records(t, schema.MilestonesAir,
		map[string]string{"shipment_id": "S1", "step1_status": "Booked", "step1_date": "2024-01-02"},
	)))
	require.NoError(t, imp.ReplaceNotes(ctx, []string{"S1"}, records(t, schema.MilestonesNotes,
		map[string]string{"shipment_id": "S1", "note": "a", "note_time": "2024-01-01 10:00"},
		map[string]string{"shipment_id": "S1", "note": "b", "note_time": "2024-01-03 10:00"},
		map[string]string{"shipment_id": "S1", "note": "c", "note_time": "2024-01-03 10:00"},
	), 100, nil))

	t.Run("missing shipment", func(t *testing.T) {
		s, err := repo.GetShipment(ctx, "NOPE")
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("shipment", func(t *testing.T) {
		s, err := repo.GetShipment(ctx, "S1")
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "AIR", *s.Mode)
	})

	t.Run("milestones by mode", func(t *testing.T) {
		m, err := repo.GetMilestones(ctx, constants.ModeAir, "S1")
		require.NoError(t, err)
		require.NotNil(t, m["step1_status"])
		assert.Equal(t, "Booked", *m["step1_status"])
		assert.Nil(t, m["step2_status"])

		m, err = repo.GetMilestones(ctx, constants.ModeSea, "S1")
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("notes newest first", func(t *testing.T) {
		notes, err := repo.ListNotes(ctx, "S1")
		require.NoError(t, err)
		require.Len(t, notes, 3)
		assert.Equal(t, "c", *notes[0].Note)
		assert.Equal(t, "b", *notes[1].Note)
		assert.Equal(t, "a", *notes[2].Note)
	})

	t.Run("empty cargo lists", func(t *testing.T) {
		rows, err := repo.ListInputSea(ctx, "S1")
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.NotNil(t, rows)
	})
}
