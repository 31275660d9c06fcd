package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"regexp"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"logitrack/tracker/internal/config"
	"logitrack/tracker/internal/metrics"
	gormModels "logitrack/tracker/internal/models/gorm"
	"logitrack/tracker/internal/providers"
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

func testMetrics() *metrics.MetricsRegistry {
	return metrics.NewMetricsRegistryWith(prometheus.NewRegistry())
}

var extraStep = regexp.MustCompile(`^(step\d+)_(\d+)_`)

// sheetHeader writes milestone extras the way the sheets do: step6.1_status.
func sheetHeader(t schema.Table, col string) string {
	if t.DotToUnderscore {
		return extraStep.ReplaceAllString(col, "${1}.${2}_")
	}
	return col
}

// sheetCSV renders rows under the full declared header of t.
func sheetCSV(t schema.Table, rows ...map[string]string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = sheetHeader(t, c)
	}
	_ = w.Write(header)
	for _, r := range rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			rec[i] = r[c]
		}
		_ = w.Write(rec)
	}
	w.Flush()
	return buf.String()
}

type fakeProvider struct {
	csv  map[string]string
	errs map[string]error
}

func (f *fakeProvider) GetProviderType() string { return "fake" }

func (f *fakeProvider) FetchSheet(_ context.Context, rawURL string) (*providers.Sheet, error) {
	if err := f.errs[rawURL]; err != nil {
		return nil, err
	}
	body, ok := f.csv[rawURL]
	if !ok {
		return nil, &providers.ProviderError{Code: "HTTP_STATUS", Message: "not found", URL: rawURL, StatusCode: 404}
	}
	return providers.ParseCSV([]byte(body))
}

func feedURL(table string) string {
	return "https://sheets.test/" + table
}

func testFeeds() config.Feeds {
	return config.Feeds{
		Shipments:       feedURL("shipments"),
		InputSea:        feedURL("input_sea"),
		InputAir:        feedURL("input_air"),
		MilestonesSea:   feedURL("milestones_sea"),
		MilestonesAir:   feedURL("milestones_air"),
		MilestonesNotes: feedURL("milestones_notes"),
	}
}

// standardSheets: two shipments, one orphan container and one keyless row.
func standardSheets() map[string]string {
	return map[string]string{
		feedURL("shipments"): sheetCSV(schema.Shipments,
			map[string]string{"shipment_id": "S1", "mode": "SEA", "carrier": "MAERSK"},
			map[string]string{"shipment_id": "S2", "mode": "AIR", "carrier": "VN"},
		),
		feedURL("input_sea"): sheetCSV(schema.InputSea,
			map[string]string{"shipment_id": "S1", "container_number": "MSCU1", "weight_kg": "1,000"},
			map[string]string{"shipment_id": "S1", "container_number": "MSCU2"},
			map[string]string{"shipment_id": "X9", "container_number": "MSCU3"},
			map[string]string{"shipment_id": "", "container_number": "MSCU4"},
		),
		feedURL("input_air"): sheetCSV(schema.InputAir,
			map[string]string{"shipment_id": "S2", "flight": "VN123", "pieces": "3"},
		),
		feedURL("milestones_sea"): sheetCSV(schema.MilestonesSea,
			map[string]string{"shipment_id": "S1", "step1_status": "Done", "step6_1_status": "In progress"},
		),
		feedURL("milestones_air"): sheetCSV(schema.MilestonesAir,
			map[string]string{"shipment_id": "S2", "step1_status": "Booked", "step1_date": "2024-03-01"},
		),
		feedURL("milestones_notes"): sheetCSV(schema.MilestonesNotes,
			map[string]string{"shipment_id": "S1", "step": "Step 1", "note": "gate in", "active": "TRUE"},
		),
	}
}
