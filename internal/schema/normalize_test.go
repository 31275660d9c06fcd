package schema

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		name  string
		table Table
		in    string
		want  string
	}{
		{"milestone dot becomes underscore", MilestonesSea, "step6.1_date", "step6_1_date"},
		{"non milestone keeps dots", Shipments, "a.b", "a.b"},
		{"trims and lowercases", Shipments, "  Shipment_ID ", "shipment_id"},
		{"alias resolved", Shipments, "scope_of_servie", "scope_of_service"},
		{"shorthand alias", Shipments, "POL", "pol_aol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeColumn(tt.table, tt.in))
		})
	}
}

func TestCheckStrict_ReportsMissingAndExtra(t *testing.T) {
	header := append([]string{}, InputAir.Columns...)
	header = header[:len(header)-1] // drop chargeable_weight_kg
	header = append(header, "awb")

	err := CheckStrict(InputAir, header)
	require.Error(t, err)

	var mismatch *SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []string{"chargeable_weight_kg"}, mismatch.Missing)
	assert.Equal(t, []string{"awb"}, mismatch.Extra)
	assert.Contains(t, err.Error(), "chargeable_weight_kg")
	assert.Contains(t, err.Error(), "awb")
	assert.Contains(t, err.Error(), "input_air")
}

func TestCheckStrict_MilestoneDotHeadersMatch(t *testing.T) {
	header := make([]string, 0, len(MilestonesSea.Columns))
	for _, c := range MilestonesSea.Columns {
		switch c {
		case "step6_1_date":
			c = "step6.1_date"
		case "step6_2_status":
			c = "step6.2_status"
		}
		header = append(header, c)
	}

	assert.NoError(t, CheckStrict(MilestonesSea, NormalizeHeader(MilestonesSea, header)))
}

func TestSanitizeRow_ExplicitNullsAndNumbers(t *testing.T) {
	row := Row{
		"shipment_id":      ptr("S1"),
		"container_number": ptr("MSCU1234567"),
		"weight_kg":        ptr("1,250.5"),
		"vessel":           ptr("   "),
		"unknown":          ptr("x"),
	}

	rec, err := SanitizeRow(InputSea, row, 2)
	require.NoError(t, err)

	assert.Len(t, rec, len(InputSea.Columns))
	assert.NotContains(t, rec, "unknown")
	assert.Nil(t, rec["vessel"])
	assert.Nil(t, rec["voyage"])
	assert.Contains(t, rec, "voyage")
	assert.True(t, decimal.RequireFromString("1250.5").Equal(rec["weight_kg"].(decimal.Decimal)))
}

func TestSanitizeRow_InvalidNumber(t *testing.T) {
	_, err := SanitizeRow(InputAir, Row{"shipment_id": ptr("S1"), "flight": ptr("VN1"), "pieces": ptr("ten")}, 7)

	var invalid *InvalidValueError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "pieces", invalid.Column)
	assert.Equal(t, 7, invalid.Row)
}

func TestFilterRequired(t *testing.T) {
	recs := []Record{
		{"shipment_id": "S1", "container_number": "C1"},
		{"shipment_id": "S1", "container_number": nil},
		{"shipment_id": nil, "container_number": "C2"},
	}

	kept, dropped := FilterRequired(InputSea, recs)
	assert.Len(t, kept, 1)
	assert.Equal(t, 2, dropped)
}

func TestPrepare_CountsFetchedAndDropped(t *testing.T) {
	rows := make([]Row, 0, 10)
	for i := 0; i < 8; i++ {
		rows = append(rows, Row{"shipment_id": ptr(string(rune('A' + i)))})
	}
	rows = append(rows, Row{"shipment_id": nil}, Row{"shipment_id": ptr("")})

	p, err := Prepare(Shipments, Shipments.Columns, rows, true)
	require.NoError(t, err)

	assert.Equal(t, 10, p.Fetched)
	assert.Equal(t, 2, p.Dropped)
	assert.Len(t, p.Records, 8)
}

func TestPrepare_RepeatedConflictKeyKeepsLastRow(t *testing.T) {
	rows := []Row{
		{"shipment_id": ptr("S1"), "container_number": ptr("C1"), "seal_no": ptr("old")},
		{"shipment_id": ptr("S1"), "container_number": ptr("C2")},
		{"shipment_id": ptr("S1"), "container_number": ptr("C1"), "seal_no": ptr("new")},
	}

	p, err := Prepare(InputSea, nil, rows, false)
	require.NoError(t, err)

	assert.Equal(t, 3, p.Fetched)
	assert.Equal(t, 1, p.Dropped)
	require.Len(t, p.Records, 2)
	assert.Equal(t, "C1", p.Records[0]["container_number"])
	assert.Equal(t, "new", p.Records[0]["seal_no"])
	assert.Equal(t, "C2", p.Records[1]["container_number"])
}

func TestDedupeConflictKeys_NotesUntouched(t *testing.T) {
	recs := []Record{
		{"shipment_id": "S1", "note": "a"},
		{"shipment_id": "S1", "note": "a"},
	}

	out, dropped := DedupeConflictKeys(MilestonesNotes, recs)
	assert.Len(t, out, 2)
	assert.Zero(t, dropped)
}

func TestPrepare_StrictMismatchFailsTable(t *testing.T) {
	_, err := Prepare(Shipments, []string{"shipment_id", "foo"}, nil, true)
	require.Error(t, err)

	_, err = Prepare(Shipments, []string{"shipment_id", "foo"}, nil, false)
	require.NoError(t, err)
}

func TestPrepared_KeepShipments(t *testing.T) {
	p := &Prepared{Records: []Record{
		{"shipment_id": "S1"},
		{"shipment_id": "S2"},
		{"shipment_id": "S1"},
	}}

	assert.Equal(t, []string{"S1", "S2"}, p.ShipmentIDs())

	dropped := p.KeepShipments(map[string]struct{}{"S1": {}})
	assert.Equal(t, 1, dropped)
	assert.Len(t, p.Records, 2)
	assert.Equal(t, 1, p.Dropped)
}

func TestUpdateColumns_ExcludesConflictKeys(t *testing.T) {
	cols := InputSea.UpdateColumns()
	assert.NotContains(t, cols, "shipment_id")
	assert.NotContains(t, cols, "container_number")
	assert.Contains(t, cols, "vessel")
}

func TestMilestoneColumns_Shape(t *testing.T) {
	assert.Len(t, MilestonesSea.Columns, 1+10*2+3*2)
	assert.Len(t, MilestonesAir.Columns, 1+8*2+4*2)
	assert.Contains(t, MilestonesAir.Columns, "step5_4_status")
}
