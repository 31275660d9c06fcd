package schema

import (
	"fmt"

	"logitrack/tracker/internal/constants"
)

// Table describes one import target: its declared storage columns and the keys
// the import pipeline relies on.
type Table struct {
	Name           string
	Columns        []string
	ConflictKeys   []string
	RequiredKeys   []string
	NumericColumns []string
	// DotToUnderscore maps sheet headers like step6.1_date to step6_1_date.
	DotToUnderscore bool
}

var Shipments = Table{
	Name: constants.TableShipments,
	Columns: []string{
		"shipment_id", "tracking_id", "mode", "mbl_number", "hbl_number", "scope_of_service",
		"carrier", "etd_date", "atd_date", "eta_date", "ata_date", "place_of_receipt", "pol_aol",
		"transshipment_ports", "pod_aod", "place_of_delivery", "route", "remarks",
	},
	ConflictKeys: []string{"shipment_id"},
	RequiredKeys: []string{"shipment_id"},
}

var InputSea = Table{
	Name: constants.TableInputSea,
	Columns: []string{
		"shipment_id", "container_number", "vessel", "voyage", "size_type", "weight_kg",
		"volume_cbm", "seal_no", "temperature", "vent",
	},
	ConflictKeys:   []string{"shipment_id", "container_number"},
	RequiredKeys:   []string{"shipment_id", "container_number"},
	NumericColumns: []string{"weight_kg", "volume_cbm"},
}

var InputAir = Table{
	Name: constants.TableInputAir,
	Columns: []string{
		"shipment_id", "flight", "unit_kind", "pieces", "volume_cbm", "weight_kg",
		"chargeable_weight_kg",
	},
	ConflictKeys:   []string{"shipment_id", "flight"},
	RequiredKeys:   []string{"shipment_id", "flight"},
	NumericColumns: []string{"pieces", "volume_cbm", "weight_kg", "chargeable_weight_kg"},
}

var MilestonesSea = Table{
	Name:            constants.TableMilestonesSea,
	Columns:         milestoneColumns(10, "6", 3),
	ConflictKeys:    []string{"shipment_id"},
	RequiredKeys:    []string{"shipment_id"},
	DotToUnderscore: true,
}

var MilestonesAir = Table{
	Name:            constants.TableMilestonesAir,
	Columns:         milestoneColumns(8, "5", 4),
	ConflictKeys:    []string{"shipment_id"},
	RequiredKeys:    []string{"shipment_id"},
	DotToUnderscore: true,
}

// MilestonesNotes has no conflict keys: notes are replaced per shipment.
var MilestonesNotes = Table{
	Name:            constants.TableMilestonesNotes,
	Columns:         []string{"shipment_id", "mode", "step", "note", "note_type", "note_time", "active"},
	RequiredKeys:    []string{"shipment_id"},
	DotToUnderscore: true,
}

// ChildTables are the upsert targets that reference shipments.
var ChildTables = []Table{InputSea, InputAir, MilestonesSea, MilestonesAir}

// All lists every table in import order.
var All = []Table{Shipments, InputSea, InputAir, MilestonesSea, MilestonesAir, MilestonesNotes}

// Lookup returns the table with the given name.
func Lookup(name string) (Table, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// milestoneColumns builds shipment_id, stepN_status/stepN_date for 1..steps and
// the fractional extras of the transshipment step, in storage form.
func milestoneColumns(steps int, extraOf string, extras int) []string {
	cols := []string{"shipment_id"}
	for i := 1; i <= steps; i++ {
		base := fmt.Sprintf("step%d", i)
		cols = append(cols, base+"_status", base+"_date")
		if fmt.Sprint(i) == extraOf {
			for j := 1; j <= extras; j++ {
				sub := fmt.Sprintf("%s_%d", base, j)
				cols = append(cols, sub+"_status", sub+"_date")
			}
		}
	}
	return cols
}

// UpdateColumns returns the declared columns minus the conflict keys.
func (t Table) UpdateColumns() []string {
	keys := make(map[string]struct{}, len(t.ConflictKeys))
	for _, k := range t.ConflictKeys {
		keys[k] = struct{}{}
	}
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if _, ok := keys[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func (t Table) isNumeric(col string) bool {
	for _, c := range t.NumericColumns {
		if c == col {
			return true
		}
	}
	return false
}
