package dtos

// ImportSummary counts rows per table. Counts are rows fetched from each feed,
// including rows later dropped for missing keys.
type ImportSummary struct {
	Shipments       int `json:"shipments"`
	InputSea        int `json:"input_sea"`
	InputAir        int `json:"input_air"`
	MilestonesSea   int `json:"milestones_sea"`
	MilestonesAir   int `json:"milestones_air"`
	MilestonesNotes int `json:"milestones_notes"`
}

// Set stores n under the table name; unknown tables are ignored.
func (s *ImportSummary) Set(table string, n int) {
	switch table {
	case "shipments":
		s.Shipments = n
	case "input_sea":
		s.InputSea = n
	case "input_air":
		s.InputAir = n
	case "milestones_sea":
		s.MilestonesSea = n
	case "milestones_air":
		s.MilestonesAir = n
	case "milestones_notes":
		s.MilestonesNotes = n
	}
}

// ImportResult is the successful outcome of one import run.
type ImportResult struct {
	OK              bool          `json:"ok"`
	RunID           string        `json:"run_id,omitempty"`
	DryRun          bool          `json:"dryrun"`
	Strict          bool          `json:"strict"`
	Parallel        bool          `json:"parallel"`
	MirrorShipments bool          `json:"mirror_shipments"`
	Summary         ImportSummary `json:"summary"`
	Persisted       ImportSummary `json:"persisted"`
	MirrorDeleted   int           `json:"mirror_deleted"`
}
