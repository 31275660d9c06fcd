package constants

type (
	CachePrefix string
	Mode        string
)

const (
	ModeSea Mode = "SEA"
	ModeAir Mode = "AIR"

	CachePrefixSearch CachePrefix = "SEARCH_"
	CachePrefixDetail CachePrefix = "DETAIL_"
)

// Table names as stored in Postgres
const (
	TableShipments       = "shipments"
	TableInputSea        = "input_sea"
	TableInputAir        = "input_air"
	TableMilestonesSea   = "milestones_sea"
	TableMilestonesAir   = "milestones_air"
	TableMilestonesNotes = "milestones_notes"

	ViewShipmentSearch = "shipment_search_v"
)

// Search knobs
const (
	SearchResultLimit = 200
	SearchMinQueryLen = 2
	FilterAll         = "ALL"

	SortByETD = "ETD"
	SortByETA = "ETA"
	SortAsc   = "ASC"
	SortDesc  = "DESC"
)

// Import defaults and API headers
const (
	DefaultBatchSize = 1000
	AdminTokenHeader = "X-Admin-Token"
	ImportRunHeader  = "X-Import-Run-Id"
	SearchTierHeader = "X-Search-Tier"
)
