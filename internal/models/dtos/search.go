package dtos

// SearchParams are the query parameters of a shipment search.
type SearchParams struct {
	Q               string `json:"q"`
	POL             string `json:"pol,omitempty"`
	POD             string `json:"pod,omitempty"`
	PlaceOfDelivery string `json:"place_of_delivery,omitempty"`
	Mode            string `json:"mode,omitempty"`
	SortBy          string `json:"sortBy,omitempty"`
	Dir             string `json:"dir,omitempty"`
}

// SearchRow is one row of shipment_search_v.
type SearchRow struct {
	ShipmentID      string  `db:"shipment_id" json:"shipment_id"`
	TrackingID      *string `db:"tracking_id" json:"tracking_id"`
	Mode            *string `db:"mode" json:"mode"`
	MBLNumber       *string `db:"mbl_number" json:"mbl_number"`
	HBLNumber       *string `db:"hbl_number" json:"hbl_number"`
	ScopeOfService  *string `db:"scope_of_service" json:"scope_of_service"`
	Carrier         *string `db:"carrier" json:"carrier"`
	Containers      *string `db:"containers" json:"containers"`
	ETDDate         *string `db:"etd_date" json:"etd_date"`
	ATDDate         *string `db:"atd_date" json:"atd_date"`
	ETADate         *string `db:"eta_date" json:"eta_date"`
	ATADate         *string `db:"ata_date" json:"ata_date"`
	POLAOL          *string `db:"pol_aol" json:"pol_aol"`
	PODAOD          *string `db:"pod_aod" json:"pod_aod"`
	PlaceOfDelivery *string `db:"place_of_delivery" json:"place_of_delivery"`
}

// SearchResult wraps the rows with the tier that produced them.
type SearchResult struct {
	Rows []SearchRow `json:"rows"`
	Tier string      `json:"tier"`
}
