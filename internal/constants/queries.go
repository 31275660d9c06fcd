package constants

// Search queries run against shipment_search_v through sqlx. Placeholders use
// the ? form and are rebound for the driver.
const (
	SearchSelectColumns = `
		shipment_id, tracking_id, mode, mbl_number, hbl_number, scope_of_service, carrier,
		containers, etd_date, atd_date, eta_date, ata_date, pol_aol, pod_aod, place_of_delivery`

	SearchExactWhere = `(shipment_id IN (?) OR tracking_id IN (?) OR mbl_number IN (?)
		OR hbl_number IN (?) OR carrier IN (?))`

	SearchContainsWhere = `(shipment_id ILIKE ? OR tracking_id ILIKE ? OR mbl_number ILIKE ?
		OR hbl_number ILIKE ? OR carrier ILIKE ?)`

	SearchByIDsWhere = `shipment_id IN (?)`

	// Container lookups are unbounded; filters and the result cap apply when
	// the ids are resolved through SearchByIDsWhere.

	ContainerExactQuery = `
		SELECT DISTINCT shipment_id FROM input_sea
		WHERE container_number IN (?)`

	ContainerContainsQuery = `
		SELECT DISTINCT shipment_id FROM input_sea
		WHERE container_number ILIKE ?`
)

const (
	PingQuery = `SELECT 1`
)
