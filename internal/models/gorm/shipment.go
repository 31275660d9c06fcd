package gorm

// Shipment is one row of the shipments sheet. Dates are kept as the text the
// sheet carries; ISO dates sort correctly as text.
type Shipment struct {
	ShipmentID         string  `gorm:"column:shipment_id;primaryKey;type:text" json:"shipment_id"`
	TrackingID         *string `gorm:"column:tracking_id;type:text" json:"tracking_id"`
	Mode               *string `gorm:"column:mode;type:text" json:"mode"`
	MBLNumber          *string `gorm:"column:mbl_number;type:text" json:"mbl_number"`
	HBLNumber          *string `gorm:"column:hbl_number;type:text" json:"hbl_number"`
	ScopeOfService     *string `gorm:"column:scope_of_service;type:text" json:"scope_of_service"`
	Carrier            *string `gorm:"column:carrier;type:text" json:"carrier"`
	ETDDate            *string `gorm:"column:etd_date;type:text" json:"etd_date"`
	ATDDate            *string `gorm:"column:atd_date;type:text" json:"atd_date"`
	ETADate            *string `gorm:"column:eta_date;type:text" json:"eta_date"`
	ATADate            *string `gorm:"column:ata_date;type:text" json:"ata_date"`
	PlaceOfReceipt     *string `gorm:"column:place_of_receipt;type:text" json:"place_of_receipt"`
	POLAOL             *string `gorm:"column:pol_aol;type:text" json:"pol_aol"`
	TransshipmentPorts *string `gorm:"column:transshipment_ports;type:text" json:"transshipment_ports"`
	PODAOD             *string `gorm:"column:pod_aod;type:text" json:"pod_aod"`
	PlaceOfDelivery    *string `gorm:"column:place_of_delivery;type:text" json:"place_of_delivery"`
	Route              *string `gorm:"column:route;type:text" json:"route"`
	Remarks            *string `gorm:"column:remarks;type:text" json:"remarks"`
}

func (Shipment) TableName() string {
	return "shipments"
}
