package gorm

import "github.com/shopspring/decimal"

// InputSea is one container line of a sea shipment.
type InputSea struct {
	ShipmentID      string              `gorm:"column:shipment_id;type:text;not null;uniqueIndex:ux_input_sea_key" json:"shipment_id"`
	ContainerNumber string              `gorm:"column:container_number;type:text;not null;uniqueIndex:ux_input_sea_key" json:"container_number"`
	Vessel          *string             `gorm:"column:vessel;type:text" json:"vessel"`
	Voyage          *string             `gorm:"column:voyage;type:text" json:"voyage"`
	SizeType        *string             `gorm:"column:size_type;type:text" json:"size_type"`
	WeightKg        decimal.NullDecimal `gorm:"column:weight_kg;type:numeric" json:"weight_kg"`
	VolumeCbm       decimal.NullDecimal `gorm:"column:volume_cbm;type:numeric" json:"volume_cbm"`
	SealNo          *string             `gorm:"column:seal_no;type:text" json:"seal_no"`
	Temperature     *string             `gorm:"column:temperature;type:text" json:"temperature"`
	Vent            *string             `gorm:"column:vent;type:text" json:"vent"`
}

func (InputSea) TableName() string {
	return "input_sea"
}

// InputAir is one flight leg of an air shipment.
type InputAir struct {
	ShipmentID         string              `gorm:"column:shipment_id;type:text;not null;uniqueIndex:ux_input_air_key" json:"shipment_id"`
	Flight             string              `gorm:"column:flight;type:text;not null;uniqueIndex:ux_input_air_key" json:"flight"`
	UnitKind           *string             `gorm:"column:unit_kind;type:text" json:"unit_kind"`
	Pieces             decimal.NullDecimal `gorm:"column:pieces;type:numeric" json:"pieces"`
	VolumeCbm          decimal.NullDecimal `gorm:"column:volume_cbm;type:numeric" json:"volume_cbm"`
	WeightKg           decimal.NullDecimal `gorm:"column:weight_kg;type:numeric" json:"weight_kg"`
	ChargeableWeightKg decimal.NullDecimal `gorm:"column:chargeable_weight_kg;type:numeric" json:"chargeable_weight_kg"`
}

func (InputAir) TableName() string {
	return "input_air"
}
