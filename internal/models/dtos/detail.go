package dtos

import (
	gormModels "logitrack/tracker/internal/models/gorm"
	"logitrack/tracker/internal/timeline"
)

// ShipmentDetail is everything the detail view shows for one shipment.
type ShipmentDetail struct {
	Shipment  gormModels.Shipment        `json:"shipment"`
	InputSea  []gormModels.InputSea      `json:"input_sea"`
	InputAir  []gormModels.InputAir      `json:"input_air"`
	Milestone map[string]*string         `json:"milestones"`
	Notes     []gormModels.MilestoneNote `json:"notes"`
	Timeline  *timeline.Timeline         `json:"timeline,omitempty"`
}
