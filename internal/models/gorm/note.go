package gorm

// MilestoneNote is a free-text note attached to one step of a shipment.
// Active keeps the raw sheet value; readers decide truthiness.
type MilestoneNote struct {
	ID         uint64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ShipmentID string  `gorm:"column:shipment_id;type:text;not null;index" json:"shipment_id"`
	Mode       *string `gorm:"column:mode;type:text" json:"mode"`
	Step       *string `gorm:"column:step;type:text" json:"step"`
	Note       *string `gorm:"column:note;type:text" json:"note"`
	NoteType   *string `gorm:"column:note_type;type:text" json:"note_type"`
	NoteTime   *string `gorm:"column:note_time;type:text" json:"note_time"`
	Active     *string `gorm:"column:active;type:text" json:"active"`
}

func (MilestoneNote) TableName() string {
	return "milestones_notes"
}

// AllModels lists every table model, in dependency order, for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&Shipment{},
		&InputSea{},
		&InputAir{},
		&MilestoneSea{},
		&MilestoneAir{},
		&MilestoneNote{},
	}
}
