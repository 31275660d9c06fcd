package gorm

// MilestoneSea holds the ten sea steps plus the step6 transshipment extras.
type MilestoneSea struct {
	ShipmentID    string  `gorm:"column:shipment_id;primaryKey;type:text" json:"shipment_id"`
	Step1Status   *string `gorm:"column:step1_status;type:text" json:"step1_status"`
	Step1Date     *string `gorm:"column:step1_date;type:text" json:"step1_date"`
	Step2Status   *string `gorm:"column:step2_status;type:text" json:"step2_status"`
	Step2Date     *string `gorm:"column:step2_date;type:text" json:"step2_date"`
	Step3Status   *string `gorm:"column:step3_status;type:text" json:"step3_status"`
	Step3Date     *string `gorm:"column:step3_date;type:text" json:"step3_date"`
	Step4Status   *string `gorm:"column:step4_status;type:text" json:"step4_status"`
	Step4Date     *string `gorm:"column:step4_date;type:text" json:"step4_date"`
	Step5Status   *string `gorm:"column:step5_status;type:text" json:"step5_status"`
	Step5Date     *string `gorm:"column:step5_date;type:text" json:"step5_date"`
	Step6Status   *string `gorm:"column:step6_status;type:text" json:"step6_status"`
	Step6Date     *string `gorm:"column:step6_date;type:text" json:"step6_date"`
	Step6x1Status *string `gorm:"column:step6_1_status;type:text" json:"step6_1_status"`
	Step6x1Date   *string `gorm:"column:step6_1_date;type:text" json:"step6_1_date"`
	Step6x2Status *string `gorm:"column:step6_2_status;type:text" json:"step6_2_status"`
	Step6x2Date   *string `gorm:"column:step6_2_date;type:text" json:"step6_2_date"`
	Step6x3Status *string `gorm:"column:step6_3_status;type:text" json:"step6_3_status"`
	Step6x3Date   *string `gorm:"column:step6_3_date;type:text" json:"step6_3_date"`
	Step7Status   *string `gorm:"column:step7_status;type:text" json:"step7_status"`
	Step7Date     *string `gorm:"column:step7_date;type:text" json:"step7_date"`
	Step8Status   *string `gorm:"column:step8_status;type:text" json:"step8_status"`
	Step8Date     *string `gorm:"column:step8_date;type:text" json:"step8_date"`
	Step9Status   *string `gorm:"column:step9_status;type:text" json:"step9_status"`
	Step9Date     *string `gorm:"column:step9_date;type:text" json:"step9_date"`
	Step10Status  *string `gorm:"column:step10_status;type:text" json:"step10_status"`
	Step10Date    *string `gorm:"column:step10_date;type:text" json:"step10_date"`
}

func (MilestoneSea) TableName() string {
	return "milestones_sea"
}

// MilestoneAir holds the eight air steps plus the step5 transit extras.
type MilestoneAir struct {
	ShipmentID    string  `gorm:"column:shipment_id;primaryKey;type:text" json:"shipment_id"`
	Step1Status   *string `gorm:"column:step1_status;type:text" json:"step1_status"`
	Step1Date     *string `gorm:"column:step1_date;type:text" json:"step1_date"`
	Step2Status   *string `gorm:"column:step2_status;type:text" json:"step2_status"`
	Step2Date     *string `gorm:"column:step2_date;type:text" json:"step2_date"`
	Step3Status   *string `gorm:"column:step3_status;type:text" json:"step3_status"`
	Step3Date     *string `gorm:"column:step3_date;type:text" json:"step3_date"`
	Step4Status   *string `gorm:"column:step4_status;type:text" json:"step4_status"`
	Step4Date     *string `gorm:"column:step4_date;type:text" json:"step4_date"`
	Step5Status   *string `gorm:"column:step5_status;type:text" json:"step5_status"`
	Step5Date     *string `gorm:"column:step5_date;type:text" json:"step5_date"`
	Step5x1Status *string `gorm:"column:step5_1_status;type:text" json:"step5_1_status"`
	Step5x1Date   *string `gorm:"column:step5_1_date;type:text" json:"step5_1_date"`
	Step5x2Status *string `gorm:"column:step5_2_status;type:text" json:"step5_2_status"`
	Step5x2Date   *string `gorm:"column:step5_2_date;type:text" json:"step5_2_date"`
	Step5x3Status *string `gorm:"column:step5_3_status;type:text" json:"step5_3_status"`
	Step5x3Date   *string `gorm:"column:step5_3_date;type:text" json:"step5_3_date"`
	Step5x4Status *string `gorm:"column:step5_4_status;type:text" json:"step5_4_status"`
	Step5x4Date   *string `gorm:"column:step5_4_date;type:text" json:"step5_4_date"`
	Step6Status   *string `gorm:"column:step6_status;type:text" json:"step6_status"`
	Step6Date     *string `gorm:"column:step6_date;type:text" json:"step6_date"`
	Step7Status   *string `gorm:"column:step7_status;type:text" json:"step7_status"`
	Step7Date     *string `gorm:"column:step7_date;type:text" json:"step7_date"`
	Step8Status   *string `gorm:"column:step8_status;type:text" json:"step8_status"`
	Step8Date     *string `gorm:"column:step8_date;type:text" json:"step8_date"`
}

func (MilestoneAir) TableName() string {
	return "milestones_air"
}
