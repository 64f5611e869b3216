package storage

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssessmentRecord stores one assessment. The headline figures are
// flattened into columns for querying; the full input and result are kept as
// JSON snapshots so that a record can be replayed exactly.
type AssessmentRecord struct {
	gorm.Model
	AssessmentID string    `gorm:"uniqueIndex;size:36" json:"assessment_id"`
	FacilityName string    `gorm:"index" json:"facility_name"`
	AssessedAt   time.Time `gorm:"index" json:"assessed_at"`

	// PV
	PVSizeKw        float64 `json:"pv_size_kw"`
	PVInitialCost   float64 `json:"pv_initial_cost"`
	PVLifecycleCost float64 `json:"pv_lifecycle_cost"`
	PVNPV           float64 `json:"pv_npv"`
	PVIRR           float64 `json:"pv_irr"`
	PVIRRStatus     string  `json:"pv_irr_status"`

	// Diesel
	GeneratorSizeKw     float64 `json:"generator_size_kw"`
	DieselInitialCost   float64 `json:"diesel_initial_cost"`
	DieselLifecycleCost float64 `json:"diesel_lifecycle_cost"`
	DieselNPV           float64 `json:"diesel_npv"`
	DieselIRR           float64 `json:"diesel_irr"`
	DieselIRRStatus     string  `json:"diesel_irr_status"`

	LowerLifecycleCost string `gorm:"index" json:"lower_lifecycle_cost"`

	Profile     datatypes.JSON `json:"profile"`
	Assumptions datatypes.JSON `json:"assumptions"`
	Result      datatypes.JSON `json:"result"`
}
