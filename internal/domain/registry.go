package domain

import "time"

// RegistryReason classifies a damage/maintenance report.
type RegistryReason string

const (
	ReasonMalfunction  RegistryReason = "malfunction"
	ReasonDecommission RegistryReason = "decommission"
	ReasonMaintenance  RegistryReason = "maintenance"
	ReasonRepair       RegistryReason = "repair"
)

func (r RegistryReason) Valid() bool {
	switch r {
	case ReasonMalfunction, ReasonDecommission, ReasonMaintenance, ReasonRepair:
		return true
	}
	return false
}

// RegistryStatus tracks the handling of a report. Transitions are manual.
type RegistryStatus string

const (
	RegistryPending     RegistryStatus = "pending"
	RegistryInProgress  RegistryStatus = "in_progress"
	RegistryResolved    RegistryStatus = "resolved"
	RegistryIrreparable RegistryStatus = "irreparable"
)

func (s RegistryStatus) Valid() bool {
	switch s {
	case RegistryPending, RegistryInProgress, RegistryResolved, RegistryIrreparable:
		return true
	}
	return false
}

// RegistryEntry is a standalone damage/maintenance/decommission report.
// It never feeds back into Equipment.State.
type RegistryEntry struct {
	ID           string         `json:"id"`
	EquipmentID  string         `json:"equipment_id"`
	Reason       RegistryReason `json:"reason"`
	Description  string         `json:"description"`
	DateOccurred time.Time      `json:"date_occurred"`
	ReportedBy   string         `json:"reported_by,omitempty"`
	Status       RegistryStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`

	EquipmentName string `json:"equipment_name,omitempty"`
}
