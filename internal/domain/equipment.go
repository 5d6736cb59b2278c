package domain

import "time"

// EquipmentState is the lifecycle state of a catalog entry.
type EquipmentState string

const (
	StateAvailable      EquipmentState = "available"
	StateInUse          EquipmentState = "in_use"
	StateMaintenance    EquipmentState = "maintenance"
	StateDamaged        EquipmentState = "damaged"
	StateDecommissioned EquipmentState = "decommissioned"
)

func (s EquipmentState) Valid() bool {
	switch s {
	case StateAvailable, StateInUse, StateMaintenance, StateDamaged, StateDecommissioned:
		return true
	}
	return false
}

// Equipment is a catalog entry for one type/batch of physical device.
// Invariant: 0 <= AvailableQuantity <= Quantity.
type Equipment struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Description        string         `json:"description,omitempty"`
	Brand              string         `json:"brand,omitempty"`
	Model              string         `json:"model,omitempty"`
	SerialNumber       string         `json:"serial_number,omitempty"`
	Quantity           int            `json:"quantity"`
	AvailableQuantity  int            `json:"available_quantity"`
	State              EquipmentState `json:"state"`
	CategoryID         string         `json:"category_id,omitempty"`
	CategoryName       string         `json:"category_name,omitempty"`
	PurchaseDate       *time.Time     `json:"purchase_date,omitempty"`
	WarrantyExpiration *time.Time     `json:"warranty_expiration,omitempty"`
	CreatedBy          string         `json:"created_by,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// ClampAvailability returns the availability after applying delta, clamped
// to [0, Quantity]. Over-adjustment is silently absorbed.
func (e *Equipment) ClampAvailability(delta int) int {
	n := e.AvailableQuantity + delta
	if n < 0 {
		n = 0
	}
	if n > e.Quantity {
		n = e.Quantity
	}
	return n
}
