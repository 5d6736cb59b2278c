package domain

import "time"

// HistoryAction labels an audit record.
type HistoryAction string

const (
	ActionCreate   HistoryAction = "create"
	ActionUpdate   HistoryAction = "update"
	ActionDelete   HistoryAction = "delete"
	ActionLoan     HistoryAction = "loan"
	ActionReturn   HistoryAction = "return"
	ActionRegistry HistoryAction = "registry"
)

// HistoryEntry is an append-only audit record of an equipment mutation.
type HistoryEntry struct {
	ID          string         `json:"id"`
	EquipmentID string         `json:"equipment_id"`
	Action      HistoryAction  `json:"action"`
	OldValues   map[string]any `json:"old_values,omitempty"`
	NewValues   map[string]any `json:"new_values,omitempty"`
	ChangedBy   string         `json:"changed_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`

	EquipmentName string `json:"equipment_name,omitempty"`
	ChangedByName string `json:"changed_by_name,omitempty"`
}
