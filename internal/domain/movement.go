package domain

import "time"

// MovementType distinguishes loans handed out from stock credited back.
type MovementType string

const (
	MovementAssignment MovementType = "assignment"
	MovementReturn     MovementType = "return"
)

func (t MovementType) Valid() bool {
	return t == MovementAssignment || t == MovementReturn
}

// MovementStatus is the stored lifecycle of a movement. Overdue is never
// persisted; it is computed at read time from the scheduled return date.
type MovementStatus string

const (
	MovementActive    MovementStatus = "active"
	MovementCompleted MovementStatus = "completed"
	MovementOverdue   MovementStatus = "overdue"
)

// Movement is one loan or return transaction against an equipment entry.
type Movement struct {
	ID                  string         `json:"id"`
	EquipmentID         string         `json:"equipment_id"`
	TeacherID           string         `json:"teacher_id"`
	ClassroomID         string         `json:"classroom_id,omitempty"`
	Type                MovementType   `json:"movement_type"`
	Quantity            int            `json:"quantity"`
	Description         string         `json:"description,omitempty"`
	ScheduledReturnDate time.Time      `json:"scheduled_return_date"`
	ActualReturnDate    *time.Time     `json:"actual_return_date,omitempty"`
	Status              MovementStatus `json:"status"`
	CreatedBy           string         `json:"created_by,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`

	// Denormalized display fields, populated by list queries.
	EquipmentName string `json:"equipment_name,omitempty"`
	TeacherName   string `json:"teacher_name,omitempty"`
}

// EffectiveStatus returns the status as it should be presented: an active
// assignment past its scheduled return date reads as overdue.
func (m *Movement) EffectiveStatus(now time.Time) MovementStatus {
	if m.Status == MovementActive && m.Type == MovementAssignment && m.ScheduledReturnDate.Before(now) {
		return MovementOverdue
	}
	return m.Status
}
