package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		m    Movement
		want MovementStatus
	}{
		{
			"active assignment before due date",
			Movement{Type: MovementAssignment, Status: MovementActive, ScheduledReturnDate: now.Add(24 * time.Hour)},
			MovementActive,
		},
		{
			"active assignment past due date",
			Movement{Type: MovementAssignment, Status: MovementActive, ScheduledReturnDate: now.Add(-time.Hour)},
			MovementOverdue,
		},
		{
			"completed assignment past due date",
			Movement{Type: MovementAssignment, Status: MovementCompleted, ScheduledReturnDate: now.Add(-time.Hour)},
			MovementCompleted,
		},
		{
			"return-type movement never goes overdue",
			Movement{Type: MovementReturn, Status: MovementActive, ScheduledReturnDate: now.Add(-time.Hour)},
			MovementActive,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.m.EffectiveStatus(now))
		})
	}
}
