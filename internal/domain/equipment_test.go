package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampAvailability(t *testing.T) {
	e := &Equipment{Quantity: 10, AvailableQuantity: 3}

	tests := []struct {
		name  string
		delta int
		want  int
	}{
		{"debit within stock", -2, 1},
		{"credit within stock", 4, 7},
		{"over-debit clamps to zero", -10, 0},
		{"over-credit clamps to quantity", 100, 10},
		{"zero delta", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ClampAvailability(tt.delta))
		})
	}
}

func TestEquipmentStateValid(t *testing.T) {
	assert.True(t, StateAvailable.Valid())
	assert.True(t, StateDecommissioned.Valid())
	assert.False(t, EquipmentState("lost").Valid())
	assert.False(t, EquipmentState("").Valid())
}
