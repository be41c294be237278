package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRole(t *testing.T) {
	assert.False(t, RoleFranchisor.BranchScoped())
	assert.True(t, RoleBranchOwner.BranchScoped())
	assert.True(t, RoleManager.BranchScoped())
	assert.True(t, RoleStaff.BranchScoped())

	for _, r := range []UserRole{RoleFranchisor, RoleBranchOwner, RoleManager, RoleStaff} {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, UserRole("ADMIN").Valid())
	assert.False(t, UserRole("").Valid())
}

func TestBranchStatusTerminal(t *testing.T) {
	assert.False(t, BranchPending.Terminal())
	assert.True(t, BranchActive.Terminal())
	assert.True(t, BranchRejected.Terminal())
}

func TestRequestStatusTerminal(t *testing.T) {
	assert.False(t, RequestPending.Terminal())
	assert.True(t, RequestApproved.Terminal())
	assert.True(t, RequestRejected.Terminal())
}

func TestPaymentModeValid(t *testing.T) {
	assert.True(t, PaymentCash.Valid())
	assert.True(t, PaymentCard.Valid())
	assert.True(t, PaymentOnline.Valid())
	assert.False(t, PaymentMode("cheque").Valid())
	assert.False(t, PaymentMode("").Valid())
}

func TestBranchInventoryIsLow(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		reorder  float64
		want     bool
	}{
		{"above threshold", 10, 5, false},
		{"at threshold", 5, 5, true},
		{"below threshold", 2, 5, true},
		{"zero quantity with threshold", 0, 5, true},
		{"no threshold configured", 0, 0, false},
		{"plenty with no threshold", 100, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := BranchInventory{Quantity: tt.quantity, ReorderLevel: tt.reorder}
			assert.Equal(t, tt.want, row.IsLow())
		})
	}
}
