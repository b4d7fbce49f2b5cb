package policy

import (
	"testing"

	"hotel-platform/models"

	"github.com/stretchr/testify/assert"
)

func branch(id uint) *uint { return &id }

func TestCapabilitiesByRole(t *testing.T) {
	admin := New(Principal{UserID: 1, Role: models.RoleAdmin})
	manager := New(Principal{UserID: 2, Role: models.RoleManager, BranchID: branch(5)})
	user := New(Principal{UserID: 3, Role: models.RoleUser, BranchID: branch(5)})

	assert.True(t, admin.Can(DeleteRooms))
	assert.False(t, manager.Can(DeleteRooms))
	assert.True(t, manager.Can(EditRooms))
	assert.False(t, user.Can(EditRooms))
	assert.True(t, user.Can(MakePayments))
	assert.False(t, admin.Can(MakePayments))
	assert.False(t, New(Principal{Role: "ghost"}).Can(ViewAllBookings))

	var nilPolicy *Policy
	assert.False(t, nilPolicy.Can(ViewAllBookings))
}

func TestBranchScoping(t *testing.T) {
	admin := New(Principal{Role: models.RoleAdmin})
	manager := New(Principal{Role: models.RoleManager, BranchID: branch(5)})
	orphan := New(Principal{Role: models.RoleManager})

	assert.True(t, admin.CanAccessBranch(99))
	assert.Nil(t, admin.BranchScope())

	assert.True(t, manager.CanAccessBranch(5))
	assert.False(t, manager.CanAccessBranch(6))
	assert.Equal(t, uint(5), *manager.BranchScope())

	assert.False(t, orphan.CanAccessBranch(0))
	assert.Equal(t, uint(0), *orphan.BranchScope())
}

func TestCanActOnBooking(t *testing.T) {
	b := &models.Booking{UserID: 3, BranchID: 5}

	assert.True(t, New(Principal{UserID: 3, Role: models.RoleUser, BranchID: branch(5)}).CanActOnBooking(b))
	assert.False(t, New(Principal{UserID: 4, Role: models.RoleUser, BranchID: branch(5)}).CanActOnBooking(b))
	assert.True(t, New(Principal{UserID: 8, Role: models.RoleManager, BranchID: branch(5)}).CanActOnBooking(b))
	assert.False(t, New(Principal{UserID: 8, Role: models.RoleManager, BranchID: branch(6)}).CanActOnBooking(b))
	assert.True(t, New(Principal{UserID: 1, Role: models.RoleAdmin}).CanActOnBooking(b))
}
