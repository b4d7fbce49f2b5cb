// Package policy decides what an authenticated caller may do. A Policy is
// built once per request from the bearer token and consulted by handlers.
package policy

import "hotel-platform/models"

type Capability string

const (
	ManageBranches      Capability = "branches.manage"
	CreateRooms         Capability = "rooms.create"
	EditRooms           Capability = "rooms.edit"
	DeleteRooms         Capability = "rooms.delete"
	ViewBranchRooms     Capability = "rooms.view_branch"
	ViewAllBookings     Capability = "bookings.view_all"
	UpdateBookingStatus Capability = "bookings.update_status"
	ExportBookings      Capability = "bookings.export"
	ManageMenu          Capability = "menu.manage"
	ViewAllOrders       Capability = "orders.view_all"
	UpdateOrderStatus   Capability = "orders.update_status"
	DeleteOrders        Capability = "orders.delete"
	ViewAllRequests     Capability = "service_requests.view_all"
	UpdateRequests      Capability = "service_requests.update"
	MakePayments        Capability = "payments.create"
	AssignRoles         Capability = "users.assign_roles"
)

var grants = map[string][]Capability{
	models.RoleAdmin: {
		ManageBranches, CreateRooms, EditRooms, DeleteRooms, ViewBranchRooms,
		ViewAllBookings, UpdateBookingStatus, ExportBookings,
		ManageMenu, ViewAllOrders, UpdateOrderStatus, DeleteOrders,
		ViewAllRequests, UpdateRequests, AssignRoles,
	},
	models.RoleManager: {
		EditRooms, ViewBranchRooms,
		ViewAllBookings, UpdateBookingStatus, ExportBookings,
		ManageMenu, ViewAllOrders, UpdateOrderStatus,
		ViewAllRequests, UpdateRequests,
	},
	models.RoleUser: {
		MakePayments,
	},
}

type Principal struct {
	UserID   uint
	Role     string
	BranchID *uint
}

type Policy struct {
	Principal
	caps map[Capability]bool
}

func New(p Principal) *Policy {
	caps := make(map[Capability]bool)
	for _, c := range grants[p.Role] {
		caps[c] = true
	}
	return &Policy{Principal: p, caps: caps}
}

func (p *Policy) Can(c Capability) bool {
	return p != nil && p.caps[c]
}

func (p *Policy) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

func (p *Policy) IsStaff() bool {
	return p != nil && (p.Role == models.RoleAdmin || p.Role == models.RoleManager)
}

// CanAccessBranch reports whether the caller may act on records of branchID.
// Admins span every branch; everyone else is bound to their own.
func (p *Policy) CanAccessBranch(branchID uint) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return p.BranchID != nil && *p.BranchID == branchID
}

// BranchScope is the branch filter for list queries: nil for admins, the
// caller's branch otherwise.
func (p *Policy) BranchScope() *uint {
	if p == nil || p.IsAdmin() {
		return nil
	}
	if p.BranchID == nil {
		none := uint(0)
		return &none
	}
	id := *p.BranchID
	return &id
}

func (p *Policy) Owns(userID uint) bool {
	return p != nil && p.UserID == userID
}

// CanActOnBooking allows the booking's owner and staff of its branch.
func (p *Policy) CanActOnBooking(b *models.Booking) bool {
	if p == nil || b == nil {
		return false
	}
	if p.Owns(b.UserID) {
		return true
	}
	return p.IsStaff() && p.CanAccessBranch(b.BranchID)
}
