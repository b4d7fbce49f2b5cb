package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	BookingConfirmed  = "Confirmed"
	BookingCancelled  = "Cancelled"
	BookingCheckedIn  = "Checked-In"
	BookingCheckedOut = "Checked-Out"
)

type Booking struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CustomerName string         `gorm:"column:customer_name;size:255;not null" json:"customerName"`
	CheckIn      datatypes.Date `gorm:"column:check_in;not null;index:idx_bookings_room_dates,priority:2" json:"checkIn"`
	CheckOut     datatypes.Date `gorm:"column:check_out;not null;index:idx_bookings_room_dates,priority:3" json:"checkOut"`
	FoodItems    datatypes.JSON `gorm:"column:food_items" json:"foodItems,omitempty"`
	TotalAmount  float64        `gorm:"column:total_amount;type:decimal(10,2);not null" json:"totalAmount"`
	Status       string         `gorm:"column:status;size:32;not null;default:Confirmed;index" json:"status"`
	UserID       uint           `gorm:"column:user_id;index" json:"userId"`
	RoomID       uint           `gorm:"column:room_id;not null;index:idx_bookings_room_dates,priority:1" json:"roomId"`
	BranchID     uint           `gorm:"column:branch_id;not null;index" json:"branchId"`
	ExternalID   *string        `gorm:"column:external_id;size:64" json:"externalId,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`

	Room   *Room   `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"room,omitempty"`
	Branch *Branch `gorm:"foreignKey:BranchID;constraint:OnDelete:CASCADE" json:"branch,omitempty"`
	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
}

func IsBookingStatus(s string) bool {
	switch s {
	case BookingConfirmed, BookingCancelled, BookingCheckedIn, BookingCheckedOut:
		return true
	}
	return false
}

// Holds reports whether the booking still occupies its room for its date range.
func (b Booking) Holds() bool {
	return b.Status != BookingCancelled
}

func (b Booking) Stay() DateRange {
	return DateRange{Start: time.Time(b.CheckIn), End: time.Time(b.CheckOut)}
}

// DateRange is a half-open [Start, End) interval of nights. A stay ending on
// the day another begins does not overlap it.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Valid() bool {
	return r.End.After(r.Start)
}

func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start.Before(o.End) && r.End.After(o.Start)
}

func (r DateRange) Nights() int {
	if !r.Valid() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours() / 24)
}
