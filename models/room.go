package models

import "time"

const (
	RoomAvailable   = "Available"
	RoomOccupied    = "Occupied"
	RoomMaintenance = "Maintenance"
)

// Room belongs to exactly one branch; BranchID is never updated after insert.
type Room struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RoomNumber string    `gorm:"column:room_number;size:50;not null;uniqueIndex:idx_rooms_branch_number" json:"roomNumber"`
	Type       string    `gorm:"column:type;size:100;not null;index" json:"type"`
	Price      float64   `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	Status     string    `gorm:"column:status;size:32;not null;default:Available" json:"status"`
	BranchID   uint      `gorm:"column:branch_id;not null;uniqueIndex:idx_rooms_branch_number" json:"branchId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Branch *Branch `gorm:"foreignKey:BranchID;constraint:OnDelete:CASCADE" json:"branch,omitempty"`
}

func IsRoomStatus(s string) bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance:
		return true
	}
	return false
}
