package models

import "time"

const (
	ServicePending    = "Pending"
	ServiceInProgress = "In Progress"
	ServiceCompleted  = "Completed"
)

type ServiceRequest struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	BranchID    uint       `gorm:"column:branch_id;not null;index" json:"branch_id"`
	RoomID      uint       `gorm:"column:room_id;not null" json:"room_id"`
	BookingID   *uint      `gorm:"column:booking_id;index" json:"booking_id"`
	GuestID     uint       `gorm:"column:guest_id;not null;index" json:"guest_id"`
	Type        string     `gorm:"column:type;size:100;not null" json:"type"`
	Description string     `gorm:"column:description;type:text;not null" json:"description"`
	Status      string     `gorm:"column:status;size:32;not null;default:Pending" json:"status"`
	RequestAt   time.Time  `gorm:"column:request_at;not null" json:"request_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func IsServiceStatus(s string) bool {
	switch s {
	case ServicePending, ServiceInProgress, ServiceCompleted:
		return true
	}
	return false
}
