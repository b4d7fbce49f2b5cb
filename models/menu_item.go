package models

import "time"

const (
	MenuAvailable  = "Available"
	MenuOutOfStock = "Out of Stock"
)

type MenuItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"column:name;size:150;not null" json:"name"`
	Category     string    `gorm:"column:category;size:100" json:"category"`
	Price        float64   `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	Availability string    `gorm:"column:availability;size:32;not null;default:Available" json:"availability"`
	BranchID     uint      `gorm:"column:branch_id;not null;index" json:"branchId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Branch *Branch `gorm:"foreignKey:BranchID;constraint:OnDelete:CASCADE" json:"branch,omitempty"`
}

func IsMenuAvailability(s string) bool {
	return s == MenuAvailable || s == MenuOutOfStock
}
