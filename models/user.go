package models

import "time"

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	Email     string    `gorm:"column:email;size:150;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"column:password;size:255;not null" json:"-"` // bcrypt hash, never returned
	Role      string    `gorm:"column:role;size:16;not null;default:user" json:"role"`
	BranchID  *uint     `gorm:"column:branch_id;index" json:"branchId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func IsRole(s string) bool {
	switch s {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// AllModels lists tables in parent-to-child order for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&Branch{},
		&User{},
		&Room{},
		&Booking{},
		&Payment{},
		&MenuItem{},
		&FoodOrder{},
		&OrderItem{},
		&ServiceRequest{},
	}
}
