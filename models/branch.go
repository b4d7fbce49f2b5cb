package models

import "time"

type Branch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:150;not null;uniqueIndex" json:"name"`
	Address   string    `gorm:"column:address;size:255" json:"address"`
	City      string    `gorm:"column:city;size:100" json:"city"`
	State     string    `gorm:"column:state;size:100" json:"state"`
	Country   string    `gorm:"column:country;size:100" json:"country"`
	ZipCode   string    `gorm:"column:zip_code;size:20" json:"zipCode"`
	Phone     string    `gorm:"column:phone;size:32" json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
