package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

const (
	OrderPending   = "PENDING"
	OrderPreparing = "PREPARING"
	OrderServed    = "SERVED"
	OrderCancelled = "CANCELLED"
)

type FoodOrder struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	BookingID   uint        `gorm:"column:booking_id;not null;index" json:"booking_id"`
	UserID      uint        `gorm:"column:user_id;index" json:"userId"`
	BranchID    uint        `gorm:"column:branch_id;not null;index" json:"branch_id"`
	TotalAmount float64     `gorm:"column:total_amount;type:decimal(10,2);not null" json:"total_amount"`
	Status      string      `gorm:"column:status;size:32;not null;default:PENDING" json:"status"`
	OrderTime   time.Time   `gorm:"column:order_time;not null" json:"order_time"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"booking,omitempty"`
}

func (FoodOrder) TableName() string { return "orders" }

func IsOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderPreparing, OrderServed, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is immutable once created; TotalPrice is always derived.
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"column:order_id;not null;index" json:"order_id"`
	MenuItemID uint      `gorm:"column:menu_item_id;not null;index" json:"menu_item_id"`
	Quantity   int       `gorm:"column:quantity;not null" json:"quantity"`
	PriceEach  float64   `gorm:"column:price_each;type:decimal(10,2);not null" json:"price_each"`
	TotalPrice float64   `gorm:"column:total_price;type:decimal(10,2);not null" json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`

	MenuItem *MenuItem `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) BeforeSave(tx *gorm.DB) error {
	i.TotalPrice = LineTotal(i.Quantity, i.PriceEach)
	return nil
}

func LineTotal(quantity int, priceEach float64) float64 {
	return RoundMoney(float64(quantity) * priceEach)
}

func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
