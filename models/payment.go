package models

import "time"

const (
	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
	PaymentFailed    = "Failed"
)

// Payment is immutable once created.
type Payment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BookingID     uint      `gorm:"column:booking_id;not null;uniqueIndex" json:"bookingId"`
	Amount        float64   `gorm:"column:amount;type:decimal(10,2);not null" json:"amount"`
	PaymentMethod string    `gorm:"column:payment_method;size:50;not null" json:"paymentMethod"`
	TransactionID string    `gorm:"column:transaction_id;size:128;not null;uniqueIndex" json:"transactionId"`
	Status        string    `gorm:"column:status;size:16;not null;default:Pending" json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"booking,omitempty"`
}
