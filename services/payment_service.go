package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotel-platform/events"
	"hotel-platform/metrics"
	"hotel-platform/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PaymentService struct {
	DB     *gorm.DB
	Events events.Publisher
	Log    logrus.FieldLogger
}

func NewPaymentService(db *gorm.DB, pub events.Publisher, log logrus.FieldLogger) *PaymentService {
	return &PaymentService{DB: db, Events: pub, Log: log}
}

type CreatePaymentInput struct {
	Booking       CreateBookingInput
	PaymentMethod string
	TransactionID string
}

// Create books the room and records a completed payment for the booking's
// total in one transaction; a failed payment insert leaves no booking behind.
func (s *PaymentService) Create(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	if err := in.Booking.validate(); err != nil {
		return nil, err
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		return nil, invalid("paymentMethod is required")
	}
	txID := strings.TrimSpace(in.TransactionID)
	if txID == "" {
		txID = uuid.NewString()
	}

	var payment models.Payment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := reserveRoom(tx, in.Booking)
		if err != nil {
			return err
		}

		payment = models.Payment{
			BookingID:     booking.ID,
			Amount:        booking.TotalAmount,
			PaymentMethod: method,
			TransactionID: txID,
			Status:        models.PaymentCompleted,
		}
		if err := tx.Create(&payment).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicateTransaction
			}
			return fmt.Errorf("create payment: %w", err)
		}
		payment.Booking = booking
		return nil
	})
	if err != nil {
		recordRejection(err)
		return nil, err
	}

	metrics.IncBookingCreated("payment")
	events.Emit(s.Events, s.Log, events.BookingCreated, payment.Booking)
	events.Emit(s.Events, s.Log, events.PaymentCompleted, payment)
	return &payment, nil
}

func (s *PaymentService) ListByUser(ctx context.Context, userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.DB.WithContext(ctx).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("bookings.user_id = ?", userID).
		Preload("Booking.Room").Preload("Booking.Branch").
		Order("payments.created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("list payments for user %d: %w", userID, err)
	}
	return payments, nil
}

func (s *PaymentService) GetByBooking(ctx context.Context, bookingID uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.DB.WithContext(ctx).
		Preload("Booking.Room").Preload("Booking.Branch").
		Where("booking_id = ?", bookingID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("payment")
		}
		return nil, fmt.Errorf("get payment for booking %d: %w", bookingID, err)
	}
	return &payment, nil
}
