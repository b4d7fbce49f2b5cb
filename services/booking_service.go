package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-platform/events"
	"hotel-platform/metrics"
	"hotel-platform/models"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingService struct {
	DB     *gorm.DB
	Events events.Publisher
	Log    logrus.FieldLogger
}

func NewBookingService(db *gorm.DB, pub events.Publisher, log logrus.FieldLogger) *BookingService {
	return &BookingService{DB: db, Events: pub, Log: log}
}

type CreateBookingInput struct {
	CustomerName string
	BranchID     uint
	RoomID       uint
	UserID       uint
	CheckIn      time.Time
	CheckOut     time.Time
	TotalAmount  float64
	FoodItems    json.RawMessage
}

func (in CreateBookingInput) validate() error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return invalid("customerName is required")
	}
	if in.RoomID == 0 {
		return invalid("roomId is required")
	}
	if in.CheckIn.IsZero() || in.CheckOut.IsZero() {
		return invalid("checkIn and checkOut are required")
	}
	if !(models.DateRange{Start: in.CheckIn, End: in.CheckOut}).Valid() {
		return invalid("checkOut must be after checkIn")
	}
	if in.TotalAmount < 0 {
		return invalid("totalAmount must not be negative")
	}
	if len(in.FoodItems) > 0 && !json.Valid(in.FoodItems) {
		return invalid("foodItems must be valid JSON")
	}
	return nil
}

// BookingFilter narrows list queries. A nil BranchID means every branch.
type BookingFilter struct {
	BranchID *uint
	Status   string
}

// Create checks availability and inserts the booking in one transaction.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var booking *models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := reserveRoom(tx, in)
		if err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		recordRejection(err)
		return nil, err
	}

	metrics.IncBookingCreated("booking")
	events.Emit(s.Events, s.Log, events.BookingCreated, booking)
	return booking, nil
}

// reserveRoom must run inside a transaction on validated input. The room row
// lock serialises concurrent reservations of one room until commit.
func reserveRoom(tx *gorm.DB, in CreateBookingInput) (*models.Booking, error) {
	var room models.Room
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, in.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("room")
		}
		return nil, fmt.Errorf("lock room %d: %w", in.RoomID, err)
	}
	if in.BranchID != 0 && in.BranchID != room.BranchID {
		return nil, invalid("room %d does not belong to branch %d", room.ID, in.BranchID)
	}
	if room.Status != models.RoomAvailable {
		return nil, ErrRoomUnavailable
	}

	stay := models.DateRange{Start: in.CheckIn, End: in.CheckOut}
	conflict, err := hasOverlap(tx, room.ID, stay, 0)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrRoomBooked
	}

	booking := models.Booking{
		CustomerName: strings.TrimSpace(in.CustomerName),
		CheckIn:      datatypes.Date(in.CheckIn),
		CheckOut:     datatypes.Date(in.CheckOut),
		TotalAmount:  models.RoundMoney(in.TotalAmount),
		Status:       models.BookingConfirmed,
		UserID:       in.UserID,
		RoomID:       room.ID,
		BranchID:     room.BranchID,
	}
	if len(in.FoodItems) > 0 {
		booking.FoodItems = datatypes.JSON(in.FoodItems)
	}
	if err := tx.Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return &booking, nil
}

// hasOverlap reports whether any non-cancelled booking of the room other
// than exclude intersects stay.
func hasOverlap(tx *gorm.DB, roomID uint, stay models.DateRange, exclude uint) (bool, error) {
	q := tx.Model(&models.Booking{}).
		Where("room_id = ? AND status <> ? AND check_in < ? AND check_out > ?",
			roomID, models.BookingCancelled, stay.End, stay.Start)
	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check overlap for room %d: %w", roomID, err)
	}
	return count > 0, nil
}

func recordRejection(err error) {
	switch {
	case errors.Is(err, ErrRoomBooked):
		metrics.IncBookingRejected("overlap")
	case errors.Is(err, ErrRoomUnavailable):
		metrics.IncBookingRejected("room_status")
	}
}

func (s *BookingService) List(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	q := s.DB.WithContext(ctx).Preload("Room").Preload("Branch").Order("check_in DESC, id DESC")
	if f.BranchID != nil {
		q = q.Where("branch_id = ?", *f.BranchID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) ListByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.DB.WithContext(ctx).
		Preload("Room").Preload("Branch").
		Where("user_id = ?", userID).
		Order("check_in DESC, id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("list bookings for user %d: %w", userID, err)
	}
	return bookings, nil
}

// Active returns the caller's most recent confirmed booking.
func (s *BookingService) Active(ctx context.Context, userID uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.WithContext(ctx).
		Preload("Room").Preload("Branch").
		Where("user_id = ? AND status = ?", userID, models.BookingConfirmed).
		Order("check_in DESC, id DESC").
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("active booking")
		}
		return nil, fmt.Errorf("find active booking: %w", err)
	}
	return &booking, nil
}

func (s *BookingService) Get(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.WithContext(ctx).Preload("Room").Preload("Branch").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("booking")
		}
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return &booking, nil
}

// UpdateStatus changes a booking's status. Reviving a cancelled booking
// re-runs the room status and overlap checks under the room lock.
func (s *BookingService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Booking, error) {
	if !models.IsBookingStatus(status) {
		return nil, invalid("invalid booking status %q", status)
	}

	var booking models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("booking")
			}
			return fmt.Errorf("get booking %d: %w", id, err)
		}
		if booking.Status == status {
			return nil
		}

		if booking.Status == models.BookingCancelled {
			var room models.Room
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, booking.RoomID).Error; err != nil {
				return fmt.Errorf("lock room %d: %w", booking.RoomID, err)
			}
			if room.Status != models.RoomAvailable {
				return ErrRoomUnavailable
			}
			conflict, err := hasOverlap(tx, booking.RoomID, booking.Stay(), booking.ID)
			if err != nil {
				return err
			}
			if conflict {
				return ErrRoomBooked
			}
		}

		if err := tx.Model(&booking).Update("status", status).Error; err != nil {
			return fmt.Errorf("update booking %d status: %w", id, err)
		}
		booking.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	key := events.BookingStatusChanged
	if status == models.BookingCancelled {
		key = events.BookingCancelled
	}
	events.Emit(s.Events, s.Log, key, booking)
	return &booking, nil
}

func (s *BookingService) Cancel(ctx context.Context, id uint) (*models.Booking, error) {
	return s.UpdateStatus(ctx, id, models.BookingCancelled)
}
