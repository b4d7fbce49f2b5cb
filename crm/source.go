package crm

import (
	"context"

	"gorm.io/gorm"

	"hotel-platform/models"
)

// GormSource reads sync input straight from the application database.
type GormSource struct {
	DB *gorm.DB
}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{DB: db}
}

func (s *GormSource) Branches(ctx context.Context) ([]models.Branch, error) {
	var out []models.Branch
	err := s.DB.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *GormSource) Rooms(ctx context.Context) ([]models.Room, error) {
	var out []models.Room
	err := s.DB.WithContext(ctx).Preload("Branch").Order("id").Find(&out).Error
	return out, err
}

func (s *GormSource) Bookings(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	err := s.DB.WithContext(ctx).Preload("Branch").Preload("Room").Order("id").Find(&out).Error
	return out, err
}

func (s *GormSource) MenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var out []models.MenuItem
	err := s.DB.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *GormSource) FoodOrders(ctx context.Context) ([]models.FoodOrder, error) {
	var out []models.FoodOrder
	err := s.DB.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *GormSource) OrderItems(ctx context.Context) ([]models.OrderItem, error) {
	var out []models.OrderItem
	err := s.DB.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *GormSource) ServiceRequests(ctx context.Context) ([]models.ServiceRequest, error) {
	var out []models.ServiceRequest
	err := s.DB.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *GormSource) SetBookingExternalID(ctx context.Context, bookingID uint, externalID string) error {
	return s.DB.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", bookingID).
		UpdateColumn("external_id", externalID).Error
}
