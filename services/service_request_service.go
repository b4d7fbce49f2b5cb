package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-platform/events"
	"hotel-platform/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ServiceRequestService struct {
	DB     *gorm.DB
	Events events.Publisher
	Log    logrus.FieldLogger
	now    func() time.Time
}

func NewServiceRequestService(db *gorm.DB, pub events.Publisher, log logrus.FieldLogger) *ServiceRequestService {
	return &ServiceRequestService{DB: db, Events: pub, Log: log, now: time.Now}
}

type CreateServiceRequestInput struct {
	Type        string
	Description string
	BranchID    uint
	RoomID      uint
	BookingID   *uint
	GuestID     uint
}

func (s *ServiceRequestService) Create(ctx context.Context, in CreateServiceRequestInput) (*models.ServiceRequest, error) {
	in.Type = strings.TrimSpace(in.Type)
	in.Description = strings.TrimSpace(in.Description)
	if in.Type == "" || in.Description == "" || in.BranchID == 0 || in.RoomID == 0 {
		return nil, invalid("type, description, branch_id and room_id are required")
	}
	if in.BookingID != nil && *in.BookingID == 0 {
		in.BookingID = nil
	}

	req := models.ServiceRequest{
		BranchID:    in.BranchID,
		RoomID:      in.RoomID,
		BookingID:   in.BookingID,
		GuestID:     in.GuestID,
		Type:        in.Type,
		Description: in.Description,
		Status:      models.ServicePending,
		RequestAt:   s.now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(&req).Error; err != nil {
		return nil, fmt.Errorf("create service request: %w", err)
	}

	events.Emit(s.Events, s.Log, events.ServiceRequestCreated, req)
	return &req, nil
}

func (s *ServiceRequestService) ListByGuest(ctx context.Context, guestID uint) ([]models.ServiceRequest, error) {
	var reqs []models.ServiceRequest
	err := s.DB.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("request_at DESC, id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("list service requests for guest %d: %w", guestID, err)
	}
	return reqs, nil
}

func (s *ServiceRequestService) List(ctx context.Context, branchID *uint) ([]models.ServiceRequest, error) {
	q := s.DB.WithContext(ctx).Order("request_at DESC, id DESC")
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	var reqs []models.ServiceRequest
	if err := q.Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("list service requests: %w", err)
	}
	return reqs, nil
}

func (s *ServiceRequestService) Get(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := s.DB.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("service request")
		}
		return nil, fmt.Errorf("get service request %d: %w", id, err)
	}
	return &req, nil
}

// UpdateStatus moves a request between states. Completing stamps
// completed_at; moving back out of Completed clears it.
func (s *ServiceRequestService) UpdateStatus(ctx context.Context, id uint, status string) (*models.ServiceRequest, error) {
	if !models.IsServiceStatus(status) {
		return nil, invalid("invalid service request status %q", status)
	}

	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cols := map[string]interface{}{"status": status}
	if status == models.ServiceCompleted {
		now := s.now().UTC()
		cols["completed_at"] = now
		req.CompletedAt = &now
	} else {
		cols["completed_at"] = nil
		req.CompletedAt = nil
	}
	if err := s.DB.WithContext(ctx).Model(&models.ServiceRequest{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return nil, fmt.Errorf("update service request %d: %w", id, err)
	}
	req.Status = status

	events.Emit(s.Events, s.Log, events.ServiceRequestUpdated, req)
	return req, nil
}
