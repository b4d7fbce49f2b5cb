package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"hotel-platform/models"

	"gorm.io/gorm"
)

type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

type RoomFilter struct {
	BranchID *uint
	Status   string
	Type     string
}

type CreateRoomInput struct {
	RoomNumber string
	Type       string
	Price      float64
	Status     string
	BranchID   uint
}

// RoomUpdate holds the mutable room fields. BranchID is deliberately absent.
type RoomUpdate struct {
	RoomNumber *string
	Type       *string
	Price      *float64
	Status     *string
}

func (s *RoomService) Create(ctx context.Context, in CreateRoomInput) (*models.Room, error) {
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	in.Type = strings.TrimSpace(in.Type)
	if in.RoomNumber == "" || in.Type == "" || in.BranchID == 0 {
		return nil, invalid("roomNumber, type and branchId are required")
	}
	if in.Price < 0 {
		return nil, invalid("price must not be negative")
	}
	if in.Status == "" {
		in.Status = models.RoomAvailable
	}
	if !models.IsRoomStatus(in.Status) {
		return nil, invalid("invalid room status %q", in.Status)
	}

	db := s.DB.WithContext(ctx)
	var branchCount int64
	if err := db.Model(&models.Branch{}).Where("id = ?", in.BranchID).Count(&branchCount).Error; err != nil {
		return nil, fmt.Errorf("check branch %d: %w", in.BranchID, err)
	}
	if branchCount == 0 {
		return nil, notFound("branch")
	}

	room := models.Room{
		RoomNumber: in.RoomNumber,
		Type:       in.Type,
		Price:      models.RoundMoney(in.Price),
		Status:     in.Status,
		BranchID:   in.BranchID,
	}
	if err := db.Create(&room).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("room %s in branch %d %w", room.RoomNumber, room.BranchID, ErrDuplicate)
		}
		return nil, fmt.Errorf("create room: %w", err)
	}
	return &room, nil
}

func (s *RoomService) List(ctx context.Context, f RoomFilter) ([]models.Room, error) {
	q := s.DB.WithContext(ctx).Preload("Branch").Order("branch_id, room_number")
	if f.BranchID != nil {
		q = q.Where("branch_id = ?", *f.BranchID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomService) Get(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).Preload("Branch").First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("room")
		}
		return nil, fmt.Errorf("get room %d: %w", id, err)
	}
	return &room, nil
}

// Types returns the distinct room types of a branch in name order.
func (s *RoomService) Types(ctx context.Context, branchID uint) ([]string, error) {
	var types []string
	err := s.DB.WithContext(ctx).Model(&models.Room{}).
		Where("branch_id = ?", branchID).
		Distinct().
		Order("type").
		Pluck("type", &types).Error
	if err != nil {
		return nil, fmt.Errorf("list room types for branch %d: %w", branchID, err)
	}
	return types, nil
}

// Available lists rooms of a branch and type with no non-cancelled booking
// overlapping stay. Rooms whose own status is not Available are excluded.
func (s *RoomService) Available(ctx context.Context, branchID uint, roomType string, stay models.DateRange) ([]models.Room, error) {
	if branchID == 0 || strings.TrimSpace(roomType) == "" {
		return nil, invalid("branchId and type are required")
	}
	if !stay.Valid() {
		return nil, invalid("checkOut must be after checkIn")
	}

	db := s.DB.WithContext(ctx)
	var rooms []models.Room
	if err := db.Where("branch_id = ? AND type = ?", branchID, roomType).Order("room_number").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	if len(rooms) == 0 {
		return []models.Room{}, nil
	}

	ids := make([]uint, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}

	var bookings []models.Booking
	err := db.Select("id", "room_id", "check_in", "check_out", "status").
		Where("room_id IN ? AND status <> ? AND check_in < ? AND check_out > ?",
			ids, models.BookingCancelled, stay.End, stay.Start).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("list overlapping bookings: %w", err)
	}

	return FreeRooms(rooms, bookings, stay), nil
}

// FreeRooms filters rooms down to those that are Available and held by none
// of the given bookings during stay.
func FreeRooms(rooms []models.Room, bookings []models.Booking, stay models.DateRange) []models.Room {
	taken := make(map[uint]struct{}, len(bookings))
	for _, b := range bookings {
		if b.Holds() && b.Stay().Overlaps(stay) {
			taken[b.RoomID] = struct{}{}
		}
	}

	free := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		if r.Status != models.RoomAvailable {
			continue
		}
		if _, ok := taken[r.ID]; ok {
			continue
		}
		free = append(free, r)
	}
	sort.SliceStable(free, func(i, j int) bool { return free[i].RoomNumber < free[j].RoomNumber })
	return free
}

func (s *RoomService) Update(ctx context.Context, id uint, in RoomUpdate) (*models.Room, error) {
	updates := map[string]interface{}{}
	if in.RoomNumber != nil {
		v := strings.TrimSpace(*in.RoomNumber)
		if v == "" {
			return nil, invalid("roomNumber must not be empty")
		}
		updates["room_number"] = v
	}
	if in.Type != nil {
		v := strings.TrimSpace(*in.Type)
		if v == "" {
			return nil, invalid("type must not be empty")
		}
		updates["type"] = v
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, invalid("price must not be negative")
		}
		updates["price"] = models.RoundMoney(*in.Price)
	}
	if in.Status != nil {
		if !models.IsRoomStatus(*in.Status) {
			return nil, invalid("invalid room status %q", *in.Status)
		}
		updates["status"] = *in.Status
	}

	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return room, nil
	}

	if err := s.DB.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("room number in branch %d %w", room.BranchID, ErrDuplicate)
		}
		return nil, fmt.Errorf("update room %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

func (s *RoomService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Room{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete room %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("room")
	}
	return nil
}
