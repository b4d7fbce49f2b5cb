package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotel-platform/models"

	"gorm.io/gorm"
)

type MenuItemService struct {
	DB *gorm.DB
}

func NewMenuItemService(db *gorm.DB) *MenuItemService {
	return &MenuItemService{DB: db}
}

type MenuItemInput struct {
	Name         *string
	Category     *string
	Price        *float64
	Availability *string
	BranchID     *uint
}

func (s *MenuItemService) Create(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	item := models.MenuItem{
		Name:         deref(in.Name),
		Category:     deref(in.Category),
		Availability: deref(in.Availability),
	}
	if item.Name == "" || in.Price == nil || in.BranchID == nil || *in.BranchID == 0 {
		return nil, invalid("name, price and branchId are required")
	}
	if *in.Price < 0 {
		return nil, invalid("price must not be negative")
	}
	if item.Availability == "" {
		item.Availability = models.MenuAvailable
	}
	if !models.IsMenuAvailability(item.Availability) {
		return nil, invalid("invalid availability %q", item.Availability)
	}
	item.Price = models.RoundMoney(*in.Price)
	item.BranchID = *in.BranchID

	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		if isForeignKeyError(err) {
			return nil, notFound("branch")
		}
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	return &item, nil
}

func (s *MenuItemService) List(ctx context.Context, branchID *uint) ([]models.MenuItem, error) {
	q := s.DB.WithContext(ctx).Order("category, name")
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return items, nil
}

func (s *MenuItemService) Get(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("menu item")
		}
		return nil, fmt.Errorf("get menu item %d: %w", id, err)
	}
	return &item, nil
}

// Update changes name, category, price and availability. A menu item stays
// with the branch it was created for.
func (s *MenuItemService) Update(ctx context.Context, id uint, in MenuItemInput) (*models.MenuItem, error) {
	cols := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("name must not be empty")
		}
		cols["name"] = name
	}
	if in.Category != nil {
		cols["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, invalid("price must not be negative")
		}
		cols["price"] = models.RoundMoney(*in.Price)
	}
	if in.Availability != nil {
		if !models.IsMenuAvailability(*in.Availability) {
			return nil, invalid("invalid availability %q", *in.Availability)
		}
		cols["availability"] = *in.Availability
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if len(cols) > 0 {
		if err := s.DB.WithContext(ctx).Model(&models.MenuItem{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return nil, fmt.Errorf("update menu item %d: %w", id, err)
		}
	}
	return s.Get(ctx, id)
}

func (s *MenuItemService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if res.Error != nil {
		if isForeignKeyError(res.Error) {
			return fmt.Errorf("menu item %d %w by orders", id, ErrInUse)
		}
		return fmt.Errorf("delete menu item %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("menu item")
	}
	return nil
}
