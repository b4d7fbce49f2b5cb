package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotel-platform/models"

	"gorm.io/gorm"
)

type BranchService struct {
	DB *gorm.DB
}

func NewBranchService(db *gorm.DB) *BranchService {
	return &BranchService{DB: db}
}

type BranchInput struct {
	Name    *string
	Address *string
	City    *string
	State   *string
	Country *string
	ZipCode *string
	Phone   *string
}

func (in BranchInput) columns() map[string]interface{} {
	out := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = strings.TrimSpace(*v)
		}
	}
	set("name", in.Name)
	set("address", in.Address)
	set("city", in.City)
	set("state", in.State)
	set("country", in.Country)
	set("zip_code", in.ZipCode)
	set("phone", in.Phone)
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func (s *BranchService) Create(ctx context.Context, in BranchInput) (*models.Branch, error) {
	branch := models.Branch{
		Name:    deref(in.Name),
		Address: deref(in.Address),
		City:    deref(in.City),
		State:   deref(in.State),
		Country: deref(in.Country),
		ZipCode: deref(in.ZipCode),
		Phone:   deref(in.Phone),
	}
	if branch.Name == "" {
		return nil, invalid("name is required")
	}
	if err := s.DB.WithContext(ctx).Create(&branch).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("branch %q %w", branch.Name, ErrDuplicate)
		}
		return nil, fmt.Errorf("create branch: %w", err)
	}
	return &branch, nil
}

func (s *BranchService) List(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	if err := s.DB.WithContext(ctx).Order("name").Find(&branches).Error; err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return branches, nil
}

func (s *BranchService) Get(ctx context.Context, id uint) (*models.Branch, error) {
	var branch models.Branch
	if err := s.DB.WithContext(ctx).First(&branch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("branch")
		}
		return nil, fmt.Errorf("get branch %d: %w", id, err)
	}
	return &branch, nil
}

func (s *BranchService) Update(ctx context.Context, id uint, in BranchInput) (*models.Branch, error) {
	cols := in.columns()
	if name, ok := cols["name"]; ok && name == "" {
		return nil, invalid("name must not be empty")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if len(cols) > 0 {
		if err := s.DB.WithContext(ctx).Model(&models.Branch{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			if isDuplicateKey(err) {
				return nil, fmt.Errorf("branch name %w", ErrDuplicate)
			}
			return nil, fmt.Errorf("update branch %d: %w", id, err)
		}
	}
	return s.Get(ctx, id)
}

func (s *BranchService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Branch{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete branch %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("branch")
	}
	return nil
}
