package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-platform/events"
	"hotel-platform/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type FoodOrderService struct {
	DB     *gorm.DB
	Events events.Publisher
	Log    logrus.FieldLogger
}

func NewFoodOrderService(db *gorm.DB, pub events.Publisher, log logrus.FieldLogger) *FoodOrderService {
	return &FoodOrderService{DB: db, Events: pub, Log: log}
}

type OrderLine struct {
	MenuItemID uint
	Quantity   int
	PriceEach  float64
}

type CreateFoodOrderInput struct {
	BookingID uint
	BranchID  uint
	UserID    uint
	Status    string
	Items     []OrderLine
}

func (in CreateFoodOrderInput) validate() error {
	if in.BookingID == 0 || in.BranchID == 0 {
		return invalid("booking_id and branch_id are required")
	}
	if len(in.Items) == 0 {
		return invalid("items must not be empty")
	}
	for i, line := range in.Items {
		if line.MenuItemID == 0 {
			return invalid("items[%d].menu_item_id is required", i)
		}
		if line.Quantity <= 0 {
			return invalid("items[%d].quantity must be greater than zero", i)
		}
		if line.PriceEach < 0 {
			return invalid("items[%d].price_each must not be negative", i)
		}
	}
	if in.Status != "" && !models.IsOrderStatus(in.Status) {
		return invalid("invalid order status %q", in.Status)
	}
	return nil
}

// OrderTotal sums price_each * quantity over the lines, rounded to cents.
func OrderTotal(lines []OrderLine) float64 {
	var total float64
	for _, l := range lines {
		total += models.LineTotal(l.Quantity, l.PriceEach)
	}
	return models.RoundMoney(total)
}

// Create inserts the order and its items in one transaction. Client prices
// are taken as given.
func (s *FoodOrderService) Create(ctx context.Context, in CreateFoodOrderInput) (*models.FoodOrder, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.OrderPending
	}

	order := models.FoodOrder{
		BookingID:   in.BookingID,
		UserID:      in.UserID,
		BranchID:    in.BranchID,
		TotalAmount: OrderTotal(in.Items),
		Status:      status,
		OrderTime:   time.Now().UTC(),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(&order).Error; err != nil {
			if isForeignKeyError(err) {
				return notFound("booking")
			}
			return fmt.Errorf("create order: %w", err)
		}

		items := make([]models.OrderItem, 0, len(in.Items))
		for _, line := range in.Items {
			items = append(items, models.OrderItem{
				OrderID:    order.ID,
				MenuItemID: line.MenuItemID,
				Quantity:   line.Quantity,
				PriceEach:  line.PriceEach,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			if isForeignKeyError(err) {
				return notFound("menu item")
			}
			return fmt.Errorf("create order items: %w", err)
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Emit(s.Events, s.Log, events.FoodOrderCreated, order)
	return &order, nil
}

func (s *FoodOrderService) List(ctx context.Context, branchID *uint) ([]models.FoodOrder, error) {
	q := s.DB.WithContext(ctx).Preload("Items.MenuItem").Order("order_time DESC, id DESC")
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	var orders []models.FoodOrder
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list food orders: %w", err)
	}
	return orders, nil
}

func (s *FoodOrderService) Get(ctx context.Context, id uint) (*models.FoodOrder, error) {
	var order models.FoodOrder
	if err := s.DB.WithContext(ctx).Preload("Items.MenuItem").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("food order")
		}
		return nil, fmt.Errorf("get food order %d: %w", id, err)
	}
	return &order, nil
}

func (s *FoodOrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.FoodOrder, error) {
	if !models.IsOrderStatus(status) {
		return nil, invalid("invalid order status %q", status)
	}
	res := s.DB.WithContext(ctx).Model(&models.FoodOrder{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("update food order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Delete removes the order and its items together.
func (s *FoodOrderService) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("delete items of order %d: %w", id, err)
		}
		res := tx.Delete(&models.FoodOrder{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete food order %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("food order")
		}
		return nil
	})
}
