package controllers

import (
	"net/http"

	"hotel-platform/middleware"
	"hotel-platform/services"
	"hotel-platform/utils"

	"github.com/gin-gonic/gin"
)

type FoodOrderController struct {
	OrderSvc   *services.FoodOrderService
	BookingSvc *services.BookingService
}

func NewFoodOrderController(svc *services.FoodOrderService, bookings *services.BookingService) *FoodOrderController {
	return &FoodOrderController{OrderSvc: svc, BookingSvc: bookings}
}

type orderLineRequest struct {
	MenuItemID uint    `json:"menu_item_id" binding:"required"`
	Quantity   int     `json:"quantity" binding:"gt=0"`
	PriceEach  float64 `json:"price_each" binding:"gte=0"`
}

type createFoodOrderRequest struct {
	BookingID uint               `json:"booking_id" binding:"required"`
	BranchID  uint               `json:"branch_id" binding:"required"`
	Status    string             `json:"status"`
	Items     []orderLineRequest `json:"items" binding:"required,min=1,dive"`
}

// Create places an order against a booking the caller may act on. The
// order's branch must be the booking's branch.
func (ctrl *FoodOrderController) Create(c *gin.Context) {
	var req createFoodOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.BookingID == 0 {
		badRequest(c, "booking_id is required")
		return
	}

	p := middleware.CurrentPolicy(c)
	booking, err := ctrl.BookingSvc.Get(c.Request.Context(), req.BookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !p.CanActOnBooking(booking) {
		forbidden(c)
		return
	}
	if req.BranchID == 0 {
		req.BranchID = booking.BranchID
	}
	if req.BranchID != booking.BranchID {
		badRequest(c, "branch_id does not match the booking")
		return
	}

	lines := make([]services.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, services.OrderLine{MenuItemID: it.MenuItemID, Quantity: it.Quantity, PriceEach: it.PriceEach})
	}

	order, err := ctrl.OrderSvc.Create(c.Request.Context(), services.CreateFoodOrderInput{
		BookingID: req.BookingID,
		BranchID:  req.BranchID,
		UserID:    p.UserID,
		Status:    req.Status,
		Items:     lines,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, order)
}

func (ctrl *FoodOrderController) List(c *gin.Context) {
	orders, err := ctrl.OrderSvc.List(c.Request.Context(), middleware.CurrentPolicy(c).BranchScope())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, orders)
}

func (ctrl *FoodOrderController) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	order, err := ctrl.OrderSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	p := middleware.CurrentPolicy(c)
	if !p.Owns(order.UserID) && !(p.IsStaff() && p.CanAccessBranch(order.BranchID)) {
		forbidden(c)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, order)
}

func (ctrl *FoodOrderController) UpdateStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.OrderSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !middleware.CurrentPolicy(c).CanAccessBranch(order.BranchID) {
		forbidden(c)
		return
	}

	updated, err := ctrl.OrderSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, updated)
}

func (ctrl *FoodOrderController) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.OrderSvc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}
