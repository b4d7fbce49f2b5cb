package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"hotel-platform/middleware"
	"hotel-platform/models"
	"hotel-platform/services"
	"hotel-platform/utils"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type BookingController struct {
	BookingSvc *services.BookingService
	ExportSvc  *services.ExportService
}

func NewBookingController(svc *services.BookingService, export *services.ExportService) *BookingController {
	return &BookingController{BookingSvc: svc, ExportSvc: export}
}

type createBookingRequest struct {
	CustomerName string          `json:"customerName" binding:"required"`
	BranchID     uint            `json:"branchId"`
	RoomID       uint            `json:"roomId" binding:"required"`
	CheckIn      string          `json:"checkIn" binding:"required"`
	CheckOut     string          `json:"checkOut" binding:"required"`
	TotalAmount  float64         `json:"totalAmount" binding:"gte=0"`
	FoodItems    json.RawMessage `json:"foodItems"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (r createBookingRequest) input(userID uint) (services.CreateBookingInput, error) {
	checkIn, err := utils.ParseDate(r.CheckIn)
	if err != nil {
		return services.CreateBookingInput{}, fmt.Errorf("checkIn: %w", err)
	}
	checkOut, err := utils.ParseDate(r.CheckOut)
	if err != nil {
		return services.CreateBookingInput{}, fmt.Errorf("checkOut: %w", err)
	}
	foodItems := r.FoodItems
	if string(foodItems) == "null" {
		foodItems = nil
	}
	return services.CreateBookingInput{
		CustomerName: r.CustomerName,
		BranchID:     r.BranchID,
		RoomID:       r.RoomID,
		UserID:       userID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		TotalAmount:  r.TotalAmount,
		FoodItems:    foodItems,
	}, nil
}

// bindBooking decodes a booking request and applies the caller's branch
// restriction. It writes the error response itself.
func bindBooking(c *gin.Context, req *createBookingRequest) (services.CreateBookingInput, bool) {
	p := middleware.CurrentPolicy(c)
	in, err := req.input(p.UserID)
	if err != nil {
		badRequest(c, err.Error())
		return in, false
	}
	if p.Role == models.RoleManager && !p.CanAccessBranch(req.BranchID) {
		forbidden(c)
		return in, false
	}
	return in, true
}

func (ctrl *BookingController) Create(c *gin.Context) {
	var req createBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := bindBooking(c, &req)
	if !ok {
		return
	}

	booking, err := ctrl.BookingSvc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

func (ctrl *BookingController) List(c *gin.Context) {
	p := middleware.CurrentPolicy(c)
	filter := services.BookingFilter{BranchID: p.BranchScope(), Status: c.Query("status")}
	if filter.Status != "" && !models.IsBookingStatus(filter.Status) {
		badRequest(c, "invalid status")
		return
	}

	bookings, err := ctrl.BookingSvc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

func (ctrl *BookingController) Mine(c *gin.Context) {
	bookings, err := ctrl.BookingSvc.ListByUser(c.Request.Context(), middleware.CurrentPolicy(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

func (ctrl *BookingController) MyActive(c *gin.Context) {
	booking, err := ctrl.BookingSvc.Active(c.Request.Context(), middleware.CurrentPolicy(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// loadBooking fetches the booking named by :id if the caller may act on it.
func (ctrl *BookingController) loadBooking(c *gin.Context) (*models.Booking, bool) {
	id, ok := uintParam(c, "id")
	if !ok {
		return nil, false
	}
	booking, err := ctrl.BookingSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !middleware.CurrentPolicy(c).CanActOnBooking(booking) {
		forbidden(c)
		return nil, false
	}
	return booking, true
}

func (ctrl *BookingController) Get(c *gin.Context) {
	booking, ok := ctrl.loadBooking(c)
	if !ok {
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, ok := ctrl.loadBooking(c)
	if !ok {
		return
	}

	updated, err := ctrl.BookingSvc.UpdateStatus(c.Request.Context(), booking.ID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, updated)
}

func (ctrl *BookingController) Cancel(c *gin.Context) {
	booking, ok := ctrl.loadBooking(c)
	if !ok {
		return
	}

	updated, err := ctrl.BookingSvc.Cancel(c.Request.Context(), booking.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, updated)
}

// Export streams bookings as an XLSX workbook. Optional from/to bound the
// stay dates; admins may narrow to one branch with branchId.
func (ctrl *BookingController) Export(c *gin.Context) {
	p := middleware.CurrentPolicy(c)
	filter := services.ExportFilter{BranchID: p.BranchScope()}

	if filter.BranchID == nil {
		branchID, ok := optionalUintQuery(c, "branchId")
		if !ok {
			return
		}
		filter.BranchID = branchID
	}
	for name, dst := range map[string]*time.Time{"from": &filter.From, "to": &filter.To} {
		if raw := c.Query(name); raw != "" {
			d, err := utils.ParseDate(raw)
			if err != nil {
				badRequest(c, name+": "+err.Error())
				return
			}
			*dst = d
		}
	}

	data, err := ctrl.ExportSvc.BookingsXLSX(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
