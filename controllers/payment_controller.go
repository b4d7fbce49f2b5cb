package controllers

import (
	"net/http"

	"hotel-platform/middleware"
	"hotel-platform/services"
	"hotel-platform/utils"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	PaymentSvc *services.PaymentService
	BookingSvc *services.BookingService
}

func NewPaymentController(svc *services.PaymentService, bookings *services.BookingService) *PaymentController {
	return &PaymentController{PaymentSvc: svc, BookingSvc: bookings}
}

type createPaymentRequest struct {
	createBookingRequest
	PaymentMethod string `json:"paymentMethod" binding:"required"`
	TransactionID string `json:"transactionId"`
}

// Create books the room and records the payment as one unit.
func (ctrl *PaymentController) Create(c *gin.Context) {
	var req createPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := bindBooking(c, &req.createBookingRequest)
	if !ok {
		return
	}

	payment, err := ctrl.PaymentSvc.Create(c.Request.Context(), services.CreatePaymentInput{
		Booking:       in,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"booking": payment.Booking, "payment": payment})
}

func (ctrl *PaymentController) Mine(c *gin.Context) {
	payments, err := ctrl.PaymentSvc.ListByUser(c.Request.Context(), middleware.CurrentPolicy(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payments)
}

// GetByBooking returns the receipt for a booking the caller owns.
func (ctrl *PaymentController) GetByBooking(c *gin.Context) {
	bookingID, ok := uintParam(c, "bookingId")
	if !ok {
		return
	}

	payment, err := ctrl.PaymentSvc.GetByBooking(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	p := middleware.CurrentPolicy(c)
	if payment.Booking == nil || !p.CanActOnBooking(payment.Booking) {
		forbidden(c)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payment)
}
