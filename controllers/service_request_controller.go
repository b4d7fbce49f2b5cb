package controllers

import (
	"net/http"

	"hotel-platform/middleware"
	"hotel-platform/services"
	"hotel-platform/utils"

	"github.com/gin-gonic/gin"
)

type ServiceRequestController struct {
	RequestSvc *services.ServiceRequestService
}

func NewServiceRequestController(svc *services.ServiceRequestService) *ServiceRequestController {
	return &ServiceRequestController{RequestSvc: svc}
}

type createServiceRequest struct {
	Type        string `json:"type" binding:"required"`
	Description string `json:"description" binding:"required"`
	BranchID    uint   `json:"branch_id" binding:"required"`
	RoomID      uint   `json:"room_id" binding:"required"`
	BookingID   *uint  `json:"booking_id"`
}

func (ctrl *ServiceRequestController) Create(c *gin.Context) {
	var req createServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := ctrl.RequestSvc.Create(c.Request.Context(), services.CreateServiceRequestInput{
		Type:        req.Type,
		Description: req.Description,
		BranchID:    req.BranchID,
		RoomID:      req.RoomID,
		BookingID:   req.BookingID,
		GuestID:     middleware.CurrentPolicy(c).UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, created)
}

func (ctrl *ServiceRequestController) Mine(c *gin.Context) {
	reqs, err := ctrl.RequestSvc.ListByGuest(c.Request.Context(), middleware.CurrentPolicy(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, reqs)
}

func (ctrl *ServiceRequestController) List(c *gin.Context) {
	reqs, err := ctrl.RequestSvc.List(c.Request.Context(), middleware.CurrentPolicy(c).BranchScope())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, reqs)
}

func (ctrl *ServiceRequestController) UpdateStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	existing, err := ctrl.RequestSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !middleware.CurrentPolicy(c).CanAccessBranch(existing.BranchID) {
		forbidden(c)
		return
	}

	updated, err := ctrl.RequestSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, updated)
}
