package controllers

import (
	"net/http"

	"hotel-platform/middleware"
	"hotel-platform/models"
	"hotel-platform/services"
	"hotel-platform/utils"

	"github.com/gin-gonic/gin"
)

type RoomController struct {
	RoomSvc *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{RoomSvc: svc}
}

type createRoomRequest struct {
	RoomNumber string  `json:"roomNumber" binding:"required"`
	Type       string  `json:"type" binding:"required"`
	Price      float64 `json:"price" binding:"gte=0"`
	Status     string  `json:"status"`
	BranchID   uint    `json:"branchId" binding:"required"`
}

type updateRoomRequest struct {
	RoomNumber *string  `json:"roomNumber"`
	Type       *string  `json:"type"`
	Price      *float64 `json:"price"`
	Status     *string  `json:"status"`
	BranchID   *uint    `json:"branchId"`
}

func (ctrl *RoomController) Create(c *gin.Context) {
	var req createRoomRequest
	if !bindJSON(c, &req) {
		return
	}

	room, err := ctrl.RoomSvc.Create(c.Request.Context(), services.CreateRoomInput{
		RoomNumber: req.RoomNumber,
		Type:       req.Type,
		Price:      req.Price,
		Status:     req.Status,
		BranchID:   req.BranchID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

// List shows managers their own branch and guests only Available rooms.
func (ctrl *RoomController) List(c *gin.Context) {
	p := middleware.CurrentPolicy(c)
	var filter services.RoomFilter
	switch {
	case p.IsAdmin():
	case p.Role == models.RoleManager:
		filter.BranchID = p.BranchScope()
	default:
		filter.Status = models.RoomAvailable
	}

	rooms, err := ctrl.RoomSvc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func (ctrl *RoomController) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	room, err := ctrl.RoomSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// ByBranch is the staff view of one branch's rooms.
func (ctrl *RoomController) ByBranch(c *gin.Context) {
	branchID, ok := uintParam(c, "branchId")
	if !ok {
		return
	}
	if !middleware.CurrentPolicy(c).CanAccessBranch(branchID) {
		forbidden(c)
		return
	}
	ctrl.listBranch(c, branchID)
}

// AllByBranch lists every room of a branch regardless of status.
func (ctrl *RoomController) AllByBranch(c *gin.Context) {
	branchID, ok := uintParam(c, "branchId")
	if !ok {
		return
	}
	ctrl.listBranch(c, branchID)
}

func (ctrl *RoomController) listBranch(c *gin.Context, branchID uint) {
	rooms, err := ctrl.RoomSvc.List(c.Request.Context(), services.RoomFilter{BranchID: &branchID})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func (ctrl *RoomController) Types(c *gin.Context) {
	branchID, ok := uintParam(c, "branchId")
	if !ok {
		return
	}
	types, err := ctrl.RoomSvc.Types(c.Request.Context(), branchID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, types)
}

// Available answers GET /rooms/available?branchId=&type=&checkIn=&checkOut=.
func (ctrl *RoomController) Available(c *gin.Context) {
	branchID, ok := optionalUintQuery(c, "branchId")
	if !ok {
		return
	}
	if branchID == nil {
		badRequest(c, "branchId is required")
		return
	}
	checkIn, err := utils.ParseDate(c.Query("checkIn"))
	if err != nil {
		badRequest(c, "checkIn: "+err.Error())
		return
	}
	checkOut, err := utils.ParseDate(c.Query("checkOut"))
	if err != nil {
		badRequest(c, "checkOut: "+err.Error())
		return
	}

	rooms, err := ctrl.RoomSvc.Available(c.Request.Context(), *branchID, c.Query("type"),
		models.DateRange{Start: checkIn, End: checkOut})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

func (ctrl *RoomController) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req updateRoomRequest
	if !bindJSON(c, &req) {
		return
	}

	room, err := ctrl.RoomSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !middleware.CurrentPolicy(c).CanAccessBranch(room.BranchID) {
		forbidden(c)
		return
	}
	if req.BranchID != nil && *req.BranchID != room.BranchID {
		badRequest(c, "branchId cannot be changed")
		return
	}

	updated, err := ctrl.RoomSvc.Update(c.Request.Context(), id, services.RoomUpdate{
		RoomNumber: req.RoomNumber,
		Type:       req.Type,
		Price:      req.Price,
		Status:     req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, updated)
}

func (ctrl *RoomController) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.RoomSvc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}
