package controllers

import (
	"net/http"

	"hotel-platform/middleware"
	"hotel-platform/services"
	"hotel-platform/utils"

	"github.com/gin-gonic/gin"
)

type MenuItemController struct {
	MenuSvc *services.MenuItemService
}

func NewMenuItemController(svc *services.MenuItemService) *MenuItemController {
	return &MenuItemController{MenuSvc: svc}
}

type menuItemRequest struct {
	Name         *string  `json:"name"`
	Category     *string  `json:"category"`
	Price        *float64 `json:"price"`
	Availability *string  `json:"availability"`
	BranchID     *uint    `json:"branchId"`
}

func (r menuItemRequest) input() services.MenuItemInput {
	return services.MenuItemInput{
		Name:         r.Name,
		Category:     r.Category,
		Price:        r.Price,
		Availability: r.Availability,
		BranchID:     r.BranchID,
	}
}

func (ctrl *MenuItemController) Create(c *gin.Context) {
	var req menuItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.BranchID != nil && !middleware.CurrentPolicy(c).CanAccessBranch(*req.BranchID) {
		forbidden(c)
		return
	}

	item, err := ctrl.MenuSvc.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, item)
}

// List returns menu items, optionally for a single branch (?branchId=).
func (ctrl *MenuItemController) List(c *gin.Context) {
	branchID, ok := optionalUintQuery(c, "branchId")
	if !ok {
		return
	}
	items, err := ctrl.MenuSvc.List(c.Request.Context(), branchID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, items)
}

func (ctrl *MenuItemController) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	item, err := ctrl.MenuSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, item)
}

func (ctrl *MenuItemController) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req menuItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if !ctrl.authorizeItem(c, id) {
		return
	}
	item, err := ctrl.MenuSvc.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, item)
}

func (ctrl *MenuItemController) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if !ctrl.authorizeItem(c, id) {
		return
	}
	if err := ctrl.MenuSvc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}

func (ctrl *MenuItemController) authorizeItem(c *gin.Context, id uint) bool {
	item, err := ctrl.MenuSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !middleware.CurrentPolicy(c).CanAccessBranch(item.BranchID) {
		forbidden(c)
		return false
	}
	return true
}
