package controllers

import (
	"net/http"

	"hotel-platform/services"
	"hotel-platform/utils"

	"github.com/gin-gonic/gin"
)

type BranchController struct {
	BranchSvc *services.BranchService
}

func NewBranchController(svc *services.BranchService) *BranchController {
	return &BranchController{BranchSvc: svc}
}

type branchRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Country *string `json:"country"`
	ZipCode *string `json:"zipCode"`
	Phone   *string `json:"phone"`
}

func (r branchRequest) input() services.BranchInput {
	return services.BranchInput{
		Name:    r.Name,
		Address: r.Address,
		City:    r.City,
		State:   r.State,
		Country: r.Country,
		ZipCode: r.ZipCode,
		Phone:   r.Phone,
	}
}

func (ctrl *BranchController) Create(c *gin.Context) {
	var req branchRequest
	if !bindJSON(c, &req) {
		return
	}
	branch, err := ctrl.BranchSvc.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, branch)
}

func (ctrl *BranchController) List(c *gin.Context) {
	branches, err := ctrl.BranchSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, branches)
}

func (ctrl *BranchController) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	branch, err := ctrl.BranchSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, branch)
}

func (ctrl *BranchController) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req branchRequest
	if !bindJSON(c, &req) {
		return
	}
	branch, err := ctrl.BranchSvc.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, branch)
}

func (ctrl *BranchController) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.BranchSvc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id})
}
