package controllers

import (
	"net/http"

	"github.com/otoor/marketplace-backend/middleware"
	"github.com/otoor/marketplace-backend/models"
	"github.com/otoor/marketplace-backend/services"

	"github.com/gin-gonic/gin"
)

// WarehouseController handles HTTP requests for seller pickup locations.
type WarehouseController struct {
	warehouseService services.WarehouseService
}

// NewWarehouseController creates a new WarehouseController.
func NewWarehouseController(warehouseService services.WarehouseService) *WarehouseController {
	return &WarehouseController{warehouseService: warehouseService}
}

// Register handles POST /warehouses (seller only).
func (wc *WarehouseController) Register(ctx *gin.Context) {
	sellerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.RegisterWarehouseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	warehouse, svcErr := wc.warehouseService.Register(ctx.Request.Context(), sellerID, &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"warehouse": warehouse})
}

// List handles GET /warehouses (seller only).
func (wc *WarehouseController) List(ctx *gin.Context) {
	sellerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	warehouses, svcErr := wc.warehouseService.List(ctx.Request.Context(), sellerID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"warehouses": warehouses})
}

// SetDefault handles PATCH /warehouses/:id/default (seller only).
func (wc *WarehouseController) SetDefault(ctx *gin.Context) {
	sellerID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	warehouseID, ok := parsePathID(ctx, "id")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid warehouse id"})
		return
	}

	if svcErr := wc.warehouseService.SetDefault(ctx.Request.Context(), sellerID, warehouseID); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Default warehouse updated"})
}
