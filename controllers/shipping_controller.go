package controllers

import (
	"net/http"
	"strconv"

	"github.com/otoor/marketplace-backend/services"

	"github.com/gin-gonic/gin"
)

// ShippingController handles HTTP requests for the courier quote surface.
type ShippingController struct {
	shippingService services.ShippingService
}

// NewShippingController creates a new ShippingController.
func NewShippingController(shippingService services.ShippingService) *ShippingController {
	return &ShippingController{shippingService: shippingService}
}

// QuotePartners handles GET /shipping/partners.
func (sc *ShippingController) QuotePartners(ctx *gin.Context) {
	originCityID := ctx.Query("origin_city_id")
	destCityID := ctx.Query("destination_city_id")
	if originCityID == "" || destCityID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "origin_city_id and destination_city_id are required"})
		return
	}

	paymentMode := ctx.DefaultQuery("payment_mode", "prepaid")
	weight, _ := strconv.ParseFloat(ctx.DefaultQuery("weight", "1"), 64)
	orderTotal, _ := strconv.ParseFloat(ctx.DefaultQuery("order_total", "0"), 64)
	boxCount, _ := strconv.Atoi(ctx.DefaultQuery("box_count", "1"))

	quotes, svcErr := sc.shippingService.QuotePartners(ctx.Request.Context(),
		originCityID, destCityID, paymentMode, weight, orderTotal, boxCount)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"partners": quotes})
}
