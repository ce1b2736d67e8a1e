package controllers

import (
	"net/http"

	"github.com/otoor/marketplace-backend/gateways/payment"
	"github.com/otoor/marketplace-backend/services"

	"github.com/gin-gonic/gin"
)

// PaymentController handles HTTP requests for the payment surface.
type PaymentController struct {
	paymentService services.PaymentService
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(paymentService services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

type listMethodsRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// ListMethods handles POST /payments/methods.
func (pc *PaymentController) ListMethods(ctx *gin.Context) {
	var req listMethodsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	methods, svcErr := pc.paymentService.ListMethods(ctx.Request.Context(), req.Amount)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"methods": methods})
}

type confirmPaymentRequest struct {
	PaymentID string `json:"payment_id"`
	InvoiceID string `json:"invoice_id"`
}

// Confirm handles POST /payments/confirm. The buyer lands here after the
// gateway redirect; the same lookup also backs the gateway callback.
func (pc *PaymentController) Confirm(ctx *gin.Context) {
	var req confirmPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	key, keyType := req.PaymentID, payment.KeyTypePaymentID
	if key == "" {
		key, keyType = req.InvoiceID, payment.KeyTypeInvoiceID
	}
	if key == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "payment_id or invoice_id is required"})
		return
	}

	order, status, svcErr := pc.paymentService.Confirm(ctx.Request.Context(), key, keyType)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order, "payment_status": status})
}

// Callback handles GET /payments/callback, the gateway's asynchronous
// redirect. Unauthenticated by design: the gateway calls it.
func (pc *PaymentController) Callback(ctx *gin.Context) {
	key, keyType := ctx.Query("paymentId"), payment.KeyTypePaymentID
	if key == "" {
		key, keyType = ctx.Query("invoiceId"), payment.KeyTypeInvoiceID
	}
	if key == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "paymentId or invoiceId is required"})
		return
	}

	order, status, svcErr := pc.paymentService.Confirm(ctx.Request.Context(), key, keyType)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order, "payment_status": status})
}
