package services

import (
	"context"

	"github.com/otoor/marketplace-backend/common/errors"
	"github.com/otoor/marketplace-backend/gateways/payment"
	"github.com/otoor/marketplace-backend/models"

	"go.uber.org/zap"
)

// PaymentService defines the payment surface: listing methods and applying
// the gateway's reported state to orders.
type PaymentService interface {
	ListMethods(ctx context.Context, amount float64) ([]payment.Method, *errors.Error)

	// Confirm fetches the gateway's view of a payment by key and applies it
	// to the matching order. Used by both the gateway callback and the
	// buyer-initiated confirm endpoint.
	Confirm(ctx context.Context, key, keyType string) (*models.Order, string, *errors.Error)
}

type paymentServiceImpl struct {
	gateway  payment.Gateway
	orders   OrderService
	currency string
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(gateway payment.Gateway, orders OrderService, currency string, logger *zap.Logger) PaymentService {
	return &paymentServiceImpl{gateway: gateway, orders: orders, currency: currency, logger: logger}
}

func (s *paymentServiceImpl) ListMethods(ctx context.Context, amount float64) ([]payment.Method, *errors.Error) {
	if amount <= 0 {
		return nil, errors.BadRequest("Amount must be greater than zero")
	}
	methods, err := s.gateway.ListMethods(ctx, amount, s.currency)
	if err != nil {
		s.logger.Error("Failed to list payment methods", zap.Error(err))
		return nil, gatewayError("Could not list payment methods", err)
	}
	return methods, nil
}

func (s *paymentServiceImpl) Confirm(ctx context.Context, key, keyType string) (*models.Order, string, *errors.Error) {
	if key == "" {
		return nil, "", errors.BadRequest("A payment key is required")
	}
	if keyType != payment.KeyTypePaymentID && keyType != payment.KeyTypeInvoiceID {
		return nil, "", errors.BadRequest("Unknown payment key type")
	}

	status, err := s.gateway.GetStatus(ctx, key, keyType)
	if err != nil {
		s.logger.Error("Failed to fetch payment status",
			zap.String("key_type", keyType), zap.Error(err))
		return nil, "", gatewayError("Could not fetch the payment status", err)
	}

	order, appErr := s.orders.SyncPayment(ctx, status)
	if appErr != nil {
		return nil, "", appErr
	}

	reported := status.TransactionStatus
	if reported == "" {
		reported = status.InvoiceStatus
	}
	return order, reported, nil
}
