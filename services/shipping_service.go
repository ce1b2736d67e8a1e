package services

import (
	"context"

	"github.com/otoor/marketplace-backend/cache"
	"github.com/otoor/marketplace-backend/common/errors"
	"github.com/otoor/marketplace-backend/config"
	"github.com/otoor/marketplace-backend/gateways/courier"
	"github.com/otoor/marketplace-backend/models"
	"github.com/otoor/marketplace-backend/repository"

	"go.uber.org/zap"
)

// ShippingDecision is the resolved shipping choice for one checkout. It is
// derived once before the order transaction and never mutated afterward.
type ShippingDecision struct {
	Method        string
	Fee           float64
	PartnerID     string
	WarehouseCode string
	OriginCityID  string
	Deferred      bool
	PaymentMode   string // "cod" or "prepaid", as the courier gateway sees it
}

// ShippingService defines the interface for shipping decisions and the
// partner quote surface.
type ShippingService interface {
	// QuotePartners lists courier offers for a lane, served from the Redis
	// cache when fresh.
	QuotePartners(ctx context.Context, originCityID, destCityID, paymentMode string, weightKg, orderTotal float64, boxCount int) ([]courier.Quote, *errors.Error)

	// Resolve validates the shipping fields of a checkout and produces the
	// decision. For the courier path it re-validates a chosen partner
	// against a fresh quote and resolves the origin warehouse. Rejections
	// happen here, before any local write.
	Resolve(ctx context.Context, req *models.CreateOrderRequest, items []models.OrderItem, weightKg, payable float64) (*ShippingDecision, *errors.Error)
}

type shippingServiceImpl struct {
	gateway    courier.Gateway
	warehouses repository.WarehouseRepository
	quotes     *cache.QuoteCache
	cfg        *config.Config
	logger     *zap.Logger
}

// NewShippingService creates a new ShippingService.
func NewShippingService(gateway courier.Gateway, warehouses repository.WarehouseRepository, quotes *cache.QuoteCache, cfg *config.Config, logger *zap.Logger) ShippingService {
	return &shippingServiceImpl{
		gateway:    gateway,
		warehouses: warehouses,
		quotes:     quotes,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *shippingServiceImpl) QuotePartners(ctx context.Context, originCityID, destCityID, paymentMode string, weightKg, orderTotal float64, boxCount int) ([]courier.Quote, *errors.Error) {
	if s.quotes != nil {
		cached, err := s.quotes.Get(ctx, originCityID, destCityID, paymentMode, weightKg)
		if err != nil {
			s.logger.Warn("Quote cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	quotes, err := s.gateway.QuoteCouriers(ctx, courier.QuoteRequest{
		OriginCityID:      originCityID,
		DestinationCityID: destCityID,
		PaymentMode:       paymentMode,
		WeightKg:          weightKg,
		OrderTotal:        orderTotal,
		BoxCount:          boxCount,
	})
	if err != nil {
		s.logger.Error("Courier quote failed", zap.Error(err))
		return nil, errors.BadGateway("Could not fetch courier offers", err)
	}

	if s.quotes != nil {
		if err := s.quotes.Set(ctx, originCityID, destCityID, paymentMode, weightKg, quotes); err != nil {
			s.logger.Warn("Quote cache write failed", zap.Error(err))
		}
	}
	return quotes, nil
}

func (s *shippingServiceImpl) Resolve(ctx context.Context, req *models.CreateOrderRequest, items []models.OrderItem, weightKg, payable float64) (*ShippingDecision, *errors.Error) {
	switch req.ShippingMethod {
	case models.ShippingStandard:
		return &ShippingDecision{Method: req.ShippingMethod, Fee: s.cfg.StandardShippingFee}, nil
	case models.ShippingExpress:
		return &ShippingDecision{Method: req.ShippingMethod, Fee: s.cfg.ExpressShippingFee}, nil
	case models.ShippingCourier:
		return s.resolveCourier(ctx, req, items, weightKg, payable)
	default:
		return nil, errors.BadRequest("Unknown shipping method")
	}
}

func (s *shippingServiceImpl) resolveCourier(ctx context.Context, req *models.CreateOrderRequest, items []models.OrderItem, weightKg, payable float64) (*ShippingDecision, *errors.Error) {
	if req.CityID == "" || req.RegionID == "" || req.CountryID == "" {
		return nil, errors.BadRequest("Courier shipping requires city, region and country identifiers")
	}
	if req.CourierPartnerID == "" && !req.DeferCourierSelection {
		return nil, errors.BadRequest("Choose a courier partner or defer the selection")
	}

	warehouse, appErr := s.resolveWarehouse(ctx, req, items)
	if appErr != nil {
		return nil, appErr
	}

	paymentMode := "prepaid"
	if req.PaymentMethod == models.PaymentCOD {
		paymentMode = "cod"
	}

	decision := &ShippingDecision{
		Method:        models.ShippingCourier,
		Fee:           s.cfg.StandardShippingFee,
		WarehouseCode: warehouse.Code,
		OriginCityID:  warehouse.CityID,
		Deferred:      req.DeferCourierSelection,
		PaymentMode:   paymentMode,
	}

	if req.DeferCourierSelection {
		return decision, nil
	}

	// Re-validate the chosen partner against a fresh quote, deliberately
	// bypassing the cache. Rejections here happen before any local write.
	quotes, err := s.gateway.QuoteCouriers(ctx, courier.QuoteRequest{
		OriginCityID:      warehouse.CityID,
		DestinationCityID: req.CityID,
		PaymentMode:       paymentMode,
		WeightKg:          weightKg,
		OrderTotal:        payable,
		BoxCount:          1,
	})
	if err != nil {
		s.logger.Error("Courier quote failed during partner validation", zap.Error(err))
		return nil, errors.BadGateway("Could not validate the courier partner", err)
	}

	var chosen *courier.Quote
	for i := range quotes {
		if quotes[i].PartnerID == req.CourierPartnerID {
			chosen = &quotes[i]
			break
		}
	}
	if chosen == nil {
		return nil, errors.Unprocessable("The selected courier partner does not serve this destination")
	}
	if paymentMode == "cod" && !chosen.SupportsCOD {
		return nil, errors.Unprocessable("The selected courier partner does not support cash on delivery")
	}
	if paymentMode == "prepaid" && !chosen.SupportsPrepaid {
		return nil, errors.Unprocessable("The selected courier partner does not support prepaid orders")
	}
	if chosen.MinAmount > 0 && payable < chosen.MinAmount {
		return nil, errors.Unprocessable("Order value is below the courier partner's minimum")
	}
	if chosen.MaxAmount > 0 && payable > chosen.MaxAmount {
		return nil, errors.Unprocessable("Order value exceeds the courier partner's maximum")
	}

	decision.PartnerID = chosen.PartnerID
	decision.Fee = chosen.Rate
	return decision, nil
}

// resolveWarehouse picks the origin warehouse: the explicit id, then the
// seller's default, then the seller's only warehouse when the whole cart
// belongs to one seller.
func (s *shippingServiceImpl) resolveWarehouse(ctx context.Context, req *models.CreateOrderRequest, items []models.OrderItem) (*models.SellerWarehouse, *errors.Error) {
	if req.WarehouseID != nil {
		warehouse, err := s.warehouses.FindByID(ctx, *req.WarehouseID)
		if err != nil {
			return nil, errors.BadRequest("Warehouse not found")
		}
		return warehouse, nil
	}

	sellers := make(map[uint]struct{})
	var sellerID uint
	for _, item := range items {
		sellers[item.SellerID] = struct{}{}
		sellerID = item.SellerID
	}
	if len(sellers) != 1 {
		return nil, errors.Unprocessable("A pickup warehouse is required for multi-seller courier orders")
	}

	if warehouse, err := s.warehouses.FindDefaultBySeller(ctx, sellerID); err == nil {
		return warehouse, nil
	}

	all, err := s.warehouses.FindBySeller(ctx, sellerID)
	if err != nil {
		s.logger.Error("Failed to load seller warehouses", zap.Error(err))
		return nil, errors.Internal("Failed to resolve the pickup warehouse", err)
	}
	if len(all) == 1 {
		return &all[0], nil
	}
	return nil, errors.Unprocessable("A pickup warehouse is required for courier shipping")
}
