package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/otoor/marketplace-backend/common/errors"
	"github.com/otoor/marketplace-backend/models"
	"github.com/otoor/marketplace-backend/repository"

	"go.uber.org/zap"
)

// CouponService defines the interface for coupon business logic.
type CouponService interface {
	CreateCoupon(ctx context.Context, actorID uint, role string, req *models.CreateCouponRequest) (*models.Coupon, *errors.Error)
	DeactivateCoupon(ctx context.Context, actorID uint, role string, code string) *errors.Error
	ListCoupons(ctx context.Context, actorID uint, role string, page, limit int) ([]models.Coupon, int64, *errors.Error)
	ValidateCoupons(ctx context.Context, req *models.ValidateCouponsRequest) (*models.ValidateCouponsResponse, *errors.Error)

	// ValidateCodes checks that every submitted code exists and is still
	// usable, without looking at the cart. The order workflow runs this
	// first so a dead coupon is reported before the stock checks.
	ValidateCodes(ctx context.Context, codes []string) *errors.Error

	// PrepareForOrder resolves and allocates coupons against a cart without
	// touching usage counters. The order workflow calls Finalize only after
	// every step of the checkout has succeeded.
	PrepareForOrder(ctx context.Context, codes []string, lines []CartLine) ([]models.CouponApplication, *errors.Error)
	Finalize(ctx context.Context, apps []models.CouponApplication)
}

type couponServiceImpl struct {
	repo     repository.CouponRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewCouponService creates a new CouponService.
func NewCouponService(repo repository.CouponRepository, products repository.ProductRepository, logger *zap.Logger) CouponService {
	return &couponServiceImpl{repo: repo, products: products, logger: logger}
}

// CreateCoupon creates a coupon. Sellers can only create coupons scoped to
// themselves; global coupons are reserved for admins.
func (s *couponServiceImpl) CreateCoupon(ctx context.Context, actorID uint, role string, req *models.CreateCouponRequest) (*models.Coupon, *errors.Error) {
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return nil, errors.BadRequest("Expiry date must be in the future")
	}
	if req.Type == models.CouponTypePercentage && req.Value > 100 {
		return nil, errors.BadRequest("Percentage discount cannot exceed 100")
	}

	sellerID := req.SellerID
	switch role {
	case models.RoleSeller:
		sellerID = &actorID
	case models.RoleAdmin:
		// admins may create global or seller-scoped coupons
	default:
		return nil, errors.Forbidden("Only sellers and admins can create coupons")
	}

	coupon := &models.Coupon{
		Code:      strings.ToUpper(strings.TrimSpace(req.Code)),
		Type:      req.Type,
		Value:     req.Value,
		SellerID:  sellerID,
		MaxUsage:  req.MaxUsage,
		ExpiresAt: req.ExpiresAt,
		Active:    true,
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, errors.Conflict("Coupon code already exists")
		}
		s.logger.Error("Failed to create coupon", zap.Error(err))
		return nil, errors.Internal("Failed to create coupon", err)
	}

	s.logger.Info("Coupon created", zap.String("code", coupon.Code), zap.String("type", string(coupon.Type)))
	return coupon, nil
}

// DeactivateCoupon deactivates a coupon. Sellers may only deactivate their own.
func (s *couponServiceImpl) DeactivateCoupon(ctx context.Context, actorID uint, role string, code string) *errors.Error {
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return errors.NotFound("Coupon not found")
	}
	if role == models.RoleSeller && (coupon.SellerID == nil || *coupon.SellerID != actorID) {
		return errors.Forbidden("Coupon belongs to another seller")
	}

	if err := s.repo.Deactivate(ctx, code); err != nil {
		s.logger.Error("Failed to deactivate coupon", zap.String("code", code), zap.Error(err))
		return errors.Internal("Failed to deactivate coupon", err)
	}

	s.logger.Info("Coupon deactivated", zap.String("code", coupon.Code))
	return nil
}

// ListCoupons returns paginated coupons, scoped to the seller's own for sellers.
func (s *couponServiceImpl) ListCoupons(ctx context.Context, actorID uint, role string, page, limit int) ([]models.Coupon, int64, *errors.Error) {
	var sellerID *uint
	if role == models.RoleSeller {
		sellerID = &actorID
	}
	coupons, total, err := s.repo.FindAll(ctx, sellerID, page, limit)
	if err != nil {
		s.logger.Error("Failed to list coupons", zap.Error(err))
		return nil, 0, errors.Internal("Failed to list coupons", err)
	}
	return coupons, total, nil
}

// ValidateCoupons previews the discount breakdown for a cart without
// creating an order or consuming usage.
func (s *couponServiceImpl) ValidateCoupons(ctx context.Context, req *models.ValidateCouponsRequest) (*models.ValidateCouponsResponse, *errors.Error) {
	merged := MergeLines(req.Items)
	if len(merged) == 0 {
		return nil, errors.BadRequest("Cart is empty")
	}

	ids := make([]uint, 0, len(merged))
	for _, line := range merged {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to load products for coupon validation", zap.Error(err))
		return nil, errors.Internal("Failed to validate coupons", err)
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]CartLine, 0, len(merged))
	for _, line := range merged {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, errors.BadRequest(fmt.Sprintf("Product %d not found", line.ProductID))
		}
		lines = append(lines, CartLine{
			ProductID: product.ID,
			SellerID:  product.SellerID,
			LineTotal: round2(product.Price * float64(line.Quantity)),
		})
	}

	apps, appErr := s.PrepareForOrder(ctx, req.Codes, lines)
	if appErr != nil {
		return nil, appErr
	}
	return &models.ValidateCouponsResponse{
		Applications:  apps,
		TotalDiscount: TotalDiscount(apps),
	}, nil
}

func (s *couponServiceImpl) ValidateCodes(ctx context.Context, codes []string) *errors.Error {
	coupons, appErr := s.resolveCodes(ctx, codes)
	if appErr != nil {
		return appErr
	}
	now := time.Now()
	for _, coupon := range coupons {
		if appErr := couponUsable(coupon, now); appErr != nil {
			return appErr
		}
	}
	return nil
}

func (s *couponServiceImpl) PrepareForOrder(ctx context.Context, codes []string, lines []CartLine) ([]models.CouponApplication, *errors.Error) {
	coupons, appErr := s.resolveCodes(ctx, codes)
	if appErr != nil {
		return nil, appErr
	}
	if len(coupons) == 0 {
		return nil, nil
	}
	return AllocateCoupons(coupons, lines, time.Now())
}

// resolveCodes normalizes the submitted codes and loads them in submission
// order, rejecting any code with no matching coupon.
func (s *couponServiceImpl) resolveCodes(ctx context.Context, codes []string) ([]models.Coupon, *errors.Error) {
	normalized, appErr := NormalizeCodes(codes)
	if appErr != nil {
		return nil, appErr
	}
	if len(normalized) == 0 {
		return nil, nil
	}

	coupons, err := s.repo.FindByCodes(ctx, normalized)
	if err != nil {
		s.logger.Error("Failed to load coupons", zap.Error(err))
		return nil, errors.Internal("Failed to load coupons", err)
	}
	byCode := make(map[string]models.Coupon, len(coupons))
	for _, c := range coupons {
		byCode[strings.ToUpper(c.Code)] = c
	}

	ordered := make([]models.Coupon, 0, len(normalized))
	for _, code := range normalized {
		coupon, ok := byCode[code]
		if !ok {
			return nil, errors.BadRequest(fmt.Sprintf("Coupon %s not found", code))
		}
		ordered = append(ordered, coupon)
	}
	return ordered, nil
}

// Finalize increments the usage counters after a successful checkout. The
// conditional update can lose to a concurrent redemption that filled the
// cap; the order already committed, so the loss is logged rather than
// propagated.
func (s *couponServiceImpl) Finalize(ctx context.Context, apps []models.CouponApplication) {
	for _, app := range apps {
		won, err := s.repo.FinalizeUsage(ctx, app.CouponID)
		if err != nil {
			s.logger.Error("Failed to finalize coupon usage",
				zap.String("code", app.Code), zap.Error(err))
			continue
		}
		if !won {
			s.logger.Warn("Coupon usage cap reached before finalization",
				zap.String("code", app.Code))
		}
	}
}
