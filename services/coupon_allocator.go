package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/otoor/marketplace-backend/common/errors"
	"github.com/otoor/marketplace-backend/models"
)

// MaxCouponsPerOrder caps how many codes one checkout may stack.
const MaxCouponsPerOrder = 5

// CartLine is the per-line view the allocator works on.
type CartLine struct {
	ProductID uint
	SellerID  uint
	LineTotal float64
}

// NormalizeCodes trims, uppercases, and deduplicates coupon codes while
// preserving submission order.
func NormalizeCodes(codes []string) ([]string, *errors.Error) {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		normalized := strings.ToUpper(strings.TrimSpace(code))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	if len(out) > MaxCouponsPerOrder {
		return nil, errors.BadRequest(fmt.Sprintf("At most %d coupons can be applied per order", MaxCouponsPerOrder))
	}
	return out, nil
}

// couponUsable checks one coupon's own state, independent of any cart.
func couponUsable(coupon models.Coupon, now time.Time) *errors.Error {
	if !coupon.Active {
		return errors.BadRequest(fmt.Sprintf("Coupon %s is not active", coupon.Code))
	}
	if coupon.Expired(now) {
		return errors.BadRequest(fmt.Sprintf("Coupon %s has expired", coupon.Code))
	}
	if coupon.Exhausted() {
		return errors.BadRequest(fmt.Sprintf("Coupon %s has reached its usage limit", coupon.Code))
	}
	return nil
}

// AllocateCoupons applies coupons in submission order against the cart.
//
// A coupon scoped to a seller only discounts that seller's line totals; a
// global coupon only discounts sellers not yet covered by a seller-scoped
// coupon, so presenting both never double-discounts the same items. At most
// one coupon per seller scope and one global coupon are accepted. The
// discount never exceeds the coupon's eligible subtotal.
//
// Usage counters are NOT touched here. Finalization happens after the whole
// order succeeds.
func AllocateCoupons(coupons []models.Coupon, lines []CartLine, now time.Time) ([]models.CouponApplication, *errors.Error) {
	// Eligible subtotal per seller, in cents, with deterministic seller order.
	sellerCents := make(map[uint]int64)
	sellerOrder := make([]uint, 0)
	for _, line := range lines {
		if _, ok := sellerCents[line.SellerID]; !ok {
			sellerOrder = append(sellerOrder, line.SellerID)
		}
		sellerCents[line.SellerID] += toCents(line.LineTotal)
	}

	covered := make(map[uint]bool)
	globalUsed := false
	apps := make([]models.CouponApplication, 0, len(coupons))

	for _, coupon := range coupons {
		if appErr := couponUsable(coupon, now); appErr != nil {
			return nil, appErr
		}

		// Determine the scope's eligible sellers.
		var scope []uint
		if coupon.SellerID != nil {
			if covered[*coupon.SellerID] {
				return nil, errors.BadRequest(fmt.Sprintf("Coupon %s overlaps another coupon for the same seller", coupon.Code))
			}
			scope = []uint{*coupon.SellerID}
		} else {
			if globalUsed {
				return nil, errors.BadRequest("Only one global coupon can be applied per order")
			}
			for _, sellerID := range sellerOrder {
				if !covered[sellerID] {
					scope = append(scope, sellerID)
				}
			}
		}

		var eligibleCents int64
		for _, sellerID := range scope {
			eligibleCents += sellerCents[sellerID]
		}
		if eligibleCents <= 0 {
			return nil, errors.BadRequest(fmt.Sprintf("Coupon %s is not applicable to this cart", coupon.Code))
		}

		var discountCents int64
		switch coupon.Type {
		case models.CouponTypeFixed:
			discountCents = toCents(coupon.Value)
			if discountCents > eligibleCents {
				discountCents = eligibleCents
			}
		case models.CouponTypePercentage:
			discountCents = int64(math.Round(float64(eligibleCents) * coupon.Value / 100))
			if discountCents > eligibleCents {
				discountCents = eligibleCents
			}
		default:
			return nil, errors.BadRequest(fmt.Sprintf("Coupon %s has an unknown type", coupon.Code))
		}

		// Allocate across the scope's sellers proportionally in cents; the
		// rounding remainder goes to the last seller.
		perSeller := make(map[uint]float64, len(scope))
		var allocated int64
		for i, sellerID := range scope {
			var share int64
			if i == len(scope)-1 {
				share = discountCents - allocated
			} else {
				share = discountCents * sellerCents[sellerID] / eligibleCents
			}
			allocated += share
			perSeller[sellerID] = fromCents(share)
		}

		apps = append(apps, models.CouponApplication{
			CouponID:  coupon.ID,
			Code:      coupon.Code,
			Type:      coupon.Type,
			Discount:  fromCents(discountCents),
			PerSeller: perSeller,
		})

		if coupon.SellerID != nil {
			covered[*coupon.SellerID] = true
		} else {
			globalUsed = true
		}
	}

	return apps, nil
}

// TotalDiscount sums the discounts of the applications.
func TotalDiscount(apps []models.CouponApplication) float64 {
	var cents int64
	for _, app := range apps {
		cents += toCents(app.Discount)
	}
	return fromCents(cents)
}
