package services

import (
	"math"

	"github.com/otoor/marketplace-backend/common/errors"
	"github.com/otoor/marketplace-backend/models"
)

// Money helpers. All published amounts are rounded to cents; discount
// allocation works in integer cents to avoid drift.

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}

// Subtotal sums the line totals of the order items.
func Subtotal(items []models.OrderItem) float64 {
	var cents int64
	for _, item := range items {
		cents += toCents(item.LineTotal)
	}
	return fromCents(cents)
}

// ComputePricing derives the money summary for one checkout:
// total = max(0, subtotal - discount) + shippingFee, platform fee on top of
// the total at the configured commission rate. The discount is clamped to
// the subtotal as a final safety net; the allocator already caps it per
// coupon against the eligible subtotal.
func ComputePricing(subtotal, discount, shippingFee, commissionRate float64) (models.PriceBreakdown, *errors.Error) {
	if subtotal <= 0 {
		return models.PriceBreakdown{}, errors.BadRequest("Order subtotal must be greater than zero")
	}

	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}

	payable := subtotal - discount
	if payable < 0 {
		payable = 0
	}
	total := round2(payable + shippingFee)

	return models.PriceBreakdown{
		Subtotal:    round2(subtotal),
		Discount:    round2(discount),
		ShippingFee: round2(shippingFee),
		PlatformFee: round2(total * commissionRate),
		Total:       total,
	}, nil
}
