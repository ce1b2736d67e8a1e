package models

import (
	"time"

	"gorm.io/gorm"
)

// CouponType represents the type of discount a coupon provides.
type CouponType string

const (
	CouponTypePercentage CouponType = "percentage"
	CouponTypeFixed      CouponType = "fixed"
)

// Coupon represents a promotional coupon. A nil SellerID makes the coupon
// global; otherwise it only discounts that seller's items.
type Coupon struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Code       string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Type       CouponType     `gorm:"type:varchar(20);not null" json:"type"`
	Value      float64        `gorm:"not null" json:"value"`
	SellerID   *uint          `gorm:"index" json:"seller_id,omitempty"`
	MaxUsage   int            `gorm:"not null;default:0" json:"max_usage"` // 0 = unlimited
	UsageCount int            `gorm:"not null;default:0" json:"usage_count"`
	Active     bool           `gorm:"not null;default:true" json:"active"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Expired reports whether the coupon is past its expiry date.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Exhausted reports whether the usage cap has been reached.
func (c *Coupon) Exhausted() bool {
	return c.MaxUsage > 0 && c.UsageCount >= c.MaxUsage
}

// CouponApplication is the result of allocating one coupon against a cart.
type CouponApplication struct {
	CouponID  uint             `json:"coupon_id"`
	Code      string           `json:"code"`
	Type      CouponType       `json:"type"`
	Discount  float64          `json:"discount"`
	PerSeller map[uint]float64 `json:"per_seller"`
}

// CreateCouponRequest is the payload for creating a new coupon.
type CreateCouponRequest struct {
	Code      string     `json:"code" binding:"required,min=3,max=64"`
	Type      CouponType `json:"type" binding:"required,oneof=percentage fixed"`
	Value     float64    `json:"value" binding:"required,gt=0"`
	SellerID  *uint      `json:"seller_id"`
	MaxUsage  int        `json:"max_usage" binding:"gte=0"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// ValidateCouponsRequest is the payload for previewing coupons against a cart.
type ValidateCouponsRequest struct {
	Codes []string         `json:"codes" binding:"required,min=1,max=5"`
	Items []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// ValidateCouponsResponse is the per-coupon discount breakdown.
type ValidateCouponsResponse struct {
	Applications  []CouponApplication `json:"applications"`
	TotalDiscount float64             `json:"total_discount"`
}
