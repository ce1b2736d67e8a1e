package repository

import (
	"context"
	"strings"

	"github.com/otoor/marketplace-backend/models"

	"gorm.io/gorm"
)

// CouponRepository defines the interface for coupon data access.
type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindByCodes(ctx context.Context, codes []string) ([]models.Coupon, error)

	// FinalizeUsage increments usage_count only while it is below max_usage
	// (or the cap is unlimited). Returns whether the increment won.
	FinalizeUsage(ctx context.Context, couponID uint) (bool, error)

	Deactivate(ctx context.Context, code string) error
	FindAll(ctx context.Context, sellerID *uint, page, limit int) ([]models.Coupon, int64, error)
}

// GormCouponRepository implements CouponRepository using GORM.
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository.
func NewGormCouponRepository(db *gorm.DB) CouponRepository {
	return &GormCouponRepository{db: db}
}

func (r *GormCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(code)).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *GormCouponRepository) FindByCodes(ctx context.Context, codes []string) ([]models.Coupon, error) {
	upper := make([]string, 0, len(codes))
	for _, c := range codes {
		upper = append(upper, strings.ToUpper(c))
	}
	var coupons []models.Coupon
	err := r.db.WithContext(ctx).Where("UPPER(code) IN ?", upper).Find(&coupons).Error
	return coupons, err
}

func (r *GormCouponRepository) FinalizeUsage(ctx context.Context, couponID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND (max_usage = 0 OR usage_count < max_usage)", couponID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormCouponRepository) Deactivate(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("UPPER(code) = ?", strings.ToUpper(code)).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormCouponRepository) FindAll(ctx context.Context, sellerID *uint, page, limit int) ([]models.Coupon, int64, error) {
	var coupons []models.Coupon
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Coupon{})
	if sellerID != nil {
		query = query.Where("seller_id = ?", *sellerID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}
