package repository

import (
	"context"

	"github.com/otoor/marketplace-backend/models"

	"gorm.io/gorm"
)

// WarehouseRepository defines the interface for seller warehouse data access.
type WarehouseRepository interface {
	Create(ctx context.Context, wh *models.SellerWarehouse) error
	FindByID(ctx context.Context, id uint) (*models.SellerWarehouse, error)
	FindBySeller(ctx context.Context, sellerID uint) ([]models.SellerWarehouse, error)
	FindDefaultBySeller(ctx context.Context, sellerID uint) (*models.SellerWarehouse, error)
	SetDefault(ctx context.Context, sellerID, warehouseID uint) error
}

// GormWarehouseRepository implements WarehouseRepository using GORM.
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository.
func NewGormWarehouseRepository(db *gorm.DB) WarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

func (r *GormWarehouseRepository) Create(ctx context.Context, wh *models.SellerWarehouse) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if wh.IsDefault {
			if err := tx.Model(&models.SellerWarehouse{}).
				Where("seller_id = ?", wh.SellerID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(wh).Error
	})
}

func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uint) (*models.SellerWarehouse, error) {
	var wh models.SellerWarehouse
	if err := r.db.WithContext(ctx).First(&wh, id).Error; err != nil {
		return nil, err
	}
	return &wh, nil
}

func (r *GormWarehouseRepository) FindBySeller(ctx context.Context, sellerID uint) ([]models.SellerWarehouse, error) {
	var whs []models.SellerWarehouse
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at ASC").
		Find(&whs).Error
	return whs, err
}

func (r *GormWarehouseRepository) FindDefaultBySeller(ctx context.Context, sellerID uint) (*models.SellerWarehouse, error) {
	var wh models.SellerWarehouse
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND is_default = ?", sellerID, true).
		First(&wh).Error
	if err != nil {
		return nil, err
	}
	return &wh, nil
}

func (r *GormWarehouseRepository) SetDefault(ctx context.Context, sellerID, warehouseID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SellerWarehouse{}).
			Where("seller_id = ?", sellerID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		res := tx.Model(&models.SellerWarehouse{}).
			Where("id = ? AND seller_id = ?", warehouseID, sellerID).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
