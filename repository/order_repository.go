package repository

import (
	"context"
	"fmt"

	"github.com/otoor/marketplace-backend/models"

	"gorm.io/gorm"
)

// StockConflict is returned when a conditional stock decrement affects zero
// rows inside the order transaction. The whole transaction is aborted; no
// compensation is needed because nothing committed.
type StockConflict struct {
	ProductID uint
}

func (e *StockConflict) Error() string {
	return fmt.Sprintf("stock conflict for product %d", e.ProductID)
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// CreateReserved atomically decrements stock for every line and creates
	// the order with its items in one transaction. A line whose conditional
	// decrement affects zero rows aborts the transaction with *StockConflict.
	CreateReserved(ctx context.Context, order *models.Order, lines []models.InventoryLine) error

	// CancelAndRestore cancels an order still in PENDING or PROCESSING and
	// restores the decremented stock in the same transaction. Stock moves
	// only when the conditional cancel won, so a concurrent cancel cannot
	// restore the same reservation twice. Returns whether it won.
	CancelAndRestore(ctx context.Context, orderID uint, lines []models.InventoryLine) (bool, error)

	// CancelPendingAndRestore cancels the order only if it is still PENDING
	// and restores stock when the cancel won. Returns whether it won.
	CancelPendingAndRestore(ctx context.Context, orderID uint, lines []models.InventoryLine) (bool, error)

	// UpdateStatusIf transitions from -> to conditionally. Zero affected
	// rows means the order was not in the expected state.
	UpdateStatusIf(ctx context.Context, orderID uint, from, to models.OrderStatus) (bool, error)

	UpdateFields(ctx context.Context, orderID uint, fields map[string]interface{}) error

	FindByID(ctx context.Context, id uint) (*models.Order, error)
	// FindForPaymentSync locates an order by payment reference, then gateway
	// invoice id, then gateway payment id, in that priority.
	FindForPaymentSync(ctx context.Context, reference, invoiceID, paymentID string) (*models.Order, error)

	ListByBuyer(ctx context.Context, buyerID uint) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID uint) ([]models.Order, error)
	ListAll(ctx context.Context, status models.OrderStatus, page, limit int) ([]models.Order, int64, error)
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) CreateReserved(ctx context.Context, order *models.Order, lines []models.InventoryLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ? AND status = ?",
					line.ProductID, line.Quantity, models.ProductStatusPublished).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &StockConflict{ProductID: line.ProductID}
			}
		}
		return tx.Create(order).Error
	})
}

func (r *GormOrderRepository) CancelAndRestore(ctx context.Context, orderID uint, lines []models.InventoryLine) (bool, error) {
	won := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status IN ?", orderID,
				[]models.OrderStatus{models.OrderStatusPending, models.OrderStatusProcessing}).
			Updates(map[string]interface{}{
				"status":          models.OrderStatusCancelled,
				"shipment_status": models.ShipmentStatusFailed,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		won = true
		for _, line := range lines {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", line.ProductID).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", line.Quantity)).
				Error; err != nil {
				return err
			}
		}
		return nil
	})
	return won, err
}

func (r *GormOrderRepository) CancelPendingAndRestore(ctx context.Context, orderID uint, lines []models.InventoryLine) (bool, error) {
	won := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		won = true
		for _, line := range lines {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", line.ProductID).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", line.Quantity)).
				Error; err != nil {
				return err
			}
		}
		return nil
	})
	return won, err
}

func (r *GormOrderRepository) UpdateStatusIf(ctx context.Context, orderID uint, from, to models.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormOrderRepository) UpdateFields(ctx context.Context, orderID uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(fields).Error
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindForPaymentSync(ctx context.Context, reference, invoiceID, paymentID string) (*models.Order, error) {
	var order models.Order
	lookups := []struct {
		column string
		value  string
	}{
		{"payment_reference", reference},
		{"payment_invoice_id", invoiceID},
		{"payment_id", paymentID},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		err := r.db.WithContext(ctx).Preload("Items").
			Where(l.column+" = ?", l.value).
			First(&order).Error
		if err == nil {
			return &order, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *GormOrderRepository) ListByBuyer(ctx context.Context, buyerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepository) ListBySeller(ctx context.Context, sellerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.seller_id = ?", sellerID).
		Group("orders.id").
		Order("orders.created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepository) ListAll(ctx context.Context, status models.OrderStatus, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Items").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
