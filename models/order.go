package models

import (
	"time"
)

// OrderStatus is the order state machine:
// PENDING -> PROCESSING -> SHIPPED -> DELIVERED, with PENDING/PROCESSING ->
// CANCELLED as the escape hatch and REFUNDED reachable administratively.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

// Friendly returns the buyer-facing name of a status.
func (s OrderStatus) Friendly() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusProcessing:
		return "seller_confirmed"
	case OrderStatusShipped:
		return "shipped"
	case OrderStatusDelivered:
		return "completed"
	case OrderStatusCancelled:
		return "canceled"
	case OrderStatusRefunded:
		return "refunded"
	default:
		return string(s)
	}
}

// CanTransition reports whether s -> next is a legal transition.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing || next == OrderStatusCancelled
	case OrderStatusProcessing:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	case OrderStatusDelivered:
		return next == OrderStatusRefunded
	default:
		return false
	}
}

// Shipping and payment method identifiers accepted at checkout.
const (
	ShippingStandard = "standard"
	ShippingExpress  = "express"
	ShippingCourier  = "courier"

	PaymentCOD     = "cod"
	PaymentGateway = "gateway"
)

// ShipmentStatusFailed marks a shipment whose booking was compensated away.
const ShipmentStatusFailed = "failed"

// Order is one checkout transaction.
type Order struct {
	ID      uint        `gorm:"primaryKey" json:"id"`
	BuyerID uint        `gorm:"index;not null" json:"buyer_id"`
	Status  OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	PaymentMethod  string `gorm:"type:varchar(20);not null" json:"payment_method"`
	ShippingMethod string `gorm:"type:varchar(20);not null" json:"shipping_method"`

	// Destination address
	AddressLine string `gorm:"type:varchar(255)" json:"address_line"`
	City        string `gorm:"type:varchar(100)" json:"city"`
	Region      string `gorm:"type:varchar(100)" json:"region"`
	Country     string `gorm:"type:varchar(10)" json:"country"`
	// Courier gateway location identifiers
	CityID    string `gorm:"type:varchar(64)" json:"city_id,omitempty"`
	RegionID  string `gorm:"type:varchar(64)" json:"region_id,omitempty"`
	CountryID string `gorm:"type:varchar(64)" json:"country_id,omitempty"`

	Subtotal      float64 `gorm:"not null" json:"subtotal"`
	DiscountTotal float64 `gorm:"not null;default:0" json:"discount_total"`
	ShippingFee   float64 `gorm:"not null;default:0" json:"shipping_fee"`
	PlatformFee   float64 `gorm:"not null;default:0" json:"platform_fee"`
	Total         float64 `gorm:"not null" json:"total"`

	CouponCodes string `gorm:"type:varchar(400)" json:"coupon_codes,omitempty"` // comma-joined

	CodAmount   float64 `gorm:"not null;default:0" json:"cod_amount,omitempty"`
	CodCurrency string  `gorm:"type:varchar(10)" json:"cod_currency,omitempty"`

	// Courier shipment references (append-only facts from the gateway)
	CourierPartnerID string `gorm:"type:varchar(64)" json:"courier_partner_id,omitempty"`
	WarehouseCode    string `gorm:"type:varchar(64)" json:"warehouse_code,omitempty"`
	ShipmentID       string `gorm:"type:varchar(64);index" json:"shipment_id,omitempty"`
	TrackingNumber   string `gorm:"type:varchar(64);index" json:"tracking_number,omitempty"`
	LabelURL         string `gorm:"type:varchar(512)" json:"label_url,omitempty"`
	ShipmentStatus   string `gorm:"type:varchar(40)" json:"shipment_status,omitempty"`

	// Payment gateway references
	PaymentReference string `gorm:"type:varchar(64);index" json:"payment_reference,omitempty"`
	PaymentInvoiceID string `gorm:"type:varchar(64);index" json:"payment_invoice_id,omitempty"`
	PaymentID        string `gorm:"type:varchar(64);index" json:"payment_id,omitempty"`
	PaymentStatus    string `gorm:"type:varchar(40)" json:"payment_status,omitempty"`
	PaymentURL       string `gorm:"type:varchar(512)" json:"payment_url,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderItem is an immutable line item snapshot captured at order time.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"order_id"`
	ProductID uint    `gorm:"index;not null" json:"product_id"`
	SellerID  uint    `gorm:"index;not null" json:"seller_id"`
	Name      string  `gorm:"type:varchar(255);not null" json:"name"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	LineTotal float64 `gorm:"not null" json:"line_total"`
}

// OrderItemInput is one cart line as submitted by the buyer.
type OrderItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	Items          []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	PaymentMethod  string           `json:"payment_method" binding:"required,oneof=cod gateway"`
	ShippingMethod string           `json:"shipping_method" binding:"required,oneof=standard express courier"`
	CouponCodes    []string         `json:"coupon_codes" binding:"omitempty,max=5"`

	AddressLine string `json:"address_line" binding:"required"`
	City        string `json:"city" binding:"required"`
	Region      string `json:"region"`
	Country     string `json:"country"`

	// Courier-path fields
	CityID                string `json:"city_id"`
	RegionID              string `json:"region_id"`
	CountryID             string `json:"country_id"`
	CourierPartnerID      string `json:"courier_partner_id"`
	DeferCourierSelection bool   `json:"defer_courier_selection"`
	WarehouseID           *uint  `json:"warehouse_id"`

	// Gateway-path fields
	PaymentMethodID int `json:"payment_method_id"`

	CodCurrency string `json:"cod_currency"`
}

// UpdateOrderStatusRequest changes an order's status.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// PriceBreakdown is the computed money summary for one checkout.
type PriceBreakdown struct {
	Subtotal    float64 `json:"subtotal"`
	Discount    float64 `json:"discount"`
	ShippingFee float64 `json:"shipping_fee"`
	PlatformFee float64 `json:"platform_fee"`
	Total       float64 `json:"total"`
}

// OrderEvent is published to Kafka on order lifecycle changes.
type OrderEvent struct {
	EventType string      `json:"event_type"`
	OrderID   uint        `json:"order_id"`
	BuyerID   uint        `json:"buyer_id"`
	Status    OrderStatus `json:"status"`
	Total     float64     `json:"total"`
	Timestamp time.Time   `json:"timestamp"`
}
