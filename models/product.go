package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductStatus represents the listing state of a product.
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "DRAFT"
	ProductStatusPublished ProductStatus = "PUBLISHED"
	ProductStatusSuspended ProductStatus = "SUSPENDED"
)

// Product is a seller's listing. Only PUBLISHED products are sellable.
type Product struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	SellerID      uint           `gorm:"index;not null" json:"seller_id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Price         float64        `gorm:"not null" json:"price"`
	StockQuantity int            `gorm:"not null;default:0" json:"stock_quantity"`
	Status        ProductStatus  `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"status"`
	WeightKg      float64        `gorm:"not null;default:0.5" json:"weight_kg"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// Sellable reports whether the product can currently be ordered at all.
func (p *Product) Sellable() bool {
	return p.Status == ProductStatusPublished
}

// Inventory issue reasons returned by stock validation.
const (
	IssueProductNotFound    = "PRODUCT_NOT_FOUND"
	IssueProductUnavailable = "PRODUCT_UNAVAILABLE"
	IssueOutOfStock         = "OUT_OF_STOCK"
	IssueInsufficientStock  = "INSUFFICIENT_STOCK"
)

// InventoryLine is an aggregated cart line after merging duplicate products.
type InventoryLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// InventoryIssue describes one cart line that cannot be fulfilled.
type InventoryIssue struct {
	ProductID         uint   `json:"product_id"`
	Name              string `json:"name"`
	RequestedQuantity int    `json:"requested_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
	Reason            string `json:"reason"`
}

// InventoryFailure is the structured details payload for stock errors.
type InventoryFailure struct {
	Code   string           `json:"code"`
	Issues []InventoryIssue `json:"issues"`
}
