package models

import (
	"time"

	"gorm.io/gorm"
)

// SellerWarehouse is a courier pickup location registered by a seller.
// Code is the identifier the courier gateway knows the warehouse by.
type SellerWarehouse struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SellerID  uint           `gorm:"index;not null" json:"seller_id"`
	Code      string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	CityID    string         `gorm:"type:varchar(64);not null" json:"city_id"`
	Address   string         `gorm:"type:varchar(255)" json:"address"`
	Phone     string         `gorm:"type:varchar(32)" json:"phone"`
	IsDefault bool           `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RegisterWarehouseRequest is the payload for registering a pickup location.
type RegisterWarehouseRequest struct {
	Code      string `json:"code" binding:"required"`
	Name      string `json:"name" binding:"required"`
	CityID    string `json:"city_id" binding:"required"`
	Address   string `json:"address"`
	Phone     string `json:"phone" binding:"required"`
	IsDefault bool   `json:"is_default"`
}
