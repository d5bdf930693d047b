package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the store catalog.
type Product struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Name          string          `json:"name" gorm:"type:varchar(200);not null" validate:"required,min=1,max=200"`
	Category      string          `json:"category" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Description   string          `json:"description" gorm:"type:text" validate:"omitempty,max=500"`
	IsActive      bool            `json:"is_active" gorm:"not null;default:true"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0" validate:"gte=0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
