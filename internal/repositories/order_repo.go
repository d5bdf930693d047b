package repositories

import (
	"time"

	"github.com/shopspring/decimal"

	"shop/internal/models"
)

// OrderRepository defines the interface for order data access. Line items
// are owned by their order: they are written with Create and loaded with
// their parent, never addressed on their own.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id uint) (*models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id uint, status models.OrderStatus) error
	// FindByCustomer returns orders matching the given order ID or customer
	// phone number; either may be zero-valued.
	FindByCustomer(orderID uint, phone string) ([]models.Order, error)
	CountByStatus() (map[models.OrderStatus]int64, error)
	// SumTotalBetween totals non-cancelled order amounts over [start, end].
	SumTotalBetween(start, end time.Time) (decimal.Decimal, error)
}
