package repositories

import (
	"shop/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// The three stock mutators are the only writers of a product's stock
// quantity, and each call is atomic: concurrent calls against the same
// product never interleave mid read-modify-write, so two reductions can
// never jointly oversell.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	// GetActive returns active products, optionally filtered by exact
	// category and/or case-insensitive name substring.
	GetActive(category, name string) ([]models.Product, error)
	GetByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error

	// ReduceStock atomically subtracts qty from the product's stock, failing
	// without any change when less than qty is available.
	ReduceStock(id uint, qty int) (*models.Product, error)
	// IncreaseStock atomically adds qty to the product's stock.
	IncreaseStock(id uint, qty int) (*models.Product, error)
	// SetStock writes an absolute stock quantity.
	SetStock(id uint, qty int) (*models.Product, error)

	// Categories lists the distinct categories of active products.
	Categories() ([]string, error)
	// LowStock returns active products at or below the given stock level,
	// lowest stock first.
	LowStock(threshold int) ([]models.Product, error)
	CountByActive(active bool) (int64, error)
}
