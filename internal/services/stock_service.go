package services

import (
	"shop/internal/apperr"
	"shop/internal/models"
	"shop/internal/repositories"
)

// StockService owns stock mutation. Every write to a product's stock
// quantity goes through one of its three primitives; callers never
// read-then-write stock themselves. Atomicity per product is delegated to
// the repository, which performs each check-and-write as one unit.
type StockService struct {
	productRepo repositories.ProductRepository
}

// NewStockService creates a new StockService.
func NewStockService(productRepo repositories.ProductRepository) *StockService {
	return &StockService{
		productRepo: productRepo,
	}
}

// Reduce subtracts qty from the product's stock. It fails without any
// change when the product is unknown or has less than qty in stock, so no
// partial decrement is ever applied.
func (s *StockService) Reduce(productID uint, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, apperr.New(apperr.Validation, "quantity to reduce must be greater than 0")
	}
	return s.productRepo.ReduceStock(productID, qty)
}

// Increase adds qty back to the product's stock, typically to reverse an
// earlier reduction when an order is cancelled.
func (s *StockService) Increase(productID uint, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, apperr.New(apperr.Validation, "quantity to increase must be greater than 0")
	}
	return s.productRepo.IncreaseStock(productID, qty)
}

// SetStock writes an absolute stock quantity. Administrative override.
func (s *StockService) SetStock(productID uint, qty int) (*models.Product, error) {
	if qty < 0 {
		return nil, apperr.New(apperr.Validation, "stock quantity must be 0 or greater")
	}
	return s.productRepo.SetStock(productID, qty)
}
