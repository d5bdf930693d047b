package services

import (
	"strings"

	"shop/internal/apperr"
	"shop/internal/models"
	"shop/internal/repositories"
)

// DefaultLowStockThreshold is used when a caller asks for the low-stock
// listing without a threshold.
const DefaultLowStockThreshold = 5

// ProductService handles business logic related to the product catalog.
// Stock changes are not its business: those belong to StockService.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products, active or not.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// SearchActiveProducts retrieves active products, optionally filtered by
// category and/or a name substring. Blank filters match everything.
func (s *ProductService) SearchActiveProducts(category, name string) ([]models.Product, error) {
	return s.repo.GetActive(strings.TrimSpace(category), strings.TrimSpace(name))
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id uint) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID. Orders referencing the product
// keep their frozen line items; only the catalog entry goes away.
func (s *ProductService) DeleteProduct(id uint) error {
	return s.repo.Delete(id)
}

// ToggleActive flips the product's active flag and returns the result.
func (s *ProductService) ToggleActive(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	product.IsActive = !product.IsActive
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Categories lists the distinct categories of active products.
func (s *ProductService) Categories() ([]string, error) {
	return s.repo.Categories()
}

// LowStockProducts returns active products at or below the threshold.
// Non-positive thresholds fall back to the default.
func (s *ProductService) LowStockProducts(threshold int) ([]models.Product, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return s.repo.LowStock(threshold)
}

// CountActiveProducts counts active catalog entries.
func (s *ProductService) CountActiveProducts() (int64, error) {
	return s.repo.CountByActive(true)
}

// CountInactiveProducts counts inactive catalog entries.
func (s *ProductService) CountInactiveProducts() (int64, error) {
	return s.repo.CountByActive(false)
}

func validateProduct(product *models.Product) error {
	if product == nil {
		return apperr.New(apperr.Validation, "product data is required")
	}
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return apperr.New(apperr.Validation, "product name is required")
	}
	product.Category = strings.TrimSpace(product.Category)
	if product.Category == "" {
		return apperr.New(apperr.Validation, "product category is required")
	}
	if !product.Price.IsPositive() {
		return apperr.New(apperr.Validation, "product price must be greater than 0")
	}
	if product.StockQuantity < 0 {
		return apperr.New(apperr.Validation, "stock quantity must be 0 or greater")
	}
	return nil
}
