package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"shop/internal/apperr"
	"shop/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetActive retrieves active products matching the optional filters.
func (r *GORMProductRepository) GetActive(category, name string) ([]models.Product, error) {
	query := r.db.Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	var products []models.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get active products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "product with ID %d not found", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Model(&models.Product{}).Where("id = ?", product.ID).
		Select("Name", "Category", "Price", "Description", "IsActive", "StockQuantity").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "product with ID %d not found", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "product with ID %d not found", id)
	}
	return nil
}

// ReduceStock subtracts qty via a single conditional UPDATE, so two
// concurrent reductions against the same row can never jointly take more
// than the available stock.
func (r *GORMProductRepository) ReduceStock(id uint, qty int) (*models.Product, error) {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to reduce stock for product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// Zero rows means missing product or short stock; re-read to tell apart.
		product, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		return nil, apperr.New(apperr.InsufficientStock,
			"insufficient stock for %q: available %d, requested %d",
			product.Name, product.StockQuantity, qty)
	}
	return r.GetByID(id)
}

// IncreaseStock adds qty to the product's stock in a single UPDATE.
func (r *GORMProductRepository) IncreaseStock(id uint, qty int) (*models.Product, error) {
	res := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to increase stock for product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.New(apperr.NotFound, "product with ID %d not found", id)
	}
	return r.GetByID(id)
}

// SetStock writes an absolute stock quantity.
func (r *GORMProductRepository) SetStock(id uint, qty int) (*models.Product, error) {
	res := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", qty)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to set stock for product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.New(apperr.NotFound, "product with ID %d not found", id)
	}
	return r.GetByID(id)
}

// Categories lists the distinct categories of active products.
func (r *GORMProductRepository) Categories() ([]string, error) {
	var categories []string
	err := r.db.Model(&models.Product{}).
		Where("is_active = ?", true).
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// LowStock returns active products at or below the threshold, lowest first.
func (r *GORMProductRepository) LowStock(threshold int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("is_active = ? AND stock_quantity <= ?", true, threshold).
		Order("stock_quantity ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list low-stock products: %w", err)
	}
	return products, nil
}

// CountByActive counts products with the given active flag.
func (r *GORMProductRepository) CountByActive(active bool) (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Where("is_active = ?", active).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
