package repositories

import (
	"sort"
	"strings"
	"sync"
	"time"

	"shop/internal/apperr"
	"shop/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// The stock mutators hold the write lock for the whole check-and-write, which
// gives them the same per-product atomicity the GORM implementation gets from
// conditional single-statement updates.
type MockProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sortProductsByID(productList)
	return productList, nil
}

// GetActive returns active products matching the optional filters.
func (r *MockProductRepository) GetActive(category, name string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var productList []models.Product
	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			continue
		}
		productList = append(productList, p)
	}
	sortProductsByID(productList)
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "product with ID %d not found", id)
	}
	return &product, nil
}

// Create adds a new product, assigning the next ID.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		product.ID = r.nextID
		r.nextID++
	} else if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return apperr.New(apperr.NotFound, "product with ID %d not found", product.ID)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperr.New(apperr.NotFound, "product with ID %d not found", id)
	}
	delete(r.products, id)
	return nil
}

// ReduceStock atomically subtracts qty when at least qty is available.
func (r *MockProductRepository) ReduceStock(id uint, qty int) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "product with ID %d not found", id)
	}
	if product.StockQuantity < qty {
		return nil, apperr.New(apperr.InsufficientStock,
			"insufficient stock for %q: available %d, requested %d",
			product.Name, product.StockQuantity, qty)
	}
	product.StockQuantity -= qty
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return &product, nil
}

// IncreaseStock atomically adds qty to the product's stock.
func (r *MockProductRepository) IncreaseStock(id uint, qty int) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "product with ID %d not found", id)
	}
	product.StockQuantity += qty
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return &product, nil
}

// SetStock writes an absolute stock quantity.
func (r *MockProductRepository) SetStock(id uint, qty int) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "product with ID %d not found", id)
	}
	product.StockQuantity = qty
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return &product, nil
}

// Categories lists the distinct categories of active products.
func (r *MockProductRepository) Categories() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var categories []string
	for _, p := range r.products {
		if p.IsActive && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// LowStock returns active products at or below the threshold, lowest first.
func (r *MockProductRepository) LowStock(threshold int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var productList []models.Product
	for _, p := range r.products {
		if p.IsActive && p.StockQuantity <= threshold {
			productList = append(productList, p)
		}
	}
	sort.Slice(productList, func(i, j int) bool {
		return productList[i].StockQuantity < productList[j].StockQuantity
	})
	return productList, nil
}

// CountByActive counts products with the given active flag.
func (r *MockProductRepository) CountByActive(active bool) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, p := range r.products {
		if p.IsActive == active {
			count++
		}
	}
	return count, nil
}

func sortProductsByID(products []models.Product) {
	sort.Slice(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})
}
