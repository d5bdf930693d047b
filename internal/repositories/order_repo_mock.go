package repositories

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"shop/internal/apperr"
	"shop/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[uint]models.Order
	nextID uint
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[uint]models.Order),
		nextID: 1,
	}
}

// GetAll returns all orders, newest first.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].ID > orderList[j].ID
	})
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id uint) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "order with ID %d not found", id)
	}
	return &order, nil
}

// Create adds a new order, assigning its ID, item IDs, and creation time.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == 0 {
		order.ID = r.nextID
		r.nextID++
	}
	for i := range order.Items {
		order.Items[i].ID = uint(i + 1)
		order.Items[i].OrderID = order.ID
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now()
	}
	r.orders[order.ID] = *order
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(id uint, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return apperr.New(apperr.NotFound, "order with ID %d not found", id)
	}
	order.Status = status
	r.orders[id] = order
	return nil
}

// FindByCustomer returns orders matching the order ID or the phone number.
func (r *MockOrderRepository) FindByCustomer(orderID uint, phone string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if (orderID != 0 && order.ID == orderID) || (phone != "" && order.CustomerPhone == phone) {
			orderList = append(orderList, order)
		}
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].ID > orderList[j].ID
	})
	return orderList, nil
}

// CountByStatus counts orders per status.
func (r *MockOrderRepository) CountByStatus() (map[models.OrderStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.OrderStatus]int64)
	for _, order := range r.orders {
		counts[order.Status]++
	}
	return counts, nil
}

// SumTotalBetween totals non-cancelled order amounts over [start, end].
func (r *MockOrderRepository) SumTotalBetween(start, end time.Time) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := decimal.Zero
	for _, order := range r.orders {
		if order.Status == models.StatusCancelled {
			continue
		}
		if order.OrderDate.Before(start) || order.OrderDate.After(end) {
			continue
		}
		total = total.Add(order.TotalAmount)
	}
	return total, nil
}
