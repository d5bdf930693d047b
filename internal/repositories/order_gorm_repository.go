package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shop/internal/apperr"
	"shop/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders with their items, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Order("order_date DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "order with ID %d not found", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	return &order, nil
}

// Create persists an order together with its line items.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(id uint, status models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "order with ID %d not found", id)
	}
	return nil
}

// FindByCustomer returns orders matching the order ID or the phone number.
func (r *GORMOrderRepository) FindByCustomer(orderID uint, phone string) ([]models.Order, error) {
	query := r.db.Preload("Items")
	switch {
	case orderID != 0 && phone != "":
		query = query.Where("id = ? OR customer_phone = ?", orderID, phone)
	case orderID != 0:
		query = query.Where("id = ?", orderID)
	default:
		query = query.Where("customer_phone = ?", phone)
	}
	var orders []models.Order
	if err := query.Order("order_date DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to find customer orders: %w", err)
	}
	return orders, nil
}

// CountByStatus counts orders per status.
func (r *GORMOrderRepository) CountByStatus() (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	err := r.db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	counts := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SumTotalBetween totals non-cancelled order amounts over [start, end].
func (r *GORMOrderRepository) SumTotalBetween(start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("order_date BETWEEN ? AND ? AND status <> ?", start, end, models.StatusCancelled).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum order totals: %w", err)
	}
	return total, nil
}
