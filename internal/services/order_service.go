package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop/internal/apperr"
	"shop/internal/models"
	"shop/internal/repositories"
)

// EventPublisher publishes order lifecycle events. Satisfied by
// *rabbitmq.Client; may be nil, in which case publication is skipped.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}

// CartItem is one entry of an inbound cart. Entries arrive as a slice so
// they are processed in the order the customer provided them.
type CartItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CreateOrderRequest carries everything needed to place an order.
type CreateOrderRequest struct {
	CustomerName    string     `json:"customer_name"`
	CustomerEmail   string     `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone   string     `json:"customer_phone"`
	CustomerAddress string     `json:"customer_address"`
	Items           []CartItem `json:"items"`
	Notes           string     `json:"notes"`
}

// OrderService handles order assembly and the order lifecycle.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	stock       *StockService
	mqClient    EventPublisher
	validate    *validator.Validate
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, stock *StockService, mqClient EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		stock:       stock,
		mqClient:    mqClient,
		validate:    validator.New(),
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id uint) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// CreateOrder assembles and persists a new order from a cart.
//
// It runs in two passes. The resolution pass walks the cart in the order
// provided, skipping non-positive quantities, and builds the line items
// with frozen unit prices against a read of current stock, without
// mutating anything. The reservation pass then applies the reductions;
// each reduction is individually atomic, and if one fails (a concurrent
// order drained the product between the passes) every reduction already
// applied is rolled back before the error is returned. Either all lines of
// the cart end up reserved or none do.
func (s *OrderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "customer name is required")
	}
	phone := strings.TrimSpace(req.CustomerPhone)
	if phone == "" {
		return nil, apperr.New(apperr.Validation, "customer phone is required")
	}
	address := strings.TrimSpace(req.CustomerAddress)
	if address == "" {
		return nil, apperr.New(apperr.Validation, "customer address is required")
	}
	if len(req.Items) == 0 {
		return nil, apperr.New(apperr.Validation, "cart is empty")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.New(apperr.Validation, "invalid order request: %v", err)
	}

	total := decimal.Zero
	var items []models.OrderItem
	for _, entry := range req.Items {
		if entry.Quantity <= 0 {
			continue
		}
		product, err := s.productRepo.GetByID(entry.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, apperr.New(apperr.ProductInactive, "product %q is no longer available", product.Name)
		}
		if product.StockQuantity < entry.Quantity {
			return nil, apperr.New(apperr.InsufficientStock,
				"insufficient stock for %q: available %d, requested %d",
				product.Name, product.StockQuantity, entry.Quantity)
		}
		item := models.NewOrderItem(product, entry.Quantity)
		items = append(items, item)
		total = total.Add(item.Subtotal)
	}
	if len(items) == 0 {
		return nil, apperr.New(apperr.EmptyOrder, "order contains no valid items")
	}

	for i, item := range items {
		if _, err := s.stock.Reduce(item.ProductID, item.Quantity); err != nil {
			s.releaseReservations(items[:i])
			return nil, err
		}
	}

	order := &models.Order{
		CustomerName:    name,
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   phone,
		CustomerAddress: address,
		TotalAmount:     total.Round(2),
		Status:          models.StatusPending,
		Notes:           strings.TrimSpace(req.Notes),
		Items:           items,
	}
	if err := s.orderRepo.Create(order); err != nil {
		s.releaseReservations(items)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.publishEvent("order.created", order)
	return order, nil
}

// UpdateStatus moves an order to a new status. Only transitions present in
// the status graph are accepted; anything else is an illegal transition.
func (s *OrderService) UpdateStatus(id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.New(apperr.Validation, "invalid order status: %s", status)
	}
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, apperr.New(apperr.IllegalTransition,
			"order %d cannot move from %s to %s", id, order.Status, status)
	}
	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	order.Status = status

	s.publishEvent("order.status_updated", order)
	return order, nil
}

// Cancel cancels an order and restores the stock its line items reserved.
//
// A product deleted from the catalog since the order was placed cannot take
// its stock back; that line is logged and skipped so the remaining
// restorations and the status change still go through.
func (s *OrderService) Cancel(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case models.StatusDelivered:
		return nil, apperr.New(apperr.IllegalTransition, "order %d already delivered", id)
	case models.StatusCancelled:
		return nil, apperr.New(apperr.IllegalTransition, "order %d already cancelled", id)
	}

	for _, item := range order.Items {
		if _, err := s.stock.Increase(item.ProductID, item.Quantity); err != nil {
			if apperr.IsKind(err, apperr.NotFound) {
				log.Printf("Warning: skipping stock restore for product %d on order %d: %v", item.ProductID, id, err)
				continue
			}
			return nil, fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, err)
		}
	}

	if err := s.orderRepo.UpdateStatus(id, models.StatusCancelled); err != nil {
		return nil, err
	}
	order.Status = models.StatusCancelled

	s.publishEvent("order.cancelled", order)
	return order, nil
}

// FindCustomerOrders looks up orders by order ID, phone number, or both.
func (s *OrderService) FindCustomerOrders(orderID uint, phone string) ([]models.Order, error) {
	phone = strings.TrimSpace(phone)
	if orderID == 0 && phone == "" {
		return nil, apperr.New(apperr.Validation, "an order ID or phone number is required")
	}
	return s.orderRepo.FindByCustomer(orderID, phone)
}

// StatusStatistics counts orders per status.
func (s *OrderService) StatusStatistics() (map[models.OrderStatus]int64, error) {
	return s.orderRepo.CountByStatus()
}

// SalesBetween totals non-cancelled order amounts over a date range.
func (s *OrderService) SalesBetween(start, end time.Time) (decimal.Decimal, error) {
	return s.orderRepo.SumTotalBetween(start, end)
}

// TodaySales totals today's non-cancelled order amounts.
func (s *OrderService) TodaySales() (decimal.Decimal, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.orderRepo.SumTotalBetween(start, start.Add(24*time.Hour-time.Nanosecond))
}

// releaseReservations undoes the stock reductions for the given lines.
func (s *OrderService) releaseReservations(items []models.OrderItem) {
	for _, item := range items {
		if _, err := s.stock.Increase(item.ProductID, item.Quantity); err != nil {
			log.Printf("Warning: failed to release reserved stock for product %d: %v", item.ProductID, err)
		}
	}
}

// publishEvent emits an order lifecycle event. Publication is best-effort:
// failures are logged, never surfaced to the caller.
func (s *OrderService) publishEvent(eventType string, order *models.Order) {
	if s.mqClient == nil {
		log.Println("Event publisher is not configured. Skipping message publication.")
		return
	}

	event := map[string]interface{}{
		"event_id": uuid.New().String(),
		"type":     eventType,
		"order_id": order.ID,
		"status":   order.Status,
		"total":    order.TotalAmount,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event for order %d: %v", eventType, order.ID, err)
		return
	}
	if err := s.mqClient.Publish(eventType, body); err != nil {
		log.Printf("Warning: failed to publish %s event for order %d: %v", eventType, order.ID, err)
	}
}
