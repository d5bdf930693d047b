package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shop/internal/apperr"
	"shop/internal/models"
	"shop/internal/repositories"
	"shop/internal/services"
)

// MockPublisher is a mock implementation of services.EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(eventType string, body []byte) error {
	args := m.Called(eventType, body)
	return args.Error(0)
}

type orderFixture struct {
	orders   *services.OrderService
	products *repositories.MockProductRepository
	laptopID uint
	mouseID  uint
}

// newOrderFixture seeds two active products: a laptop at 100.00 with stock
// 10 and a mouse at 50.00 with stock 5.
func newOrderFixture(t *testing.T, publisher services.EventPublisher) *orderFixture {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	orderRepo := repositories.NewMockOrderRepository()
	stock := services.NewStockService(productRepo)

	laptop := &models.Product{Name: "Laptop", Category: "Electronics", Price: decimal.RequireFromString("100.00"), IsActive: true, StockQuantity: 10}
	mouse := &models.Product{Name: "Mouse", Category: "Electronics", Price: decimal.RequireFromString("50.00"), IsActive: true, StockQuantity: 5}
	assert.NoError(t, productRepo.Create(laptop))
	assert.NoError(t, productRepo.Create(mouse))

	return &orderFixture{
		orders:   services.NewOrderService(orderRepo, productRepo, stock, publisher),
		products: productRepo,
		laptopID: laptop.ID,
		mouseID:  mouse.ID,
	}
}

func validRequest(items ...services.CartItem) services.CreateOrderRequest {
	return services.CreateOrderRequest{
		CustomerName:    "Alice Chen",
		CustomerEmail:   "alice@example.com",
		CustomerPhone:   "0912345678",
		CustomerAddress: "1 Market St",
		Items:           items,
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("Publish", "order.created", mock.Anything).Return(nil).Once()
	f := newOrderFixture(t, publisher)

	order, err := f.orders.CreateOrder(validRequest(
		services.CartItem{ProductID: f.laptopID, Quantity: 2},
		services.CartItem{ProductID: f.mouseID, Quantity: 1},
	))
	assert.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.False(t, order.OrderDate.IsZero())
	assert.Len(t, order.Items, 2)

	// 2 × 100.00 + 1 × 50.00, with unit prices frozen per line.
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("250.00")),
		"total was %s", order.TotalAmount)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[1].UnitPrice.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, 1, order.Items[1].Quantity)

	// Stock was reserved.
	laptop, _ := f.products.GetByID(f.laptopID)
	mouse, _ := f.products.GetByID(f.mouseID)
	assert.Equal(t, 8, laptop.StockQuantity)
	assert.Equal(t, 4, mouse.StockQuantity)

	publisher.AssertExpectations(t)
}

func TestOrderService_CreateOrderPriceSnapshotIsFrozen(t *testing.T) {
	f := newOrderFixture(t, nil)

	order, err := f.orders.CreateOrder(validRequest(services.CartItem{ProductID: f.laptopID, Quantity: 1}))
	assert.NoError(t, err)

	// Raising the catalog price afterwards must not touch the order.
	laptop, _ := f.products.GetByID(f.laptopID)
	laptop.Price = decimal.RequireFromString("999.99")
	assert.NoError(t, f.products.Update(laptop))

	stored, err := f.orders.GetOrderByID(order.ID)
	assert.NoError(t, err)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("100.00")))
}

func TestOrderService_CreateOrderValidation(t *testing.T) {
	f := newOrderFixture(t, nil)
	item := services.CartItem{ProductID: f.laptopID, Quantity: 1}

	cases := []struct {
		name string
		req  services.CreateOrderRequest
	}{
		{"missing name", services.CreateOrderRequest{CustomerPhone: "091", CustomerAddress: "a", Items: []services.CartItem{item}}},
		{"blank name", services.CreateOrderRequest{CustomerName: "   ", CustomerPhone: "091", CustomerAddress: "a", Items: []services.CartItem{item}}},
		{"missing phone", services.CreateOrderRequest{CustomerName: "A", CustomerAddress: "a", Items: []services.CartItem{item}}},
		{"missing address", services.CreateOrderRequest{CustomerName: "A", CustomerPhone: "091", Items: []services.CartItem{item}}},
		{"empty cart", services.CreateOrderRequest{CustomerName: "A", CustomerPhone: "091", CustomerAddress: "a"}},
		{"bad email", services.CreateOrderRequest{CustomerName: "A", CustomerEmail: "not-an-email", CustomerPhone: "091", CustomerAddress: "a", Items: []services.CartItem{item}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(tc.req)
			assert.True(t, apperr.IsKind(err, apperr.Validation), "got %v", err)
		})
	}

	// No stock was touched by any of the rejected requests.
	laptop, _ := f.products.GetByID(f.laptopID)
	assert.Equal(t, 10, laptop.StockQuantity)
}

func TestOrderService_CreateOrderSkipsNonPositiveQuantities(t *testing.T) {
	f := newOrderFixture(t, nil)

	order, err := f.orders.CreateOrder(validRequest(
		services.CartItem{ProductID: f.laptopID, Quantity: 0},
		services.CartItem{ProductID: f.mouseID, Quantity: 2},
		services.CartItem{ProductID: f.laptopID, Quantity: -3},
	))
	assert.NoError(t, err)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, f.mouseID, order.Items[0].ProductID)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("100.00")))
}

func TestOrderService_CreateOrderAllQuantitiesInvalid(t *testing.T) {
	f := newOrderFixture(t, nil)

	_, err := f.orders.CreateOrder(validRequest(
		services.CartItem{ProductID: f.laptopID, Quantity: 0},
		services.CartItem{ProductID: f.mouseID, Quantity: -1},
	))
	assert.True(t, apperr.IsKind(err, apperr.EmptyOrder))
}

func TestOrderService_CreateOrderUnknownProduct(t *testing.T) {
	f := newOrderFixture(t, nil)

	_, err := f.orders.CreateOrder(validRequest(services.CartItem{ProductID: 999, Quantity: 1}))
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestOrderService_CreateOrderInactiveProduct(t *testing.T) {
	f := newOrderFixture(t, nil)
	laptop, _ := f.products.GetByID(f.laptopID)
	laptop.IsActive = false
	assert.NoError(t, f.products.Update(laptop))

	_, err := f.orders.CreateOrder(validRequest(services.CartItem{ProductID: f.laptopID, Quantity: 1}))
	assert.True(t, apperr.IsKind(err, apperr.ProductInactive))

	// No stock mutation happened.
	laptop, _ = f.products.GetByID(f.laptopID)
	assert.Equal(t, 10, laptop.StockQuantity)
}

func TestOrderService_CreateOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture(t, nil)

	// Mouse has stock 5; ask for 6.
	_, err := f.orders.CreateOrder(validRequest(services.CartItem{ProductID: f.mouseID, Quantity: 6}))
	assert.True(t, apperr.IsKind(err, apperr.InsufficientStock))
	assert.Contains(t, err.Error(), "Mouse")
	assert.Contains(t, err.Error(), "available 5")
	assert.Contains(t, err.Error(), "requested 6")

	mouse, _ := f.products.GetByID(f.mouseID)
	assert.Equal(t, 5, mouse.StockQuantity)
}

// A failure on a later cart line must not leak reservations from earlier
// lines: insufficient stock on line 2 rolls line 1's reduction back.
func TestOrderService_CreateOrderRollsBackEarlierLines(t *testing.T) {
	f := newOrderFixture(t, nil)

	_, err := f.orders.CreateOrder(validRequest(
		services.CartItem{ProductID: f.laptopID, Quantity: 2},
		services.CartItem{ProductID: f.mouseID, Quantity: 6},
	))
	assert.True(t, apperr.IsKind(err, apperr.InsufficientStock))

	laptop, _ := f.products.GetByID(f.laptopID)
	mouse, _ := f.products.GetByID(f.mouseID)
	assert.Equal(t, 10, laptop.StockQuantity)
	assert.Equal(t, 5, mouse.StockQuantity)
}

func TestOrderService_Cancel(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("Publish", "order.created", mock.Anything).Return(nil).Once()
	publisher.On("Publish", "order.cancelled", mock.Anything).Return(nil).Once()
	f := newOrderFixture(t, publisher)

	order, err := f.orders.CreateOrder(validRequest(
		services.CartItem{ProductID: f.laptopID, Quantity: 2},
		services.CartItem{ProductID: f.mouseID, Quantity: 1},
	))
	assert.NoError(t, err)

	cancelled, err := f.orders.Cancel(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	// The original decrements were reversed line by line.
	laptop, _ := f.products.GetByID(f.laptopID)
	mouse, _ := f.products.GetByID(f.mouseID)
	assert.Equal(t, 10, laptop.StockQuantity)
	assert.Equal(t, 5, mouse.StockQuantity)

	publisher.AssertExpectations(t)
}

func TestOrderService_CancelTerminalStates(t *testing.T) {
	f := newOrderFixture(t, nil)

	order, err := f.orders.CreateOrder(validRequest(services.CartItem{ProductID: f.laptopID, Quantity: 1}))
	assert.NoError(t, err)

	// Walk the order to DELIVERED, then try to cancel.
	for _, status := range []models.OrderStatus{models.StatusConfirmed, models.StatusShipped, models.StatusDelivered} {
		_, err = f.orders.UpdateStatus(order.ID, status)
		assert.NoError(t, err)
	}
	_, err = f.orders.Cancel(order.ID)
	assert.True(t, apperr.IsKind(err, apperr.IllegalTransition))
	assert.Contains(t, err.Error(), "already delivered")

	// Stock stays reserved: the delivered order keeps its units.
	laptop, _ := f.products.GetByID(f.laptopID)
	assert.Equal(t, 9, laptop.StockQuantity)

	// A cancelled order cannot be cancelled again (stock restored once).
	second, err := f.orders.CreateOrder(validRequest(services.CartItem{ProductID: f.laptopID, Quantity: 1}))
	assert.NoError(t, err)
	_, err = f.orders.Cancel(second.ID)
	assert.NoError(t, err)
	_, err = f.orders.Cancel(second.ID)
	assert.True(t, apperr.IsKind(err, apperr.IllegalTransition))
	assert.Contains(t, err.Error(), "already cancelled")
	laptop, _ = f.products.GetByID(f.laptopID)
	assert.Equal(t, 9, laptop.StockQuantity)
}

// Cancelling an order whose product has since been deleted still completes:
// the missing line is skipped, the rest is restored, the order closes.
func TestOrderService_CancelWithDeletedProduct(t *testing.T) {
	f := newOrderFixture(t, nil)

	order, err := f.orders.CreateOrder(validRequest(
		services.CartItem{ProductID: f.laptopID, Quantity: 2},
		services.CartItem{ProductID: f.mouseID, Quantity: 1},
	))
	assert.NoError(t, err)

	assert.NoError(t, f.products.Delete(f.laptopID))

	cancelled, err := f.orders.Cancel(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	mouse, _ := f.products.GetByID(f.mouseID)
	assert.Equal(t, 5, mouse.StockQuantity)
}

func TestOrderService_CancelUnknownOrder(t *testing.T) {
	f := newOrderFixture(t, nil)
	_, err := f.orders.Cancel(12345)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestOrderService_UpdateStatus(t *testing.T) {
	f := newOrderFixture(t, nil)

	order, err := f.orders.CreateOrder(validRequest(services.CartItem{ProductID: f.laptopID, Quantity: 1}))
	assert.NoError(t, err)

	updated, err := f.orders.UpdateStatus(order.ID, models.StatusConfirmed)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	// Skipping ahead in the graph is rejected.
	_, err = f.orders.UpdateStatus(order.ID, models.StatusDelivered)
	assert.True(t, apperr.IsKind(err, apperr.IllegalTransition))

	// Moving backwards is rejected.
	_, err = f.orders.UpdateStatus(order.ID, models.StatusPending)
	assert.True(t, apperr.IsKind(err, apperr.IllegalTransition))

	// Unknown status values are a validation problem, not a transition one.
	_, err = f.orders.UpdateStatus(order.ID, models.OrderStatus("MISPLACED"))
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	_, err = f.orders.UpdateStatus(9999, models.StatusConfirmed)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestOrderService_FindCustomerOrders(t *testing.T) {
	f := newOrderFixture(t, nil)

	order, err := f.orders.CreateOrder(validRequest(services.CartItem{ProductID: f.laptopID, Quantity: 1}))
	assert.NoError(t, err)

	byID, err := f.orders.FindCustomerOrders(order.ID, "")
	assert.NoError(t, err)
	assert.Len(t, byID, 1)

	byPhone, err := f.orders.FindCustomerOrders(0, "0912345678")
	assert.NoError(t, err)
	assert.Len(t, byPhone, 1)

	none, err := f.orders.FindCustomerOrders(0, "0000000000")
	assert.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.orders.FindCustomerOrders(0, "   ")
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestOrderService_Statistics(t *testing.T) {
	f := newOrderFixture(t, nil)

	first, err := f.orders.CreateOrder(validRequest(services.CartItem{ProductID: f.laptopID, Quantity: 1}))
	assert.NoError(t, err)
	_, err = f.orders.CreateOrder(validRequest(services.CartItem{ProductID: f.mouseID, Quantity: 2}))
	assert.NoError(t, err)
	_, err = f.orders.Cancel(first.ID)
	assert.NoError(t, err)

	counts, err := f.orders.StatusStatistics()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.StatusPending])
	assert.Equal(t, int64(1), counts[models.StatusCancelled])

	// Today's sales exclude the cancelled 100.00 order.
	sales, err := f.orders.TodaySales()
	assert.NoError(t, err)
	assert.True(t, sales.Equal(decimal.RequireFromString("100.00")), "sales were %s", sales)
}

// Publish failures are logged, never surfaced: the order still goes through.
func TestOrderService_PublishFailureDoesNotFailOrder(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("Publish", "order.created", mock.Anything).Return(assert.AnError).Once()
	f := newOrderFixture(t, publisher)

	order, err := f.orders.CreateOrder(validRequest(services.CartItem{ProductID: f.laptopID, Quantity: 1}))
	assert.NoError(t, err)
	assert.NotZero(t, order.ID)
	publisher.AssertExpectations(t)
}
