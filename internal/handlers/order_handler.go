package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"shop/internal/models"
	"shop/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/orders", h.HandleCreateOrder)
	router.Get("/orders/customer", h.HandleGetCustomerOrders)
	router.Get("/orders/:id", h.HandleGetOrderByID)

	admin := router.Group("/admin/orders")
	admin.Get("/", h.HandleGetOrders)
	admin.Patch("/:id/status", h.HandleUpdateOrderStatus)
	admin.Patch("/:id/cancel", h.HandleCancelOrder)
}

// HandleCreateOrder places a new order from a cart payload.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing order request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, err := h.service.CreateOrder(req)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return errorResponse(c, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, err, "Invalid order ID")
	}
	order, err := h.service.GetOrderByID(id)
	if err != nil {
		log.Printf("Error getting order by ID %d: %v", id, err)
		return errorResponse(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleGetCustomerOrders looks orders up by ?order_id= and/or ?phone=.
func (h *OrderHandler) HandleGetCustomerOrders(c *fiber.Ctx) error {
	var orderID uint
	if raw := c.Query("order_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "order_id must be a positive integer",
			})
		}
		orderID = uint(parsed)
	}

	orders, err := h.service.FindCustomerOrders(orderID, c.Query("phone"))
	if err != nil {
		log.Printf("Error finding customer orders: %v", err)
		return errorResponse(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrders retrieves all orders for the admin UI.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return errorResponse(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleUpdateOrderStatus moves an order to a new status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, err, "Invalid order ID")
	}

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}
	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	order, err := h.service.UpdateStatus(id, req.Status)
	if err != nil {
		log.Printf("Error updating status for order %d: %v", id, err)
		return errorResponse(c, err, "Could not update order status")
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels an order and restores its reserved stock.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, err, "Invalid order ID")
	}
	order, err := h.service.Cancel(id)
	if err != nil {
		log.Printf("Error cancelling order %d: %v", id, err)
		return errorResponse(c, err, "Could not cancel order")
	}
	return c.JSON(order)
}
