package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"shop/internal/services"
)

// DashboardHandler serves the admin dashboard aggregates.
type DashboardHandler struct {
	orders   *services.OrderService
	products *services.ProductService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(orders *services.OrderService, products *services.ProductService) *DashboardHandler {
	return &DashboardHandler{
		orders:   orders,
		products: products,
	}
}

// RegisterRoutes registers the dashboard route with the Fiber app.
func (h *DashboardHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/admin/dashboard", h.HandleGetDashboard)
}

// HandleGetDashboard aggregates order and catalog statistics.
func (h *DashboardHandler) HandleGetDashboard(c *fiber.Ctx) error {
	statusCounts, err := h.orders.StatusStatistics()
	if err != nil {
		log.Printf("Error getting order statistics: %v", err)
		return errorResponse(c, err, "Could not compute dashboard statistics")
	}
	todaySales, err := h.orders.TodaySales()
	if err != nil {
		log.Printf("Error getting today's sales: %v", err)
		return errorResponse(c, err, "Could not compute dashboard statistics")
	}
	activeCount, err := h.products.CountActiveProducts()
	if err != nil {
		log.Printf("Error counting active products: %v", err)
		return errorResponse(c, err, "Could not compute dashboard statistics")
	}
	inactiveCount, err := h.products.CountInactiveProducts()
	if err != nil {
		log.Printf("Error counting inactive products: %v", err)
		return errorResponse(c, err, "Could not compute dashboard statistics")
	}
	lowStock, err := h.products.LowStockProducts(c.QueryInt("low_stock_threshold"))
	if err != nil {
		log.Printf("Error listing low-stock products: %v", err)
		return errorResponse(c, err, "Could not compute dashboard statistics")
	}

	return c.JSON(fiber.Map{
		"order_status_counts": statusCounts,
		"today_sales":         todaySales,
		"active_products":     activeCount,
		"inactive_products":   inactiveCount,
		"low_stock_products":  lowStock,
	})
}
