package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shop/internal/models"
	"shop/internal/services"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	stock    *services.StockService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, stock *services.StockService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		stock:    stock,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleGetProducts)
	router.Get("/products/:id", h.HandleGetProductByID)
	router.Get("/categories", h.HandleGetCategories)

	admin := router.Group("/admin/products")
	admin.Get("/", h.HandleGetAllProducts)
	admin.Post("/", h.HandleCreateProduct)
	admin.Put("/:id", h.HandleUpdateProduct)
	admin.Delete("/:id", h.HandleDeleteProduct)
	admin.Patch("/:id/toggle-status", h.HandleToggleStatus)
	admin.Patch("/:id/stock", h.HandleSetStock)
}

// productRequest is the body for product create/update. IsActive is a
// pointer so an omitted flag defaults to active rather than inactive.
type productRequest struct {
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Description   string          `json:"description"`
	IsActive      *bool           `json:"is_active"`
	StockQuantity int             `json:"stock_quantity"`
}

func (req *productRequest) toProduct(id uint) *models.Product {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &models.Product{
		ID:            id,
		Name:          req.Name,
		Category:      req.Category,
		Price:         req.Price,
		Description:   req.Description,
		IsActive:      active,
		StockQuantity: req.StockQuantity,
	}
}

// HandleGetProducts lists active products for the storefront, optionally
// filtered by ?category= and ?name=.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.SearchActiveProducts(c.Query("category"), c.Query("name"))
	if err != nil {
		log.Printf("Error getting products: %v", err)
		return errorResponse(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single active product for the storefront.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, err, "Invalid product ID")
	}
	product, err := h.service.GetProductByID(id)
	if err != nil {
		log.Printf("Error getting product by ID %d: %v", id, err)
		return errorResponse(c, err, "Could not retrieve product")
	}
	if !product.IsActive {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product is not available",
		})
	}
	return c.JSON(product)
}

// HandleGetCategories lists the distinct categories of active products.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories()
	if err != nil {
		log.Printf("Error getting categories: %v", err)
		return errorResponse(c, err, "Could not retrieve categories")
	}
	return c.JSON(categories)
}

// HandleGetAllProducts lists every product, active or not, for the admin UI.
func (h *ProductHandler) HandleGetAllProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return errorResponse(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product := req.toProduct(0)
	if err := h.validate.Struct(product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.service.CreateProduct(product); err != nil {
		log.Printf("Error creating product: %v", err)
		return errorResponse(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, err, "Invalid product ID")
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product := req.toProduct(id)
	if err := h.service.UpdateProduct(product); err != nil {
		log.Printf("Error updating product %d: %v", id, err)
		return errorResponse(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, err, "Invalid product ID")
	}
	if err := h.service.DeleteProduct(id); err != nil {
		log.Printf("Error deleting product %d: %v", id, err)
		return errorResponse(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}

// HandleToggleStatus flips a product's active flag.
func (h *ProductHandler) HandleToggleStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, err, "Invalid product ID")
	}
	product, err := h.service.ToggleActive(id)
	if err != nil {
		log.Printf("Error toggling status for product %d: %v", id, err)
		return errorResponse(c, err, "Could not toggle product status")
	}
	return c.JSON(product)
}

// HandleSetStock writes an absolute stock quantity for a product.
func (h *ProductHandler) HandleSetStock(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return errorResponse(c, err, "Invalid product ID")
	}

	var req struct {
		StockQuantity int `json:"stock_quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing stock request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.stock.SetStock(id, req.StockQuantity)
	if err != nil {
		log.Printf("Error setting stock for product %d: %v", id, err)
		return errorResponse(c, err, "Could not update stock")
	}
	return c.JSON(product)
}
