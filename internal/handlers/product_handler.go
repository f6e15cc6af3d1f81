package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"catalogue/internal/repositories"
	"catalogue/internal/services"
)

// ProductHandler handles HTTP requests for catalogue products.
type ProductHandler struct {
	service  *services.CatalogueService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.CatalogueService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app. auth
// guards the update endpoint; reads and creation are public.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", auth, h.HandleUpdateProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.Context())
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
		})
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.GetProductByID(c.Context(), productID)
	if err != nil {
		log.Printf("Error getting product by ID %s: %v", productID, err)
		return writeServiceError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// CreateProductRequest represents the request body for product creation.
// The older single-image shape is still accepted: a lone imageUrl is folded
// into the image list.
type CreateProductRequest struct {
	Name      string             `json:"name"`
	ImageURLs []string           `json:"imageUrls" validate:"omitempty,dive,url"`
	ImageURL  string             `json:"imageUrl" validate:"omitempty,url"`
	Ratings   map[string]float64 `json:"ratings"`
	Comment   string             `json:"comment"`
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	imageURLs := req.ImageURLs
	if len(imageURLs) == 0 && req.ImageURL != "" {
		imageURLs = []string{req.ImageURL}
	}

	var missing []string
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if len(imageURLs) == 0 {
		missing = append(missing, "imageUrls")
	}
	if len(missing) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":       "Missing required fields",
			"missingFields": missing,
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	product, err := h.service.CreateProduct(c.Context(), req.Name, imageURLs, req.Ratings, req.Comment)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return writeServiceError(c, err, "Could not create product")
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProductRequest represents the request body for a partial update.
// Comment is a pointer so an explicit empty string (clear the comment) is
// distinguishable from an absent field (leave it untouched).
type UpdateProductRequest struct {
	Ratings map[string]float64 `json:"ratings"`
	Comment *string            `json:"comment"`
}

// HandleUpdateProduct applies a partial ratings/comment update.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	productID := c.Params("id")

	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update request body for product %s: %v", productID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	updatedFields, err := h.service.UpdateProduct(c.Context(), productID, req.Ratings, req.Comment)
	if err != nil {
		log.Printf("Error updating product %s: %v", productID, err)
		return writeServiceError(c, err, "Could not update product")
	}

	return c.JSON(fiber.Map{
		"message":       fmt.Sprintf("Product %s updated successfully", productID),
		"updatedFields": updatedFields,
	})
}

// writeServiceError maps service and repository errors to the response
// taxonomy: validation 400, invalid id 400, not found 404, duplicate 409,
// everything else a 500 whose body carries only the generic message.
func writeServiceError(c *fiber.Ctx, err error, genericMessage string) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": validationErr.Message,
		})
	case errors.Is(err, repositories.ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid product id",
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	case errors.Is(err, repositories.ErrDuplicateID):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Product id already exists",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": genericMessage,
		})
	}
}
