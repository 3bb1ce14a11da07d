package handlers

import (
	"qrmenu/internal/middleware"
	"qrmenu/internal/repositories"
	"qrmenu/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, chain ...fiber.Handler) {
	productRoutes := router.Group("/products", chain...)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// productForm accepts both JSON and multipart bodies. The image travels as
// the multipart file "image".
type productForm struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Price       string `json:"price" form:"price"`
	ImageURL    string `json:"image_url" form:"image_url"`
	IsAvailable *bool  `json:"is_available" form:"is_available"`
	Order       int    `json:"order" form:"order"`
	CategoryID  string `json:"category_id" form:"category_id"`
	RemoveImage bool   `json:"remove_image" form:"remove_image"`
}

func productInput(c *fiber.Ctx) (services.ProductInput, error) {
	var form productForm
	if err := c.BodyParser(&form); err != nil {
		return services.ProductInput{}, badBody(err)
	}
	image, err := fileFrom(c, "image")
	if err != nil {
		return services.ProductInput{}, err
	}
	available := true
	if form.IsAvailable != nil {
		available = *form.IsAvailable
	}
	return services.ProductInput{
		Title:       form.Title,
		Description: form.Description,
		Price:       form.Price,
		ImageURL:    form.ImageURL,
		IsAvailable: available,
		Order:       form.Order,
		CategoryID:  form.CategoryID,
		RemoveImage: form.RemoveImage,
		Image:       image,
	}, nil
}

// HandleGetProducts retrieves the products in the caller's scope,
// optionally narrowed by ?category_id.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	products, err := h.service.List(c.UserContext(), p, repositories.ProductFilter{
		CategoryID: c.Query("category_id"),
	})
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	product, err := h.service.Get(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	in, err := productInput(c)
	if err != nil {
		return err
	}
	product, err := h.service.Create(c.UserContext(), p, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"product": product,
	})
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	in, err := productInput(c)
	if err != nil {
		return err
	}
	product, err := h.service.Update(c.UserContext(), p, c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": product,
	})
}

// HandleDeleteProduct deletes a product and its uploaded image.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
