package handlers

import (
	"errors"
	"log"
	"strconv"

	"productos/internal/models"
	"productos/internal/repositories"
	"productos/internal/services"
	"productos/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

// Messages returned to API clients.
const (
	MsgProductNotFound = "Producto no encontrado"
	MsgListFailed      = "Error al obtener los productos"
	MsgCreateFailed    = "Error al crear el producto"
	MsgUpdateFailed    = "Error al actualizar el producto"
	MsgDeleteFailed    = "Error al eliminar el producto"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes binds every product route, each one behind its validation chain.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	validID := validation.Handler(
		validation.Param("id").
			IsNumeric("El id debe ser un numero").
			NotEmpty("El id es requerido"),
	)

	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", validID, h.HandleGetProductByID)
	productRoutes.Post("/", validation.Handler(productBodyRules()...), h.HandleCreateProduct)
	productRoutes.Put("/:id", validation.Handler(append(productBodyRules(),
		validation.Body("availability").
			IsBoolean("El campo availability debe ser un booleano"),
	)...), h.HandleUpdateProduct)
	productRoutes.Patch("/:id", h.HandleToggleAvailability)
	productRoutes.Delete("/:id", validID, h.HandleDeleteProduct)
}

func productBodyRules() []*validation.Chain {
	return []*validation.Chain{
		validation.Body("name").
			NotEmpty("El nombre del producto es requerido"),
		validation.Body("price").
			IsNumeric("Valor no valido").
			NotEmpty("El precio del producto es requerido").
			GreaterThan(0, "El precio debe ser mayor a 0"),
	}
}

// HandleGetProducts lists every product with its listing columns.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": MsgListFailed,
		})
	}

	data := make([]models.ProductSummary, 0, len(products))
	for _, p := range products {
		data = append(data, p.Summary())
	}
	return c.JSON(fiber.Map{"data": data})
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}

	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, MsgListFailed, "getting product", id)
	}
	return c.JSON(fiber.Map{"data": product})
}

// HandleCreateProduct creates a new product from the validated body.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	input, err := productInput(c)
	if err != nil {
		return err
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err, MsgCreateFailed, "creating product", 0)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": product})
}

// HandleUpdateProduct replaces the fields of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	input, err := productInput(c)
	if err != nil {
		return err
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, input)
	if err != nil {
		return h.fail(c, err, MsgUpdateFailed, "updating product", id)
	}
	return c.JSON(fiber.Map{"data": product})
}

// HandleToggleAvailability flips the availability of a product.
func (h *ProductHandler) HandleToggleAvailability(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}

	product, err := h.service.ToggleAvailability(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, MsgUpdateFailed, "toggling availability of product", id)
	}
	return c.JSON(fiber.Map{"data": product})
}

// HandleDeleteProduct deletes a product and returns what was removed.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}

	product, err := h.service.DeleteProduct(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, MsgDeleteFailed, "deleting product", id)
	}
	return c.JSON(fiber.Map{"data": product})
}

// fail maps service errors to responses: 404 for unknown products, 400 for
// invariant violations that slipped past validation, 500 for everything else.
func (h *ProductHandler) fail(c *fiber.Ctx, err error, message, action string, id uint) error {
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		return notFound(c)
	case errors.Is(err, services.ErrInvalidProduct):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	log.Printf("Error %s %d: %v", action, id, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
	})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": MsgProductNotFound,
	})
}

// productID parses the id route parameter. Anything that is not a positive
// integer cannot name a stored product.
func productID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func productInput(c *fiber.Ctx) (services.ProductInput, error) {
	body, err := validation.BodyFrom(c)
	if err != nil {
		return services.ProductInput{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	input := services.ProductInput{
		Name:  cast.ToString(body["name"]),
		Price: cast.ToFloat64(body["price"]),
	}
	if raw, ok := body["availability"]; ok && raw != nil {
		availability := cast.ToBool(raw)
		input.Availability = &availability
	}
	return input, nil
}
