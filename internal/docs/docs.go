// Package docs serves the API documentation: a Swagger UI page and the
// OpenAPI document it renders.
package docs

import (
	"embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed openapi.yaml swagger.html
var files embed.FS

// OpenAPIHandler serves the embedded OpenAPI document.
func OpenAPIHandler(c *fiber.Ctx) error {
	return serve(c, "openapi.yaml", "application/yaml; charset=utf-8")
}

// SwaggerUIHandler serves the Swagger UI page.
func SwaggerUIHandler(c *fiber.Ctx) error {
	return serve(c, "swagger.html", fiber.MIMETextHTMLCharsetUTF8)
}

func serve(c *fiber.Ctx, name, contentType string) error {
	b, err := files.ReadFile(name)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, name+" not found")
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(b)
}

// RegisterRoutes mounts the documentation under /docs.
func RegisterRoutes(router fiber.Router) {
	docs := router.Group("/docs")
	docs.Get("/", SwaggerUIHandler)
	docs.Get("/openapi.yaml", OpenAPIHandler)
}
