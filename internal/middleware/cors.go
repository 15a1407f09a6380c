package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS only lets browsers on frontendURL call the API. Requests with a
// different Origin are rejected; requests without one are not cross-origin
// and pass through untouched.
func CORS(frontendURL string) fiber.Handler {
	headers := cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return frontendURL != "" && origin == frontendURL
		},
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	})

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}
		if frontendURL == "" || origin != frontendURL {
			log.Printf("Rejected cross-origin request from %s", origin)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "No permitido por CORS",
			})
		}
		return headers(c)
	}
}
