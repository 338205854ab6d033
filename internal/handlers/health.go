package handlers

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Health handles GET /api/health. Responde 503 quando o banco não está
// acessível, para que o load balancer tire a instância de rotação.
func Health(c *fiber.Ctx) error {
	services := fiber.Map{}
	status := "healthy"
	code := fiber.StatusOK

	db := getDBConn()
	if db == nil {
		services["mysql"] = "down"
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			services["mysql"] = "down"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		} else {
			services["mysql"] = "up"
		}
	}

	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "dev"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"version":  version,
		"services": services,
	})
}
