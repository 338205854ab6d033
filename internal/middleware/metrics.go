package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/zyn/internal/debug"
)

// RequestMetrics captura método, rota, status e duração de cada request e
// transmite para o dashboard de monitoramento quando habilitado
func RequestMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !debug.IsEnabled() {
			return c.Next()
		}

		start := time.Now()

		err := c.Next()

		duration := time.Since(start)

		metadata := map[string]interface{}{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      c.Response().StatusCode(),
			"duration_ms": duration.Milliseconds(),
			"ip":          c.IP(),
		}

		level := "info"
		if c.Response().StatusCode() >= 400 {
			level = "warn"
		}
		if c.Response().StatusCode() >= 500 {
			level = "error"
		}

		debug.SendLog("api", level, c.Method()+" "+c.Path(), metadata)

		return err
	}
}
