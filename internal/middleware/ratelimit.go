package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimiter cria o middleware de rate limiting geral da API
func RateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        100,             // 100 requests
		Expiration: 1 * time.Minute, // por minuto
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() // Limitar por IP
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"erro":        "rate limit excedido",
				"mensagem":    "muitas solicitações, tente novamente em um minuto",
				"retry_after": 60,
			})
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
	})
}

// StrictRateLimiter cria um rate limiter mais estrito para os endpoints de
// autenticação e recuperação de senha (proteção contra força bruta)
func StrictRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,              // Somente 10 requests
		Expiration: 1 * time.Minute, // por minuto
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + ":" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"erro":        "rate limit excedido",
				"mensagem":    "muitas tentativas de autenticação, tente novamente em um minuto",
				"retry_after": 60,
			})
		},
	})
}
