package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yourorg/zyn/internal/models"
)

// RequireAuth valida o bearer token e injeta a identidade nos locals da
// requisição ("userID" int64, "email" string). Sem token: 401. Token
// malformado, assinatura errada ou expirado: 403, sempre com a mesma
// mensagem, sem distinguir a causa para o cliente.
func RequireAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Erro: "Acesso negado. Token não fornecido."})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Erro: "Token inválido ou expirado."})
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Erro: "Token inválido ou expirado."})
		}

		sub, err := claims.GetSubject()
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Erro: "Token inválido ou expirado."})
		}
		userID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Erro: "Token inválido ou expirado."})
		}

		c.Locals("userID", userID)
		if email, ok := claims["email"].(string); ok {
			c.Locals("email", email)
		}

		return c.Next()
	}
}
