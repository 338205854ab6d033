package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("segredo-de-teste-com-32-caracteres!")

func newAuthTestApp(secret []byte) *fiber.App {
	app := fiber.New()
	app.Get("/protegida", RequireAuth(secret), func(c *fiber.Ctx) error {
		userID, _ := c.Locals("userID").(int64)
		email, _ := c.Locals("email").(string)
		return c.JSON(fiber.Map{"user_id": userID, "email": email})
	})
	return app
}

func signToken(t *testing.T, secret []byte, sub string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": "ana@example.com",
		"exp":   expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("Erro assinando token de teste: %v", err)
	}
	return signed
}

func TestRequireAuthMissingToken(t *testing.T) {
	app := newAuthTestApp(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	app := newAuthTestApp(testSecret)

	for _, header := range []string{"Token abc", "Bearer", "abc.def.ghi"} {
		req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
		req.Header.Set("Authorization", header)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test returned error: %v", err)
		}
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("Header %q: expected 403, got %d", header, resp.StatusCode)
		}
	}
}

func TestRequireAuthWrongSecret(t *testing.T) {
	app := newAuthTestApp(testSecret)

	signed := signToken(t, []byte("outro-segredo-igualmente-longo-aqui"), "7", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	app := newAuthTestApp(testSecret)

	signed := signToken(t, testSecret, "7", time.Now().Add(-time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 for expired token, got %d", resp.StatusCode)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	app := newAuthTestApp(testSecret)

	signed := signToken(t, testSecret, "7", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestRequireAuthNonNumericSubject(t *testing.T) {
	app := newAuthTestApp(testSecret)

	signed := signToken(t, testSecret, "nao-numerico", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}
}
