package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/zyn/internal/cache"
	"github.com/yourorg/zyn/internal/models"
)

func TestPageCount(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{100, 100, 1},
	}
	for _, tc := range cases {
		if got := pageCount(tc.total, tc.limit); got != tc.want {
			t.Errorf("pageCount(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}

// asUser simula o middleware de auth injetando a identidade do token.
func asUser(userID int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}

func newHistoryTestApp(userID int64, c *cache.Cache) *fiber.App {
	app := fiber.New()
	h := NewMetricHistoryHandler(nil, c)
	app.Get("/api/registros-saude/historico/:usuario_id", asUser(userID), h.GetHistory)
	return app
}

func historyGet(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	return resp
}

func TestGetHistoryOwnership(t *testing.T) {
	app := newHistoryTestApp(99, nil)

	resp := historyGet(t, app, "/api/registros-saude/historico/7")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}
}

func TestGetHistoryInvalidParams(t *testing.T) {
	app := newHistoryTestApp(7, nil)

	cases := []struct {
		name string
		path string
	}{
		{"id inválido", "/api/registros-saude/historico/abc"},
		{"tipo desconhecido", "/api/registros-saude/historico/7?tipo_metrica=imc"},
		{"data inicial inválida", "/api/registros-saude/historico/7?data_inicio=01-01-2026"},
		{"data final inválida", "/api/registros-saude/historico/7?data_fim=hoje"},
		{"página zero", "/api/registros-saude/historico/7?page=0"},
		{"página negativa", "/api/registros-saude/historico/7?page=-2"},
		{"limite zero", "/api/registros-saude/historico/7?limit=0"},
	}
	for _, tc := range cases {
		resp := historyGet(t, app, tc.path)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, resp.StatusCode)
		}
	}
}

func TestGetHistoryServedFromCache(t *testing.T) {
	c := cache.NewCache(2*time.Minute, 5*time.Minute)
	defer c.Stop()

	cached := models.MetricHistoryResponse{
		Data: []models.MetricHistoryEntry{
			{ID: 1, UsuarioID: 7, TipoMetrica: "peso", Valor: 82.5},
		},
		Pagination: models.Pagination{Total: 1, Page: 1, Limit: 10, Pages: 1},
	}
	c.Set("historico:7::::1:10", cached)

	app := newHistoryTestApp(7, c)

	// db é nil: a resposta só pode ter vindo do cache
	resp := historyGet(t, app, "/api/registros-saude/historico/7")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Erro lendo corpo da resposta: %v", err)
	}
	var out models.MetricHistoryResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Erro decodificando resposta: %v", err)
	}
	if len(out.Data) != 1 || out.Data[0].Valor != 82.5 {
		t.Errorf("Unexpected data: %+v", out.Data)
	}
	if out.Pagination.Total != 1 || out.Pagination.Pages != 1 {
		t.Errorf("Unexpected pagination: %+v", out.Pagination)
	}
}

func TestGetHistoryCacheKeyIncludesFilters(t *testing.T) {
	c := cache.NewCache(2*time.Minute, 5*time.Minute)
	defer c.Stop()

	// Só a página sem filtros está no cache
	c.Set("historico:7::::1:10", models.MetricHistoryResponse{
		Pagination: models.Pagination{Page: 1, Limit: 10},
	})

	app := newHistoryTestApp(7, c)

	// Com filtro de tipo a chave é outra: cache miss e, sem banco, 500
	resp := historyGet(t, app, "/api/registros-saude/historico/7?tipo_metrica=peso")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected 500 on cache miss without database, got %d", resp.StatusCode)
	}
}
