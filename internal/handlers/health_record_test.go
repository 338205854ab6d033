package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newHealthRecordTestApp(userID int64) *fiber.App {
	app := fiber.New()
	h := NewHealthRecordHandler(nil, nil)
	grupo := app.Group("/api/registros-saude", asUser(userID))
	grupo.Put("/update-full", h.UpdateFull)
	grupo.Put("/weight", h.UpdateWeight)
	grupo.Put("/height", h.UpdateHeight)
	grupo.Put("/body-fat", h.UpdateBodyFat)
	grupo.Put("/exercise", h.UpdateExercise)
	grupo.Put("/weight-goal", h.UpdateWeightGoal)
	grupo.Get("/:usuario_id", h.GetByUserID)
	return app
}

func putJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	return resp
}

func TestUpdateFullValidation(t *testing.T) {
	app := newHealthRecordTestApp(7)

	cases := []struct {
		name string
		body string
	}{
		{"json inválido", `{`},
		{"sem usuario_id", `{"peso":82.5,"altura":1.75,"gordura_corporal":20,"faz_exercicio":true,"meta_perda_peso":5}`},
		{"sem peso", `{"usuario_id":7,"altura":1.75,"gordura_corporal":20,"faz_exercicio":true,"meta_perda_peso":5}`},
		{"peso zero", `{"usuario_id":7,"peso":0,"altura":1.75,"gordura_corporal":20,"faz_exercicio":true,"meta_perda_peso":5}`},
		{"altura negativa", `{"usuario_id":7,"peso":82.5,"altura":-1,"gordura_corporal":20,"faz_exercicio":true,"meta_perda_peso":5}`},
		{"gordura negativa", `{"usuario_id":7,"peso":82.5,"altura":1.75,"gordura_corporal":-1,"faz_exercicio":true,"meta_perda_peso":5}`},
		{"meta negativa", `{"usuario_id":7,"peso":82.5,"altura":1.75,"gordura_corporal":20,"faz_exercicio":true,"meta_perda_peso":-5}`},
		{"sem faz_exercicio", `{"usuario_id":7,"peso":82.5,"altura":1.75,"gordura_corporal":20,"meta_perda_peso":5}`},
	}
	for _, tc := range cases {
		resp := putJSON(t, app, "/api/registros-saude/update-full", tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, resp.StatusCode)
		}
	}
}

func TestUpdateFullOwnership(t *testing.T) {
	app := newHealthRecordTestApp(99)

	body := `{"usuario_id":7,"peso":82.5,"altura":1.75,"gordura_corporal":20,"faz_exercicio":true,"meta_perda_peso":5}`
	resp := putJSON(t, app, "/api/registros-saude/update-full", body)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}
}

func TestSingleFieldUpdateValidation(t *testing.T) {
	app := newHealthRecordTestApp(7)

	cases := []struct {
		name string
		path string
		body string
	}{
		{"peso ausente", "/api/registros-saude/weight", `{"usuario_id":7}`},
		{"peso zero", "/api/registros-saude/weight", `{"usuario_id":7,"peso":0}`},
		{"altura ausente", "/api/registros-saude/height", `{"usuario_id":7}`},
		{"gordura negativa", "/api/registros-saude/body-fat", `{"usuario_id":7,"gordura_corporal":-1}`},
		{"exercício ausente", "/api/registros-saude/exercise", `{"usuario_id":7}`},
		{"exercício inválido", "/api/registros-saude/exercise", `{"usuario_id":7,"faz_exercicio":"talvez"}`},
		{"meta negativa", "/api/registros-saude/weight-goal", `{"usuario_id":7,"meta_perda_peso":-2}`},
	}
	for _, tc := range cases {
		resp := putJSON(t, app, tc.path, tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, resp.StatusCode)
		}
	}
}

func TestSingleFieldUpdateOwnership(t *testing.T) {
	app := newHealthRecordTestApp(99)

	cases := []struct {
		path string
		body string
	}{
		{"/api/registros-saude/weight", `{"usuario_id":7,"peso":82.5}`},
		{"/api/registros-saude/height", `{"usuario_id":7,"altura":1.75}`},
		{"/api/registros-saude/body-fat", `{"usuario_id":7,"gordura_corporal":20}`},
		{"/api/registros-saude/exercise", `{"usuario_id":7,"faz_exercicio":"sim"}`},
		{"/api/registros-saude/weight-goal", `{"usuario_id":7,"meta_perda_peso":5}`},
	}
	for _, tc := range cases {
		resp := putJSON(t, app, tc.path, tc.body)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", tc.path, resp.StatusCode)
		}
	}
}

func TestGetByUserIDOwnership(t *testing.T) {
	app := newHealthRecordTestApp(99)

	req := httptest.NewRequest(http.MethodGet, "/api/registros-saude/7", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}
}

func TestGetByUserIDInvalidID(t *testing.T) {
	app := newHealthRecordTestApp(7)

	req := httptest.NewRequest(http.MethodGet, "/api/registros-saude/abc", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}
