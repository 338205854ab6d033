package routes

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/yourorg/zyn/internal/cache"
	"github.com/yourorg/zyn/internal/debug"
	"github.com/yourorg/zyn/internal/handlers"
	"github.com/yourorg/zyn/internal/middleware"
)

func Register(app *fiber.App, db *sql.DB) {
	api := app.Group("/api")

	// Health check (sem rate limiting)
	api.Get("/health", handlers.Health)

	// ============================================================================
	// USUÁRIOS (cadastro e autenticação, com rate limiting estrito)
	// ============================================================================
	users := api.Group("/users")
	users.Post("/register-full", middleware.StrictRateLimiter(), handlers.RegisterFull)
	users.Post("/login", middleware.StrictRateLimiter(), handlers.Login)
	users.Post("/forgot-password", middleware.StrictRateLimiter(), handlers.ForgotPassword)
	users.Post("/reset-password", middleware.StrictRateLimiter(), handlers.ResetPassword)

	// Exclusão de conta exige token e só permite a própria conta
	users.Delete("/:id", middleware.RequireAuth(handlers.JWTSecret()), handlers.DeleteUser)

	// Initialize handlers
	healthRecordHandler := handlers.NewHealthRecordHandler(db, cache.HistoryCache)
	metricHistoryHandler := handlers.NewMetricHistoryHandler(db, cache.HistoryCache)

	// ============================================================================
	// REGISTROS DE SAÚDE (todas as rotas exigem token)
	// ============================================================================
	saude := api.Group("/registros-saude")
	saude.Use(middleware.RateLimiter())
	saude.Use(middleware.RequireAuth(handlers.JWTSecret()))

	saude.Put("/update-full", healthRecordHandler.UpdateFull)
	// PUT /api/registros-saude/update-full
	// Body: {usuario_id, peso, altura, gordura_corporal, faz_exercicio, meta_perda_peso}

	saude.Put("/weight", healthRecordHandler.UpdateWeight)
	saude.Put("/height", healthRecordHandler.UpdateHeight)
	saude.Put("/body-fat", healthRecordHandler.UpdateBodyFat)
	saude.Put("/exercise", healthRecordHandler.UpdateExercise)
	saude.Put("/weight-goal", healthRecordHandler.UpdateWeightGoal)

	// Histórico registrado ANTES de /:usuario_id para não colidir com o param
	saude.Get("/historico/:usuario_id", metricHistoryHandler.GetHistory)
	// GET /api/registros-saude/historico/1?tipo_metrica=peso&data_inicio=2026-01-01&page=1&limit=10

	saude.Get("/:usuario_id", healthRecordHandler.GetByUserID)

	// ============================================================================
	// DEBUG DASHBOARD WEBSOCKET
	// ============================================================================
	app.Use("/ws/debug", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/debug", websocket.New(func(c *websocket.Conn) {
		debug.HandleWebSocketFiber(c)
	}))
}
