package main

import (
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/yourorg/zyn/internal/cache"
	appdb "github.com/yourorg/zyn/internal/db"
	"github.com/yourorg/zyn/internal/handlers"
	"github.com/yourorg/zyn/internal/middleware"
	"github.com/yourorg/zyn/internal/routes"
)

func main() {
	_ = godotenv.Load()

	app := fiber.New(fiber.Config{
		AppName: "zyn-backend",
	})
	app.Use(logger.New())
	app.Use(middleware.RequestMetrics())

	// ============================================================================
	// CACHES EM MEMÓRIA
	// ============================================================================
	cache.InitCaches()

	// ============================================================================
	// DB CONNECTION
	// ============================================================================
	db := connectWithRetry()
	if err := appdb.EnsureSchema(db); err != nil {
		log.Fatalf("❌ Erro preparando schema: %v", err)
	}
	handlers.Setup(db)
	routes.Register(app, db)
	log.Println("✅ Banco de dados pronto e rotas registradas")

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\n🛑 Sinal de término recebido, encerrando servidor...")

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Erro encerrando servidor: %v", err)
		}
		cache.StopCaches()
		if err := db.Close(); err != nil {
			log.Printf("⚠️  Erro fechando conexão com o banco: %v", err)
		}

		log.Println("✅ Servidor encerrado corretamente")
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Servidor escutando em :%s", port)
	log.Println("📍 Endpoints disponíveis:")
	log.Println("   POST   /api/users/register-full            - Cadastro completo")
	log.Println("   POST   /api/users/login                    - Login")
	log.Println("   POST   /api/users/forgot-password          - Recuperação de senha")
	log.Println("   POST   /api/users/reset-password           - Redefinição de senha")
	log.Println("   DELETE /api/users/:id                      - Exclusão de conta")
	log.Println("   PUT    /api/registros-saude/update-full    - Atualização completa")
	log.Println("   PUT    /api/registros-saude/weight|height|body-fat|exercise|weight-goal")
	log.Println("   GET    /api/registros-saude/historico/:usuario_id - Histórico paginado")
	log.Println("💡 Pressione Ctrl+C para encerrar")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}

// connectWithRetry bloqueia até a conexão com o MySQL ficar disponível.
// Em deploys com docker-compose o banco pode subir depois do backend.
func connectWithRetry() *sql.DB {
	for {
		db, err := appdb.Connect()
		if err != nil {
			log.Printf("db connect error: %v (tentando novamente em 5s)", err)
			time.Sleep(5 * time.Second)
			continue
		}
		return db
	}
}
