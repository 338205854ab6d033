package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yourorg/zyn/internal/cache"
	"github.com/yourorg/zyn/internal/mailer"
	"github.com/yourorg/zyn/internal/models"
	"github.com/yourorg/zyn/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// Custo fixo do bcrypt, igual ao da API original
const bcryptCost = 10

// package-level dependencies
var (
	setupOnce sync.Once    // Garante inicialização única
	setupMu   sync.RWMutex // Protege acesso às variáveis globais
	dbConn    *sql.DB
	jwtSecret []byte
	tokenTTL  = 24 * time.Hour
)

// Setup wires shared dependencies for handlers. Call this during app bootstrap.
func Setup(db *sql.DB) {
	setupOnce.Do(func() {
		setupMu.Lock()
		defer setupMu.Unlock()

		dbConn = db
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			if os.Getenv("ENV") == "production" || os.Getenv("ENVIRONMENT") == "production" {
				log.Fatal("❌ CRITICAL: JWT_SECRET must be set in production environment")
			}
			log.Println("⚠️ WARNING: Using default JWT secret (development only)")
			secret = "dev-secret-change-me-zyn-backend"
		}

		if len(secret) < 32 {
			log.Fatalf("❌ CRITICAL: JWT_SECRET must be at least 32 characters long (current: %d)", len(secret))
		}

		jwtSecret = []byte(secret)

		if ttl := os.Getenv("JWT_TTL"); ttl != "" {
			dur, err := time.ParseDuration(ttl)
			if err != nil || dur <= 0 {
				log.Printf("invalid JWT_TTL=%q, using default %s", ttl, tokenTTL)
			} else {
				tokenTTL = dur
			}
		}
	})
}

// getDBConn retorna a conexão de banco de forma segura
func getDBConn() *sql.DB {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return dbConn
}

// JWTSecret retorna o secret usado para assinar e validar tokens
func JWTSecret() []byte {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return jwtSecret
}

type userClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func issueToken(userID int64, email string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(tokenTTL)
	claims := userClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(JWTSecret())
	return signed, expires, err
}

// isDuplicateEntry detecta violação de chave única (erro 1062 do MySQL)
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// RegisterFull handles POST /api/users/register-full.
// Cria o usuário e o registro de saúde inicial em uma única transação;
// nenhum estado parcial (usuário sem registro) fica visível em caso de falha.
func RegisterFull(c *fiber.Ctx) error {
	var req models.RegisterFullRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "JSON inválido"})
	}
	req.Nome = strings.TrimSpace(req.Nome)
	req.Email = validation.NormalizeEmail(req.Email)

	// Validação sempre antes de qualquer acesso ao banco
	if ferr := validation.Struct(req); ferr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: ferr.Error()})
	}
	if ferr := validation.CheckPassword(req.Senha); ferr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: ferr.Error()})
	}

	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "servidor não está pronto"})
	}

	// Pré-checagem de email duplicado. A constraint UNIQUE é a garantia
	// definitiva contra corrida entre a checagem e o INSERT.
	var existingID int64
	err := db.QueryRow(`SELECT id FROM usuarios WHERE email = ?`, req.Email).Scan(&existingID)
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{Erro: "Email já cadastrado"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("❌ Erro verificando email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao cadastrar usuário"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcryptCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao cadastrar usuário"})
	}

	gordura := 0.0
	if req.GorduraCorporal != nil {
		gordura = *req.GorduraCorporal
	}
	fazExercicio := false
	if req.FazExercicio != nil {
		fazExercicio = bool(*req.FazExercicio)
	}
	meta := 0.0
	if req.MetaPerdaPeso != nil {
		meta = *req.MetaPerdaPeso
	}

	tx, err := db.Begin()
	if err != nil {
		log.Printf("❌ Erro abrindo transação: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao cadastrar usuário"})
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO usuarios (nome, email, senha_hash) VALUES (?, ?, ?)`,
		req.Nome, req.Email, string(hash))
	if err != nil {
		if isDuplicateEntry(err) {
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{Erro: "Email já cadastrado"})
		}
		log.Printf("❌ Erro inserindo usuário: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao cadastrar usuário"})
	}
	usuarioID, _ := res.LastInsertId()

	if _, err := tx.Exec(`
		INSERT INTO registros_saude (usuario_id, peso, altura, gordura_corporal, faz_exercicio, meta_perda_peso)
		VALUES (?, ?, ?, ?, ?, ?)
	`, usuarioID, *req.Peso, *req.Altura, gordura, fazExercicio, meta); err != nil {
		log.Printf("❌ Erro inserindo registro de saúde: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao cadastrar usuário"})
	}

	// Semear o histórico com o snapshot inicial das métricas informadas
	seed := []struct {
		tipo  string
		valor *float64
	}{
		{validation.TipoPeso, req.Peso},
		{validation.TipoAltura, req.Altura},
		{validation.TipoGordura, req.GorduraCorporal},
		{validation.TipoMetaPerdaPeso, req.MetaPerdaPeso},
	}
	for _, s := range seed {
		if s.valor == nil {
			continue
		}
		if _, err := tx.Exec(`
			INSERT INTO historico_metricas (usuario_id, tipo_metrica, valor) VALUES (?, ?, ?)
		`, usuarioID, s.tipo, *s.valor); err != nil {
			log.Printf("❌ Erro inserindo histórico inicial: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao cadastrar usuário"})
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ Erro confirmando transação: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao cadastrar usuário"})
	}

	token, expiresAt, err := issueToken(usuarioID, req.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao assinar token"})
	}

	log.Printf("✅ Usuário cadastrado: id=%d", usuarioID)

	c.Set("Cache-Control", "no-store")
	return c.Status(fiber.StatusCreated).JSON(models.RegisterResponse{
		Mensagem:  "Usuário cadastrado com sucesso!",
		UsuarioID: usuarioID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Login handles POST /api/users/login.
// Email desconhecido e senha errada retornam a mesma resposta 401 para não
// permitir enumeração de contas.
func Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "JSON inválido"})
	}
	req.Email = validation.NormalizeEmail(req.Email)

	if ferr := validation.Struct(req); ferr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "Email e senha são obrigatórios"})
	}

	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "servidor não está pronto"})
	}

	var (
		id              int64
		nome, senhaHash string
	)
	err := db.QueryRow(`SELECT id, nome, senha_hash FROM usuarios WHERE email = ?`, req.Email).Scan(&id, &nome, &senhaHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Erro: "Email ou senha inválidos"})
		}
		log.Printf("❌ Erro consultando usuário: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao fazer login"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(senhaHash), []byte(req.Senha)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Erro: "Email ou senha inválidos"})
	}

	token, expiresAt, err := issueToken(id, req.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao assinar token"})
	}

	c.Set("Cache-Control", "no-store")
	return c.Status(fiber.StatusOK).JSON(models.LoginResponse{
		ID:        id,
		Nome:      nome,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// DeleteUser handles DELETE /api/users/:id (autenticado).
// A checagem de dono vem antes da de existência: um token de outro usuário
// recebe 403 mesmo que o id alvo não exista.
func DeleteUser(c *fiber.Ctx) error {
	targetID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || targetID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "ID de usuário inválido"})
	}

	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Erro: "Acesso negado. Token não fornecido."})
	}
	if userID != targetID {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Erro: "Acesso negado."})
	}

	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "servidor não está pronto"})
	}

	// O ON DELETE CASCADE remove registro de saúde e histórico junto
	res, err := db.Exec(`DELETE FROM usuarios WHERE id = ?`, targetID)
	if err != nil {
		log.Printf("❌ Erro deletando usuário %d: %v", targetID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao deletar usuário"})
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Erro: "Usuário não encontrado"})
	}

	// O cascade apagou o histórico; as páginas cacheadas dele também saem
	if cache.HistoryCache != nil {
		cache.HistoryCache.DeletePrefix(fmt.Sprintf("historico:%d:", targetID))
	}

	log.Printf("✅ Usuário deletado: id=%d", targetID)
	return c.Status(fiber.StatusOK).JSON(models.MessageResponse{Mensagem: "Usuário deletado com sucesso!"})
}

// Resposta única do fluxo de recuperação: nunca revela se o email existe.
const forgotPasswordMessage = "Se o email estiver cadastrado, você receberá as instruções de recuperação."

// ForgotPassword handles POST /api/users/forgot-password.
func ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "JSON inválido"})
	}
	req.Email = validation.NormalizeEmail(req.Email)

	if ferr := validation.Struct(req); ferr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: ferr.Error()})
	}

	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "servidor não está pronto"})
	}

	// Um único token ativo por usuário: o UPDATE substitui o anterior
	token := uuid.NewString()
	res, err := db.Exec(`
		UPDATE usuarios
		SET reset_token = ?, reset_token_expira = DATE_ADD(NOW(), INTERVAL 1 HOUR)
		WHERE email = ?
	`, token, req.Email)
	if err != nil {
		log.Printf("❌ Erro registrando token de recuperação: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao processar solicitação"})
	}

	if affected, _ := res.RowsAffected(); affected > 0 {
		// Envio fora do caminho da resposta; falha de SMTP não muda a resposta
		go func(email, token string) {
			_ = mailer.SendPasswordReset(email, token)
		}(req.Email, token)
	}

	return c.Status(fiber.StatusOK).JSON(models.MessageResponse{Mensagem: forgotPasswordMessage})
}

// ResetPassword handles POST /api/users/reset-password.
func ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "JSON inválido"})
	}

	if ferr := validation.Struct(req); ferr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: ferr.Error()})
	}
	if ferr := validation.CheckPassword(req.NovaSenha); ferr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: ferr.Error()})
	}

	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "servidor não está pronto"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NovaSenha), bcryptCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao atualizar senha"})
	}

	// Consome o token na mesma instrução que troca a senha
	res, err := db.Exec(`
		UPDATE usuarios
		SET senha_hash = ?, reset_token = NULL, reset_token_expira = NULL
		WHERE reset_token = ? AND reset_token_expira IS NOT NULL AND reset_token_expira > NOW()
	`, string(hash), req.Token)
	if err != nil {
		log.Printf("❌ Erro atualizando senha: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao atualizar senha"})
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "Token inválido ou expirado."})
	}

	return c.Status(fiber.StatusOK).JSON(models.MessageResponse{Mensagem: "Senha atualizada com sucesso!"})
}
