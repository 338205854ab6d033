package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/zyn/internal/cache"
	"github.com/yourorg/zyn/internal/models"
	"github.com/yourorg/zyn/internal/validation"
)

// HealthRecordHandler atende as rotas de registro de saúde. Toda mutação
// acontece dentro de uma transação quando também grava histórico, e invalida
// as páginas de histórico cacheadas do usuário.
type HealthRecordHandler struct {
	db    *sql.DB
	cache *cache.Cache
}

func NewHealthRecordHandler(db *sql.DB, c *cache.Cache) *HealthRecordHandler {
	return &HealthRecordHandler{db: db, cache: c}
}

func (h *HealthRecordHandler) invalidateHistory(usuarioID int64) {
	if h.cache != nil {
		h.cache.DeletePrefix(fmt.Sprintf("historico:%d:", usuarioID))
	}
}

// recordExists verifica a existência do registro antes do UPDATE, para que
// um resultado de zero linhas nunca seja ambíguo entre "usuário não existe"
// e "update sem efeito".
func (h *HealthRecordHandler) recordExists(usuarioID int64) (bool, error) {
	if h.db == nil {
		return false, errors.New("conexão com o banco de dados não disponível")
	}
	var id int64
	err := h.db.QueryRow(`SELECT id FROM registros_saude WHERE usuario_id = ?`, usuarioID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByUserID handles GET /api/registros-saude/:usuario_id.
// Os endpoints de atualização não devolvem o novo estado; o cliente busca
// aqui quando precisa dele.
func (h *HealthRecordHandler) GetByUserID(c *fiber.Ctx) error {
	targetID, err := strconv.ParseInt(c.Params("usuario_id"), 10, 64)
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

	if h.db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Conexão com o banco de dados não disponível"})
	}

	var rec models.HealthRecord
	err = h.db.QueryRow(`
		SELECT id, usuario_id, peso, altura, gordura_corporal, faz_exercicio, meta_perda_peso, atualizado_em
		FROM registros_saude
		WHERE usuario_id = ?
	`, targetID).Scan(
		&rec.ID,
		&rec.UsuarioID,
		&rec.Peso,
		&rec.Altura,
		&rec.GorduraCorporal,
		&rec.FazExercicio,
		&rec.MetaPerdaPeso,
		&rec.AtualizadoEm,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Erro: "Registro de saúde não encontrado."})
	}
	if err != nil {
		log.Printf("❌ Erro consultando registro de saúde: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao buscar registro de saúde"})
	}

	return c.JSON(rec)
}

// UpdateFull handles PUT /api/registros-saude/update-full.
// Substitui as cinco métricas e grava uma linha de histórico por métrica
// numérica, tudo na mesma transação.
func (h *HealthRecordHandler) UpdateFull(c *fiber.Ctx) error {
	var req models.UpdateFullRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "JSON inválido"})
	}
	if ferr := validation.Struct(req); ferr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: ferr.Error()})
	}

	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Erro: "Acesso negado. Token não fornecido."})
	}
	if userID != req.UsuarioID {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Erro: "Acesso negado."})
	}

	exists, err := h.recordExists(req.UsuarioID)
	if err != nil {
		log.Printf("❌ Erro verificando registro de saúde: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao atualizar registro de saúde"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Erro: "Registro de saúde não encontrado."})
	}

	tx, err := h.db.Begin()
	if err != nil {
		log.Printf("❌ Erro abrindo transação: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao atualizar registro de saúde"})
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE registros_saude
		SET peso = ?, altura = ?, gordura_corporal = ?, faz_exercicio = ?, meta_perda_peso = ?
		WHERE usuario_id = ?
	`, *req.Peso, *req.Altura, *req.GorduraCorporal, bool(*req.FazExercicio), *req.MetaPerdaPeso, req.UsuarioID); err != nil {
		log.Printf("❌ Erro atualizando registro de saúde: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao atualizar registro de saúde"})
	}

	history := []struct {
		tipo  string
		valor float64
	}{
		{validation.TipoPeso, *req.Peso},
		{validation.TipoAltura, *req.Altura},
		{validation.TipoGordura, *req.GorduraCorporal},
		{validation.TipoMetaPerdaPeso, *req.MetaPerdaPeso},
	}
	for _, entry := range history {
		if _, err := tx.Exec(`
			INSERT INTO historico_metricas (usuario_id, tipo_metrica, valor) VALUES (?, ?, ?)
		`, req.UsuarioID, entry.tipo, entry.valor); err != nil {
			log.Printf("❌ Erro gravando histórico: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao atualizar registro de saúde"})
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ Erro confirmando transação: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao atualizar registro de saúde"})
	}

	h.invalidateHistory(req.UsuarioID)

	return c.Status(fiber.StatusOK).JSON(models.MessageResponse{Mensagem: "Registro de saúde atualizado com sucesso!"})
}

// updateMetric aplica a atualização de uma métrica numérica e o append do
// histórico na mesma transação.
func (h *HealthRecordHandler) updateMetric(c *fiber.Ctx, usuarioID int64, column, tipo string, valor float64, successMsg, failMsg string) error {
	exists, err := h.recordExists(usuarioID)
	if err != nil {
		log.Printf("❌ Erro verificando registro de saúde: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: failMsg})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Erro: "Registro de saúde não encontrado."})
	}

	tx, err := h.db.Begin()
	if err != nil {
		log.Printf("❌ Erro abrindo transação: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: failMsg})
	}
	defer tx.Rollback()

	// column vem de um conjunto fixo de literais, nunca da requisição
	query := fmt.Sprintf(`UPDATE registros_saude SET %s = ? WHERE usuario_id = ?`, column)
	if _, err := tx.Exec(query, valor, usuarioID); err != nil {
		log.Printf("❌ Erro atualizando %s: %v", column, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: failMsg})
	}

	if _, err := tx.Exec(`
		INSERT INTO historico_metricas (usuario_id, tipo_metrica, valor) VALUES (?, ?, ?)
	`, usuarioID, tipo, valor); err != nil {
		log.Printf("❌ Erro gravando histórico: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: failMsg})
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ Erro confirmando transação: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: failMsg})
	}

	h.invalidateHistory(usuarioID)

	return c.Status(fiber.StatusOK).JSON(models.MessageResponse{Mensagem: successMsg})
}

// UpdateWeight handles PUT /api/registros-saude/weight.
func (h *HealthRecordHandler) UpdateWeight(c *fiber.Ctx) error {
	var req models.UpdateWeightRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "JSON inválido"})
	}
	if ferr := validation.Struct(req); ferr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: ferr.Error()})
	}

	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Erro: "Acesso negado. Token não fornecido."})
	}
	if userID != req.UsuarioID {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Erro: "Acesso negado."})
	}

	return h.updateMetric(c, req.UsuarioID, "peso", validation.TipoPeso, *req.Peso,
		"Peso atualizado com sucesso!", "Erro ao atualizar peso")
}

// UpdateHeight handles PUT /api/registros-saude/height.
func (h *HealthRecordHandler) UpdateHeight(c *fiber.Ctx) error {
	var req models.UpdateHeightRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "JSON inválido"})
	}
	if ferr := validation.Struct(req); ferr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: ferr.Error()})
	}

	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Erro: "Acesso negado. Token não fornecido."})
	}
	if userID != req.UsuarioID {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Erro: "Acesso negado."})
	}

	return h.updateMetric(c, req.UsuarioID, "altura", validation.TipoAltura, *req.Altura,
		"Altura atualizada com sucesso!", "Erro ao atualizar altura")
}

// UpdateBodyFat handles PUT /api/registros-saude/body-fat.
func (h *HealthRecordHandler) UpdateBodyFat(c *fiber.Ctx) error {
	var req models.UpdateBodyFatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "JSON inválido"})
	}
	if ferr := validation.Struct(req); ferr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: ferr.Error()})
	}

	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Erro: "Acesso negado. Token não fornecido."})
	}
	if userID != req.UsuarioID {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Erro: "Acesso negado."})
	}

	return h.updateMetric(c, req.UsuarioID, "gordura_corporal", validation.TipoGordura, *req.GorduraCorporal,
		"Gordura corporal atualizada com sucesso!", "Erro ao atualizar gordura corporal")
}

// UpdateExercise handles PUT /api/registros-saude/exercise.
// O flag de exercício não é uma métrica numérica: atualiza sem histórico.
func (h *HealthRecordHandler) UpdateExercise(c *fiber.Ctx) error {
	var req models.UpdateExerciseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "JSON inválido"})
	}
	if ferr := validation.Struct(req); ferr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: ferr.Error()})
	}

	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Erro: "Acesso negado. Token não fornecido."})
	}
	if userID != req.UsuarioID {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Erro: "Acesso negado."})
	}

	exists, err := h.recordExists(req.UsuarioID)
	if err != nil {
		log.Printf("❌ Erro verificando registro de saúde: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao atualizar status de exercício"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Erro: "Registro de saúde não encontrado."})
	}

	if _, err := h.db.Exec(`UPDATE registros_saude SET faz_exercicio = ? WHERE usuario_id = ?`,
		bool(*req.FazExercicio), req.UsuarioID); err != nil {
		log.Printf("❌ Erro atualizando status de exercício: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao atualizar status de exercício"})
	}

	h.invalidateHistory(req.UsuarioID)

	return c.Status(fiber.StatusOK).JSON(models.MessageResponse{Mensagem: "Registro de exercício atualizado com sucesso!"})
}

// UpdateWeightGoal handles PUT /api/registros-saude/weight-goal.
func (h *HealthRecordHandler) UpdateWeightGoal(c *fiber.Ctx) error {
	var req models.UpdateWeightGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "JSON inválido"})
	}
	if ferr := validation.Struct(req); ferr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: ferr.Error()})
	}

	userID, ok := c.Locals("userID").(int64)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Erro: "Acesso negado. Token não fornecido."})
	}
	if userID != req.UsuarioID {
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{Erro: "Acesso negado."})
	}

	return h.updateMetric(c, req.UsuarioID, "meta_perda_peso", validation.TipoMetaPerdaPeso, *req.MetaPerdaPeso,
		"Meta de perda de peso atualizada com sucesso!", "Erro ao atualizar meta de perda de peso")
}
