package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/zyn/internal/cache"
	"github.com/yourorg/zyn/internal/models"
	"github.com/yourorg/zyn/internal/validation"
)

const (
	historyDefaultLimit = 10
	historyMaxLimit     = 100
)

// MetricHistoryHandler atende a consulta paginada do histórico de métricas.
// Páginas recentes são servidas do cache em memória; qualquer mutação no
// registro de saúde do usuário invalida o prefixo dele.
type MetricHistoryHandler struct {
	db    *sql.DB
	cache *cache.Cache
}

func NewMetricHistoryHandler(db *sql.DB, c *cache.Cache) *MetricHistoryHandler {
	return &MetricHistoryHandler{db: db, cache: c}
}

// pageCount calcula o total de páginas para um total de linhas e um limite.
func pageCount(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// GetHistory handles GET /api/registros-saude/historico/:usuario_id.
//
// Query params: tipo_metrica, data_inicio, data_fim (YYYY-MM-DD), page, limit.
func (h *MetricHistoryHandler) GetHistory(c *fiber.Ctx) error {
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

	tipo := c.Query("tipo_metrica")
	if tipo != "" && !validation.ValidTipoMetrica(tipo) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "Tipo de métrica inválido"})
	}

	dataInicio := c.Query("data_inicio")
	if dataInicio != "" {
		if _, err := time.Parse("2006-01-02", dataInicio); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "Data inicial inválida. Use o formato YYYY-MM-DD"})
		}
	}
	dataFim := c.Query("data_fim")
	if dataFim != "" {
		if _, err := time.Parse("2006-01-02", dataFim); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "Data final inválida. Use o formato YYYY-MM-DD"})
		}
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "Página inválida"})
		}
	}
	limit := historyDefaultLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Erro: "Limite inválido"})
		}
		if limit > historyMaxLimit {
			limit = historyMaxLimit
		}
	}

	cacheKey := fmt.Sprintf("historico:%d:%s:%s:%s:%d:%d", targetID, tipo, dataInicio, dataFim, page, limit)
	if h.cache != nil {
		if cached, found := h.cache.Get(cacheKey); found {
			if resp, ok := cached.(models.MetricHistoryResponse); ok {
				return c.JSON(resp)
			}
		}
	}

	if h.db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Conexão com o banco de dados não disponível"})
	}

	conds := []string{"usuario_id = ?"}
	args := []interface{}{targetID}
	if tipo != "" {
		conds = append(conds, "tipo_metrica = ?")
		args = append(args, tipo)
	}
	if dataInicio != "" {
		conds = append(conds, "registrado_em >= ?")
		args = append(args, dataInicio+" 00:00:00")
	}
	if dataFim != "" {
		conds = append(conds, "registrado_em <= ?")
		args = append(args, dataFim+" 23:59:59")
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM historico_metricas WHERE `+where, args...).Scan(&total); err != nil {
		log.Printf("❌ Erro contando histórico: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao buscar histórico de métricas"})
	}

	offset := (page - 1) * limit
	rows, err := h.db.Query(`
		SELECT id, usuario_id, tipo_metrica, valor, registrado_em
		FROM historico_metricas
		WHERE `+where+`
		ORDER BY registrado_em DESC, id DESC
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		log.Printf("❌ Erro consultando histórico: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao buscar histórico de métricas"})
	}
	defer rows.Close()

	entries := make([]models.MetricHistoryEntry, 0, limit)
	for rows.Next() {
		var entry models.MetricHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.UsuarioID, &entry.TipoMetrica, &entry.Valor, &entry.RegistradoEm); err != nil {
			log.Printf("❌ Erro lendo linha de histórico: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao buscar histórico de métricas"})
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		log.Printf("❌ Erro iterando histórico: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Erro: "Erro ao buscar histórico de métricas"})
	}

	resp := models.MetricHistoryResponse{
		Data: entries,
		Pagination: models.Pagination{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: pageCount(total, limit),
		},
	}

	if h.cache != nil {
		h.cache.Set(cacheKey, resp)
	}

	return c.JSON(resp)
}
