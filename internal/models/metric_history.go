package models

import "time"

// MetricHistoryEntry is one immutable row of the metric log. Rows are only
// ever inserted by successful health-record writes, never updated.
type MetricHistoryEntry struct {
	ID           int64     `json:"id"`
	UsuarioID    int64     `json:"usuario_id"`
	TipoMetrica  string    `json:"tipo_metrica"`
	Valor        float64   `json:"valor"`
	RegistradoEm time.Time `json:"registrado_em"`
}

// Pagination describes one page of a history listing.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// MetricHistoryResponse is the paginated history payload.
type MetricHistoryResponse struct {
	Data       []MetricHistoryEntry `json:"data"`
	Pagination Pagination           `json:"pagination"`
}
