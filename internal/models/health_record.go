package models

import (
	"bytes"
	"fmt"
	"time"
)

// SimNaoBool is a boolean that also accepts the legacy "sim"/"nao" strings
// still sent by older frontend builds. It always serializes as a boolean.
type SimNaoBool bool

func (b *SimNaoBool) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("true")):
		*b = true
	case bytes.Equal(data, []byte("false")):
		*b = false
	case bytes.Equal(data, []byte(`"sim"`)):
		*b = true
	case bytes.Equal(data, []byte(`"nao"`)), bytes.Equal(data, []byte(`"não"`)):
		*b = false
	default:
		return fmt.Errorf("faz_exercicio: valor inválido %s", data)
	}
	return nil
}

// HealthRecord is the current snapshot of a user's tracked metrics.
type HealthRecord struct {
	ID              int64     `json:"id"`
	UsuarioID       int64     `json:"usuario_id"`
	Peso            float64   `json:"peso"`
	Altura          float64   `json:"altura"`
	GorduraCorporal float64   `json:"gordura_corporal"`
	FazExercicio    bool      `json:"faz_exercicio"`
	MetaPerdaPeso   float64   `json:"meta_perda_peso"`
	AtualizadoEm    time.Time `json:"atualizado_em"`
}

// UpdateFullRequest replaces every metric of a record at once.
type UpdateFullRequest struct {
	UsuarioID       int64       `json:"usuario_id" validate:"required,gt=0"`
	Peso            *float64    `json:"peso" validate:"required,gt=0"`
	Altura          *float64    `json:"altura" validate:"required,gt=0"`
	GorduraCorporal *float64    `json:"gordura_corporal" validate:"required,gte=0"`
	FazExercicio    *SimNaoBool `json:"faz_exercicio" validate:"required"`
	MetaPerdaPeso   *float64    `json:"meta_perda_peso" validate:"required,gte=0"`
}

// Single-field update payloads. Pointers distinguish "absent" from zero.

type UpdateWeightRequest struct {
	UsuarioID int64    `json:"usuario_id" validate:"required,gt=0"`
	Peso      *float64 `json:"peso" validate:"required,gt=0"`
}

type UpdateHeightRequest struct {
	UsuarioID int64    `json:"usuario_id" validate:"required,gt=0"`
	Altura    *float64 `json:"altura" validate:"required,gt=0"`
}

type UpdateBodyFatRequest struct {
	UsuarioID       int64    `json:"usuario_id" validate:"required,gt=0"`
	GorduraCorporal *float64 `json:"gordura_corporal" validate:"required,gte=0"`
}

type UpdateExerciseRequest struct {
	UsuarioID    int64       `json:"usuario_id" validate:"required,gt=0"`
	FazExercicio *SimNaoBool `json:"faz_exercicio" validate:"required"`
}

type UpdateWeightGoalRequest struct {
	UsuarioID     int64    `json:"usuario_id" validate:"required,gt=0"`
	MetaPerdaPeso *float64 `json:"meta_perda_peso" validate:"required,gte=0"`
}
