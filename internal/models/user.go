package models

import "time"

// User represents a user record in DB (internal use only).
type User struct {
	ID               int64      `json:"id"`
	Nome             string     `json:"nome"`
	Email            string     `json:"email"`
	SenhaHash        string     `json:"-"`
	ResetToken       string     `json:"-"`
	ResetTokenExpira *time.Time `json:"-"`
	CriadoEm         time.Time  `json:"criado_em"`
}

// RegisterFullRequest holds the data for creating a new user with the
// initial health snapshot. Field names follow the public API contract.
type RegisterFullRequest struct {
	Nome            string      `json:"nome" validate:"required"`
	Email           string      `json:"email" validate:"required,email"`
	Senha           string      `json:"senha" validate:"required,min=6"`
	Peso            *float64    `json:"peso" validate:"required,gt=0"`
	Altura          *float64    `json:"altura" validate:"required,gt=0"`
	GorduraCorporal *float64    `json:"gordura_corporal" validate:"omitempty,gte=0"`
	FazExercicio    *SimNaoBool `json:"faz_exercicio"`
	MetaPerdaPeso   *float64    `json:"meta_perda_peso" validate:"omitempty,gte=0"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Mensagem  string    `json:"mensagem"`
	UsuarioID int64     `json:"usuario_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
