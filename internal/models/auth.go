package models

import "time"

// LoginRequest represents credentials provided by the client.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

// LoginResponse is returned upon successful authentication.
type LoginResponse struct {
	ID        int64     `json:"id"`
	Nome      string    `json:"nome"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ForgotPasswordRequest starts the password recovery flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest consumes a recovery token.
type ResetPasswordRequest struct {
	Token     string `json:"token" validate:"required"`
	NovaSenha string `json:"nova_senha" validate:"required,min=6"`
}

// MessageResponse is a simple success shape for API responses.
type MessageResponse struct {
	Mensagem string `json:"mensagem"`
}

// ErrorResponse is a simple error shape for API errors.
type ErrorResponse struct {
	Erro string `json:"erro"`
}
