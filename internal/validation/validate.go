package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError representa um erro de validação de um campo da requisição
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Reportar erros com o nome do campo JSON, não o nome do struct
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct valida um payload de requisição e retorna o primeiro erro
// encontrado, com mensagem legível em português.
func Struct(s interface{}) *FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return &FieldError{Field: "payload", Message: "payload inválido"}
	}
	fe := errs[0]
	return &FieldError{Field: fe.Field(), Message: messageFor(fe)}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "é obrigatório"
	case "email":
		return "email inválido"
	case "min":
		return fmt.Sprintf("deve ter no mínimo %s caracteres", fe.Param())
	case "gt":
		return "deve ser um número positivo"
	case "gte":
		return "não pode ser negativo"
	default:
		return "valor inválido"
	}
}

// NormalizeEmail aplica a normalização usada como chave de login.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Senhas fracas demais para aceitar mesmo passando no tamanho mínimo.
var weakPasswords = map[string]struct{}{
	"123456":   {},
	"1234567":  {},
	"12345678": {},
	"123123":   {},
	"111111":   {},
	"000000":   {},
	"password": {},
	"senha123": {},
	"qwerty":   {},
	"abc123":   {},
}

// CheckPassword valida o tamanho mínimo e a lista de senhas proibidas.
// Usada no cadastro e no reset de senha.
func CheckPassword(senha string) *FieldError {
	if len(senha) < 6 {
		return &FieldError{Field: "senha", Message: "deve ter no mínimo 6 caracteres"}
	}
	if _, weak := weakPasswords[strings.ToLower(senha)]; weak {
		return &FieldError{Field: "senha", Message: "senha muito comum, escolha outra"}
	}
	return nil
}

// Tipos de métrica registrados no histórico. O flag de exercício não entra:
// o histórico guarda apenas métricas numéricas.
const (
	TipoPeso          = "peso"
	TipoAltura        = "altura"
	TipoGordura       = "gordura_corporal"
	TipoMetaPerdaPeso = "meta_perda_peso"
)

// ValidTipoMetrica informa se o valor é um tipo de métrica conhecido.
func ValidTipoMetrica(tipo string) bool {
	switch tipo {
	case TipoPeso, TipoAltura, TipoGordura, TipoMetaPerdaPeso:
		return true
	}
	return false
}
