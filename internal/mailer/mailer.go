package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// SendPasswordReset envia o token de recuperação de senha por email.
// Sem configuração SMTP (ambiente de desenvolvimento), apenas registra o
// token no log e reporta sucesso, mantendo a resposta da API uniforme.
func SendPasswordReset(email, token string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	fromEmail := os.Getenv("FROM_EMAIL")

	if smtpHost == "" || smtpPort == "" || smtpUser == "" || smtpPass == "" {
		log.Printf("⚠️ SMTP não configurado. Token de recuperação para %s: %s", email, token)
		return nil
	}

	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)

	to := []string{email}
	subject := "Recuperação de senha - ZYN"
	body := fmt.Sprintf(`
	<html>
	<body>
		<h2>Recuperação de senha</h2>
		<p>Você solicitou a recuperação da sua senha. Use o token abaixo:</p>
		<p><strong>%s</strong></p>
		<p>O token expira em 1 hora. Se você não solicitou essa alteração, ignore este email.</p>
	</body>
	</html>
	`, token)

	message := fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", email, subject, body)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, fromEmail, to, []byte(message)); err != nil {
		log.Printf("❌ Erro enviando email de recuperação: %v", err)
		return err
	}

	return nil
}
