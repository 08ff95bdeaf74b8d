package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"

	"pingly-server/internal/config"
)

const otpTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Your Pingly verification code</h2>
        <p>Hi {{.Name}},</p>
        <p>Use this code to continue. It expires in 10 minutes.</p>
        <p style="font-size: 32px; letter-spacing: 8px; font-weight: bold;">{{.Code}}</p>
        <p>If you didn't request this, you can safely ignore this email.</p>
    </div>
</body>
</html>
`

// EmailService sends OTP codes over SMTP. Without a configured host it logs
// the code instead, which is what local development runs on.
type EmailService struct {
	cfg  config.SMTPConfig
	tmpl *template.Template
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{
		cfg:  cfg,
		tmpl: template.Must(template.New("otp").Parse(otpTemplate)),
	}
}

func (s *EmailService) SendOTP(to, name, code string) error {
	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, map[string]string{"Name": name, "Code": code}); err != nil {
		return fmt.Errorf("failed to render otp email: %w", err)
	}

	if s.cfg.Host == "" {
		log.Printf("SMTP not configured, otp for %s: %s", to, code)
		return nil
	}

	headers := map[string]string{
		"From":         s.cfg.From,
		"To":           to,
		"Subject":      "Your Pingly verification code",
		"MIME-Version": "1.0",
		"Content-Type": `text/html; charset="UTF-8"`,
	}

	message := ""
	for k, v := range headers {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + body.String()

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(message))
}
