package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"gopkg.in/gomail.v2"
)

// SMTPConfig is the outgoing mail server.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
}

// Mailer sends the password reset email.
type Mailer interface {
	SendResetCodeEmail(email, code string) error
}

// SMTPMailer delivers mail through gomail.
type SMTPMailer struct {
	cfg     SMTPConfig
	baseURL string
	send    func(m ...*gomail.Message) error
}

// NewSMTPMailer builds a mailer. baseURL is the public address of the
// dashboard, used to build the reset link.
func NewSMTPMailer(cfg SMTPConfig, baseURL string) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	return &SMTPMailer{cfg: cfg, baseURL: baseURL, send: d.DialAndSend}
}

var resetEmailTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>Restablecer contraseña</title>
	<style>
		body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0; }
		.container { background-color: #ffffff; margin: 20px auto; padding: 20px; border-radius: 8px; max-width: 600px; }
		h1 { color: #333333; }
		p { color: #666666; }
		.code { font-weight: bold; color: #2563eb; }
	</style>
</head>
<body>
	<div class="container">
		<h1>Restablecer contraseña</h1>
		<p>Tu código para restablecer la contraseña es:</p>
		<p class="code">{{.Code}}</p>
		<p><a href="{{.Link}}">Restablecer contraseña</a></p>
		<p>Si no has solicitado este cambio, ignora este correo.</p>
	</div>
</body>
</html>
`))

// ResetLink is the page the email points at.
func ResetLink(baseURL, email string) string {
	return baseURL + "/reset-password?email=" + url.QueryEscape(email)
}

// BuildResetMessage renders the reset email.
func BuildResetMessage(from, to, code, link string) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := resetEmailTemplate.Execute(&body, struct{ Code, Link string }{code, link}); err != nil {
		return nil, fmt.Errorf("failed to render reset email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Código para restablecer tu contraseña")
	m.SetBody("text/plain", "Tu código para restablecer la contraseña es: "+code+"\n"+link)
	m.AddAlternative("text/html", body.String())
	return m, nil
}

func (s *SMTPMailer) SendResetCodeEmail(email, code string) error {
	m, err := BuildResetMessage(s.cfg.User, email, code, ResetLink(s.baseURL, email))
	if err != nil {
		return err
	}
	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}
