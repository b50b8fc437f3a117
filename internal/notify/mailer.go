// Package notify delivers operator notifications for invalid certificates.
// Exactly one message is sent per invalid outcome, synchronously from the
// orchestration loop.
package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"certtriage/internal/config"

	gomail "gopkg.in/gomail.v2"
)

// Notifier is the outbound channel for invalid-certificate alerts.
type Notifier interface {
	NotifyInvalid(pass, fileName string, reasons []string, runID string) error
}

const (
	subjectRegular = "Invalid certificate detected: %s"
	subjectInitial = "Invalid certificate rejected at intake: %s"
)

var bodyTmpl = template.Must(template.New("invalid").Parse(`<html>
<body>
<p>{{.Lead}}</p>
<p><b>File:</b> {{.File}}</p>
<p><b>Reasons:</b></p>
<ul>
{{- range .Reasons}}
<li>{{.}}</li>
{{- end}}
</ul>
<p style="color:#888;font-size:small">run {{.RunID}}</p>
</body>
</html>
`))

type bodyData struct {
	Lead    string
	File    string
	Reasons []string
	RunID   string
}

// Mailer sends notifications over authenticated SMTP.
type Mailer struct {
	cfg config.Mail
	// send is the delivery seam; it defaults to DialAndSend on a dialer
	// built from cfg.
	send func(m *gomail.Message) error
}

func NewMailer(cfg config.Mail) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.TLS
	return &Mailer{
		cfg:  cfg,
		send: func(m *gomail.Message) error { return d.DialAndSend(m) },
	}
}

func (m *Mailer) NotifyInvalid(pass, fileName string, reasons []string, runID string) error {
	subject, body, err := renderMessage(pass, fileName, reasons, runID)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.Recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.send(msg); err != nil {
		return fmt.Errorf("send notification for %s: %w", fileName, err)
	}
	return nil
}

func renderMessage(pass, fileName string, reasons []string, runID string) (subject, body string, err error) {
	lead := "A previously accepted certificate failed revalidation and was quarantined."
	subject = fmt.Sprintf(subjectRegular, fileName)
	if pass == "initial" {
		lead = "A newly received certificate failed validation and was not accepted."
		subject = fmt.Sprintf(subjectInitial, fileName)
	}

	var buf bytes.Buffer
	if err := bodyTmpl.Execute(&buf, bodyData{
		Lead:    lead,
		File:    fileName,
		Reasons: reasons,
		RunID:   runID,
	}); err != nil {
		return "", "", fmt.Errorf("render notification for %s: %w", fileName, err)
	}
	return subject, buf.String(), nil
}

// Nop is a Notifier that discards all notifications. It backs --no-mail.
type Nop struct{}

func (Nop) NotifyInvalid(pass, fileName string, reasons []string, runID string) error {
	return nil
}
