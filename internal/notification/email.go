// Package notification delivers finished reports by email.
package notification

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"text/template"
)

// SMTPConfig holds mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// EmailNotifier sends report-ready emails with the artifact attached.
type EmailNotifier struct {
	config SMTPConfig
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg SMTPConfig) *EmailNotifier {
	return &EmailNotifier{config: cfg}
}

const bodyTemplate = `Your report is ready.

Report:  {{.ReportName}}
Window:  {{.Start}} to {{.End}}
Job ID:  {{.JobID}}

The report is attached to this email.

---
Fleet Report Service
`

// ReportMail is the data rendered into the notification body.
type ReportMail struct {
	ReportName string
	Start      string
	End        string
	JobID      string
}

// Send delivers the notification with the artifact attached. The
// returned error is recorded on the job; it never fails the job.
func (e *EmailNotifier) Send(recipient string, mail ReportMail, attachmentPath string) error {
	body, err := renderBody(mail)
	if err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	attachment, err := os.ReadFile(attachmentPath)
	if err != nil {
		return fmt.Errorf("failed to read attachment: %w", err)
	}

	subject := fmt.Sprintf("Report ready: %s", mail.ReportName)
	msg := buildMessage(e.config.From, recipient, subject, body,
		filepath.Base(attachmentPath), attachment)

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	var auth smtp.Auth
	if e.config.User != "" {
		auth = smtp.PlainAuth("", e.config.User, e.config.Password, e.config.Host)
	}

	if err := smtp.SendMail(addr, auth, e.config.From, []string{recipient}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func renderBody(mail ReportMail) (string, error) {
	t, err := template.New("report").Parse(bodyTemplate)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, mail); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// buildMessage assembles a multipart MIME message with one base64
// encoded attachment.
func buildMessage(from, to, subject, body, filename string, attachment []byte) []byte {
	const boundary = "report-artifact-boundary"

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/csv\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n\r\n", filename)
	buf.WriteString(base64.StdEncoding.EncodeToString(attachment))
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes()
}
