// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/readify-backend/internal/config"
	"github.com/javajoker/readify-backend/internal/models"
)

// NotificationService emails the account owner about account and invoice
// events. Delivery failures are logged and never fail the calling workflow.
type NotificationService struct {
	config *config.Config
	send   func(to, subject, body string) error
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config) *NotificationService {
	s := &NotificationService{config: config}
	s.send = s.sendSMTP
	return s
}

func (s *NotificationService) SendWelcomeEmail(account *models.Account) error {
	data := map[string]interface{}{
		"Email":        account.Email,
		"PlatformName": s.config.Email.FromName,
	}
	return s.notify(account.Email, "welcome", data)
}

func (s *NotificationService) SendInvoiceIssuedEmail(account *models.Account, invoice *models.Invoice) error {
	data := map[string]interface{}{
		"InvoiceNum":    invoice.InvoiceNum,
		"ClientName":    invoice.ClientName,
		"TotalAmount":   fmt.Sprintf("%s %.2f", s.config.Invoice.CurrencySymbol, invoice.TotalAmount),
		"PaymentMethod": string(invoice.PaymentMethod),
		"PlatformName":  s.config.Email.FromName,
	}
	return s.notify(account.Email, "invoice_issued", data)
}

// NotifyAsync runs fn in the background and logs its error.
func (s *NotificationService) NotifyAsync(kind string, fn func() error) {
	go func() {
		if err := fn(); err != nil {
			logrus.WithError(err).WithField("notification", kind).Warn("Failed to send notification")
		}
	}()
}

func (s *NotificationService) notify(to, templateType string, data interface{}) error {
	tmpl := s.getEmailTemplate(templateType)

	subject, err := s.renderTemplate(tmpl.Subject, data)
	if err != nil {
		return fmt.Errorf("failed to render email subject: %w", err)
	}
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.send(to, subject, body)
}

// Helper methods
func (s *NotificationService) sendSMTP(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email delivery disabled, skipping")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	from := fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"welcome": {
			Subject: "Welcome to {{.PlatformName}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome!</h2>
	<p>Your {{.PlatformName}} account for {{.Email}} is ready.</p>
	<p>Add your products and clients to start taking orders.</p>
	<p>Best regards,<br>{{.PlatformName}} Team</p>
</body>
</html>`,
		},
		"invoice_issued": {
			Subject: "Invoice {{.InvoiceNum}} issued",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Invoice {{.InvoiceNum}}</h2>
	<p>An invoice for {{if .ClientName}}{{.ClientName}}{{else}}a former client{{end}} was issued.</p>
	<p>Total: {{.TotalAmount}} ({{.PaymentMethod}})</p>
	<p>Best regards,<br>{{.PlatformName}} Team</p>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.}}</p>",
	}
}
