package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/gatewarden/gatewarden/internal/core/domain/access"
	"github.com/gatewarden/gatewarden/internal/core/ports"
)

// AlertConfig holds alert delivery configuration. An empty AlertEmail
// or API key disables delivery without disabling the caller.
type AlertConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	AlertEmail     string
}

// AlertService notifies operators about automatic blacklist
// escalations over SendGrid.
type AlertService struct {
	config *AlertConfig
	logger *logrus.Logger
	client *sendgrid.Client
	tmpl   *template.Template
}

const escalationTemplate = `
<html>
<body>
	<h2>Automatic blacklist escalation</h2>
	<p>An identity was blacklisted for repeated rate limit violations.</p>
	<table>
		<tr><td>IP address</td><td>{{.IPAddress}}</td></tr>
		<tr><td>Principal</td><td>{{.Principal}}</td></tr>
		<tr><td>Target type</td><td>{{.TargetType}}</td></tr>
		<tr><td>Violations</td><td>{{.ViolationCount}}</td></tr>
		<tr><td>Expires</td><td>{{.Expires}}</td></tr>
	</table>
	<p>{{.Description}}</p>
</body>
</html>`

// NewAlertService creates a new alert service instance
func NewAlertService(config *AlertConfig, logger *logrus.Logger) (ports.AlertService, error) {
	tmpl, err := template.New("escalation").Parse(escalationTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse escalation template: %w", err)
	}

	var client *sendgrid.Client
	if config.SendGridAPIKey != "" {
		client = sendgrid.NewSendClient(config.SendGridAPIKey)
	}

	return &AlertService{
		config: config,
		logger: logger,
		client: client,
		tmpl:   tmpl,
	}, nil
}

type escalationData struct {
	IPAddress      string
	Principal      string
	TargetType     string
	ViolationCount int
	Expires        string
	Description    string
}

// SendEscalationAlert emails the configured operator address about an
// automatic blacklist entry.
func (e *AlertService) SendEscalationAlert(ctx context.Context, entry *access.BlacklistEntry) error {
	if e.client == nil || e.config.AlertEmail == "" {
		if e.logger != nil {
			e.logger.Debug("alert delivery not configured; skipping escalation alert")
		}
		return nil
	}

	data := escalationData{
		IPAddress:      "-",
		Principal:      "-",
		TargetType:     string(entry.TargetType),
		ViolationCount: entry.ViolationCount,
		Expires:        "never",
	}
	if entry.IPAddress != nil {
		data.IPAddress = *entry.IPAddress
	}
	if entry.PrincipalID != nil {
		data.Principal = entry.PrincipalID.String()
	}
	if entry.ExpiresAt != nil {
		data.Expires = entry.ExpiresAt.Format("2006-01-02 15:04:05 MST")
	}
	if entry.Description != nil {
		data.Description = *entry.Description
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render escalation alert: %w", err)
	}

	subject := fmt.Sprintf("Blacklist escalation: %s", data.IPAddress)
	return e.sendEmail(e.config.AlertEmail, subject, buf.String())
}

// sendEmail sends an email using SendGrid
func (e *AlertService) sendEmail(to, subject, htmlContent string) error {
	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	recipient := mail.NewEmail("", to)

	message := mail.NewSingleEmail(from, subject, recipient, "", htmlContent)

	response, err := e.client.Send(message)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
			"error":   err,
		}).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"to":          to,
		"subject":     subject,
		"status_code": response.StatusCode,
	}).Info("Email sent successfully")

	return nil
}
