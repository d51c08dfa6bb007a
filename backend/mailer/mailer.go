// Package mailer sends transactional notification emails through Resend.
package mailer

import (
	"fmt"
	"strings"

	"courseportal/backend/config"

	"github.com/resend/resend-go/v2"
)

type Mailer interface {
	Send(to, subject, html string) error
}

// New returns the Resend-backed mailer, or a no-op mailer when no API key is
// configured. The no-op reports success so the notification flow never fails
// on a missing credential.
func New(cfg *config.Config) Mailer {
	if cfg.ResendAPIKey == "" {
		return NoopMailer{}
	}
	return &ResendMailer{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.EmailFrom,
	}
}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func (m *ResendMailer) Send(to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := m.client.Emails.Send(params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

type NoopMailer struct{}

func (NoopMailer) Send(to, subject, html string) error { return nil }

// NotificationHTML renders the fixed notification email template.
func NotificationHTML(courseCode, courseTitle, title, message string) string {
	body := strings.ReplaceAll(message, "\n", "<br>")
	return fmt.Sprintf(`
    <div style="font-family: system-ui, -apple-system, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
      <div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; border-radius: 12px 12px 0 0; text-align: center;">
        <h1 style="color: white; margin: 0; font-size: 24px;">Course Notification</h1>
      </div>
      <div style="background: #f8fafc; padding: 30px; border: 1px solid #e2e8f0; border-top: none; border-radius: 0 0 12px 12px;">
        <p style="color: #64748b; margin: 0 0 8px 0; font-size: 14px;">%s - %s</p>
        <h2 style="color: #1e293b; margin: 0 0 16px 0; font-size: 20px;">%s</h2>
        <div style="background: white; padding: 20px; border-radius: 8px; border: 1px solid #e2e8f0;">
          <p style="color: #475569; margin: 0; line-height: 1.6;">%s</p>
        </div>
        <p style="color: #94a3b8; font-size: 12px; margin: 20px 0 0 0; text-align: center;">
          This notification was sent from Course Portal
        </p>
      </div>
    </div>`, courseCode, courseTitle, title, body)
}
