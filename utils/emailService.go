package utils

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"learnhub/config"
	"learnhub/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Recipient is who an email is addressed to
type Recipient struct {
	Name  string
	Email string
}

// Mailer delivers a rendered HTML email
type Mailer interface {
	Send(ctx context.Context, to Recipient, subject, htmlBody string) error
}

// NewMailer picks SendGrid when an API key is configured and falls back to SMTP
func NewMailer(cfg *config.Config, log *logger.Logger) Mailer {
	if cfg.SendGridAPIKey != "" {
		return &SendGridMailer{
			client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
			from:   mail.NewEmail(cfg.EmailSenderName, cfg.EmailSender),
			log:    log.With("mailer", "sendgrid"),
		}
	}
	return &SMTPMailer{
		Host:     "smtp.gmail.com",
		Port:     "587",
		From:     cfg.EmailSender,
		FromName: cfg.EmailSenderName,
		Password: cfg.Password,
		log:      log.With("mailer", "smtp"),
	}
}

type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
	log    *logger.Logger
}

func (m *SendGridMailer) Send(ctx context.Context, to Recipient, subject, htmlBody string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(to.Name, to.Email), "", htmlBody)
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	m.log.Debug("email sent", "to", to.Email, "subject", subject)
	return nil
}

type SMTPMailer struct {
	Host     string
	Port     string
	From     string
	FromName string
	Password string
	log      *logger.Logger
}

func (m *SMTPMailer) Send(_ context.Context, to Recipient, subject, htmlBody string) error {
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: %s <%s>\r\n", m.FromName, m.From)
	msg += fmt.Sprintf("To: %s\r\n", to.Email)
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	if err := smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{to.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	m.log.Debug("email sent", "to", to.Email, "subject", subject)
	return nil
}

// CodeMailer renders verification code emails on top of a Mailer
type CodeMailer struct {
	Mailer Mailer
}

func (m CodeMailer) SendVerificationCode(ctx context.Context, to Recipient, subject, code string, expiresAt time.Time) error {
	return m.Mailer.Send(ctx, to, subject, VerificationCodeEmail(to.Name, code, expiresAt))
}

// VerificationCodeEmail is the body of a verification code email
func VerificationCodeEmail(name, code string, expiresAt time.Time) string {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Use the code below to confirm your request:</p>
		<h1 style="text-align: center; color: #4CAF50; font-size: 40px; margin: 20px 0;">%s</h1>
		<div class="info-box">This code expires at <strong>%s</strong> and can be used once.</div>
		<p>If you did not request this, you can ignore this email.</p>
	`, name, code, expiresAt.UTC().Format("2006-01-02 15:04 MST"))
	return getEmailTemplate("Verification Code", body)
}

// EnrollmentEmail is sent when a learner enrolls in a course
func EnrollmentEmail(name, courseTitle string) (subject, html string) {
	subject = "Course Enrollment Confirmation"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations! You have successfully enrolled in:</p>
		<h3 style="text-align: center; color: #4CAF50; margin: 20px 0;">%s</h3>
		<p>You can now access all the course content and start learning.</p>
	`, name, courseTitle)
	return subject, getEmailTemplate("Enrollment Successful", body)
}

// getEmailTemplate wraps a body in the shared layout
func getEmailTemplate(title string, bodyContent string) string {
	return strings.TrimSpace(fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1B3A57; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B3A57; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #4CAF50; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>LEARNHUB</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; LearnHub. All rights reserved.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent))
}
