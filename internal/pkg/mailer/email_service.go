package mailer

import (
	"fmt"
	"html"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

type CrisisAlert struct {
	Username       string
	SessionId      string
	MatchedPhrases []string
	Message        string
	OccurredAt     time.Time
	// CrisisTurns counts the user's stored conversations flagged as crisis.
	CrisisTurns int64
}

type IEmailService interface {
	SendCrisisAlert(toEmail string, alert CrisisAlert) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
	}
}

func (s *emailService) SendCrisisAlert(toEmail string, alert CrisisAlert) error {
	if s.dialer.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("[Crisis alert] %s needs attention", alert.Username))
	m.SetBody("text/html", crisisAlertBody(alert))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send crisis alert to %s: %w", toEmail, err)
	}
	return nil
}

func crisisAlertBody(alert CrisisAlert) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2 style="color: #c0392b;">Crisis language detected</h2>
			<p><strong>User:</strong> %s</p>
			<p><strong>Chat session:</strong> %s</p>
			<p><strong>Matched phrases:</strong> %s</p>
			<p><strong>Time:</strong> %s</p>
			<p><strong>Crisis messages on record:</strong> %d</p>
			<blockquote style="border-left: 4px solid #c0392b; padding-left: 10px;">%s</blockquote>
			<p>The user was shown emergency resources (911, 988, text HOME to 741741).</p>
		</div>
	`,
		html.EscapeString(alert.Username),
		html.EscapeString(alert.SessionId),
		html.EscapeString(strings.Join(alert.MatchedPhrases, ", ")),
		alert.OccurredAt.Format(time.RFC1123),
		alert.CrisisTurns,
		html.EscapeString(alert.Message),
	)
}
