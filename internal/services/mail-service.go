package services

import (
	"bytes"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/SundayYogurt/scholarship_service/internal/dto"
)

//go:embed templates/submitted-email.html
var mailTemplates embed.FS

var submittedTemplate = template.Must(template.ParseFS(mailTemplates, "templates/submitted-email.html"))

type MailConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	From         string
	FromName     string
	Subject      string
	LinkURL      string
	DateLocation *time.Location
}

type MailService struct {
	cfg  MailConfig
	send func(to string, msg []byte) error
}

func NewMailService(cfg MailConfig) *MailService {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.Subject == "" {
		cfg.Subject = "Entrance Grant Application Received"
	}
	s := &MailService{cfg: cfg}
	s.send = s.sendSMTPWithTimeout
	return s
}

// SendSubmittedEmail confirms a submission to the applicant.
func (s *MailService) SendSubmittedEmail(event dto.EntranceSubmittedEvent) error {
	if strings.TrimSpace(event.Email) == "" {
		return errors.New("event has no email address")
	}

	msg, err := s.buildSubmittedMessage(event)
	if err != nil {
		return err
	}

	log.Printf("[MAIL] smtp sending to=%s via=%s:%s", event.Email, s.cfg.Host, s.cfg.Port)
	if err := s.send(event.Email, msg); err != nil {
		return err
	}
	log.Printf("[MAIL] sent to=%s", event.Email)
	return nil
}

func (s *MailService) buildSubmittedMessage(event dto.EntranceSubmittedEvent) ([]byte, error) {
	submittedAt := ""
	if t, err := time.Parse(time.RFC3339, event.SubmittedAt); err == nil {
		submittedAt = FormatAppliedAt(t, s.cfg.DateLocation)
	}

	var body bytes.Buffer
	err := submittedTemplate.Execute(&body, map[string]string{
		"FirstName":   event.FirstName,
		"SubmittedAt": submittedAt,
		"Link":        s.cfg.LinkURL,
	})
	if err != nil {
		return nil, err
	}

	from := s.cfg.From
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", event.Email),
		fmt.Sprintf("Subject: %s", s.cfg.Subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		body.String(),
	}, "\r\n")
	return []byte(msg), nil
}

func (s *MailService) sendSMTPWithTimeout(to string, msg []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)

	conn, err := net.DialTimeout("tcp", addr, 8*time.Second)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return err
		}
	}
	if s.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return err
		}
	}

	if err := c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
