// Package email delivers password reset mail for the development backend.
package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

const (
	smtpTimeout = 30 * time.Second
)

// SMTPService delivers reset links through an SMTP relay. STARTTLS is used
// whenever the server offers it and is required before PLAIN auth.
type SMTPService struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *slog.Logger
}

func NewSMTPService(host string, port int, username, password, from string, logger *slog.Logger) *SMTPService {
	return &SMTPService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger.With("component", "email"),
	}
}

// SendPasswordReset mails link to the account address.
func (s *SMTPService) SendPasswordReset(ctx context.Context, to, link string) error {
	ctx, cancel := context.WithTimeout(ctx, smtpTimeout)
	defer cancel()

	client, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := s.deliver(client, to, buildMessage(s.from, to, resetSubject, resetBody(link))); err != nil {
		return fmt.Errorf("sending reset mail to %s: %w", to, err)
	}
	if err := client.Quit(); err != nil {
		s.logger.Warn("smtp quit failed", "error", err)
	}
	return nil
}

// dial connects, upgrades to TLS when offered and authenticates.
func (s *SMTPService) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	conn, err := (&net.Dialer{Timeout: smtpTimeout}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp handshake with %s: %w", addr, err)
	}

	tlsOffered, _ := client.Extension("STARTTLS")
	switch {
	case tlsOffered:
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			client.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	case s.username != "":
		client.Close()
		return nil, fmt.Errorf("%s does not offer STARTTLS, refusing to send credentials", addr)
	}

	if s.username != "" && s.password != "" {
		if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			client.Close()
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}
	return client, nil
}

func (s *SMTPService) deliver(client *smtp.Client, to, msg string) error {
	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := io.WriteString(wc, msg); err != nil {
		wc.Close()
		return fmt.Errorf("writing body: %w", err)
	}
	return wc.Close()
}

// LogSender writes reset links to the log instead of sending mail.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "email")}
}

func (l *LogSender) SendPasswordReset(ctx context.Context, to, link string) error {
	l.logger.InfoContext(ctx, "password reset requested", "to", to, "link", link)
	return nil
}

const resetSubject = "Reset your SkillSwap password"

func resetBody(link string) string {
	return fmt.Sprintf(`Hello!

Someone asked to reset the password for your SkillSwap account.
Open this link to choose a new one:

    %s

If you didn't request this email, you can safely ignore it.

- The SkillSwap Team`, link)
}

func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		from, to, subject, body)
}
