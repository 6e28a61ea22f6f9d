// Package mail sends transactional email over SMTP.
//
//	err := mail.To(user.Email).
//	    Subject("Activate your account").
//	    Template("activation.html", map[string]any{"Code": code}).
//	    Send()
//
// Templates are embedded from pkg/mail/templates. Messages are normally
// sent from a queue job so the request path never waits on SMTP.
package mail

import (
	"bytes"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"sync"

	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var ErrNotConfigured = errors.New("mail: MAIL_USERNAME not configured")

// SMTP holds connection credentials.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func defaultSMTP() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", "smtp.mailtrap.io"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "no-reply@tiffin.app"),
		FromName: config.Get("MAIL_FROM_NAME", "Tiffin"),
	}
}

// Transport delivers a fully built RFC 5322 message.
type Transport interface {
	Deliver(cfg SMTP, to []string, raw []byte) error
}

var (
	transportMu sync.RWMutex
	transport   Transport = smtpTransport{}
)

// UseTransport replaces the process-wide transport and returns the previous
// one.
func UseTransport(t Transport) Transport {
	transportMu.Lock()
	defer transportMu.Unlock()
	prev := transport
	transport = t
	return prev
}

func currentTransport() Transport {
	transportMu.RLock()
	defer transportMu.RUnlock()
	return transport
}

// Message is a fluent builder for an email.
type Message struct {
	to      []string
	cc      []string
	subject string
	body    string
	isHTML  bool
	err     error
	smtpCfg SMTP
}

// To starts a message for the given recipients.
func To(addresses ...string) *Message {
	return &Message{
		to:      addresses,
		isHTML:  true,
		smtpCfg: defaultSMTP(),
	}
}

func (m *Message) CC(addresses ...string) *Message {
	m.cc = append(m.cc, addresses...)
	return m
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets an HTML body.
func (m *Message) Body(html string) *Message {
	m.body = html
	m.isHTML = true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body = text
	m.isHTML = false
	return m
}

// Template renders one of the embedded templates as the body. A render
// failure is reported by Send.
func (m *Message) Template(name string, data any) *Message {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		m.err = fmt.Errorf("mail: render %s: %w", name, err)
		return m
	}
	m.body = buf.String()
	m.isHTML = true
	return m
}

// UseConfig overrides the SMTP settings for this message.
func (m *Message) UseConfig(cfg SMTP) *Message {
	m.smtpCfg = cfg
	return m
}

// Send delivers the message through the current transport.
func (m *Message) Send() error {
	if m.err != nil {
		return m.err
	}
	if len(m.to) == 0 {
		return errors.New("mail: no recipients")
	}
	raw := m.Raw()
	all := append(append([]string(nil), m.to...), m.cc...)
	if err := currentTransport().Deliver(m.smtpCfg, all, raw); err != nil {
		return err
	}
	logger.Debug("mail: sent", "to", strings.Join(m.to, ","), "subject", m.subject)
	return nil
}

// Raw renders the message headers and body.
func (m *Message) Raw() []byte {
	contentType := "text/plain"
	if m.isHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.smtpCfg.FromName, m.smtpCfg.From)
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	if len(m.cc) > 0 {
		b.WriteString("Cc: " + strings.Join(m.cc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + m.subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"UTF-8\"\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(m.body)
	return []byte(b.String())
}

type smtpTransport struct{}

// Deliver uses implicit TLS on port 465 and STARTTLS otherwise.
func (smtpTransport) Deliver(cfg SMTP, to []string, raw []byte) error {
	if cfg.Username == "" {
		return ErrNotConfigured
	}
	addr := cfg.Host + ":" + cfg.Port
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	if cfg.Port != "465" {
		return smtp.SendMail(addr, auth, cfg.From, to, raw)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return fmt.Errorf("mail: tls dial: %w", err)
	}
	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return err
	}
	defer client.Quit() //nolint:errcheck

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(cfg.From); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	return w.Close()
}

// LogTransport writes messages to the logger instead of sending them. It is
// used in local development when no SMTP account is configured.
type LogTransport struct{}

func (LogTransport) Deliver(_ SMTP, to []string, raw []byte) error {
	logger.Info("mail: not sent (log transport)", "to", strings.Join(to, ","), "bytes", len(raw))
	return nil
}
