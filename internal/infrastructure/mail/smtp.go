package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"mime"
	"strings"
	"text/template"
	"time"

	"device-approval-backend/internal/domain/notification"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.txt
var templateFS embed.FS

const fallbackTemplate = "generic"

type Config struct {
	Host       string
	Port       string
	User       string
	Password   string
	From       string
	TLSEnabled bool
}

func (c Config) configured() bool {
	return c.Host != "" && c.Port != "" && c.User != ""
}

type sendFunc func(addr string, a sasl.Client, from string, to []string, r io.Reader) error

// SMTPMailer renders a named template and sends it as a plain text mail.
type SMTPMailer struct {
	cfg  Config
	log  *logrus.Entry
	tpl  *template.Template
	send sendFunc
	now  func() time.Time
}

func NewSMTPMailer(cfg Config, log *logrus.Entry) (*SMTPMailer, error) {
	tpl, err := template.New("mail").Option("missingkey=zero").ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, errors.Wrap(err, "parse mail templates")
	}
	send := smtp.SendMail
	if cfg.TLSEnabled {
		send = smtp.SendMailTLS
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return &SMTPMailer{cfg: cfg, log: log, tpl: tpl, send: send, now: time.Now}, nil
}

// Send skips silently when the recipient has no address and logs a warning
// when SMTP is not configured.
func (m *SMTPMailer) Send(ctx context.Context, msg notification.Mail) error {
	if strings.TrimSpace(msg.To) == "" {
		return nil
	}
	log := m.log.WithField("to", msg.To).WithField("template", msg.Template)
	if !m.cfg.configured() {
		log.Warn("mail not sent, smtp client is not configured")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := m.render(msg)
	if err != nil {
		return err
	}
	auth := sasl.NewPlainClient("", m.cfg.User, m.cfg.Password)
	if err := m.send(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.User, []string{msg.To}, bytes.NewReader(body)); err != nil {
		return errors.Wrap(err, "smtp send")
	}
	log.Info("mail sent")
	return nil
}

func (m *SMTPMailer) render(msg notification.Mail) ([]byte, error) {
	name := msg.Template + ".txt"
	if m.tpl.Lookup(name) == nil {
		name = fallbackTemplate + ".txt"
	}
	data := map[string]string{"Subject": msg.Subject, "Name": msg.ToName}
	for k, v := range msg.Vars {
		data[k] = v
	}

	var text bytes.Buffer
	if err := m.tpl.ExecuteTemplate(&text, name, data); err != nil {
		return nil, errors.Wrapf(err, "render mail template %s", name)
	}

	to := msg.To
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", msg.ToName), msg.To)
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(text.String(), "\n", "\r\n"))
	return b.Bytes(), nil
}

var _ notification.Mailer = (*SMTPMailer)(nil)
