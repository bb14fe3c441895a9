package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gopkg.in/gomail.v2"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// Envelope is one outgoing message.
type Envelope struct {
	From       From
	To         string
	Subject    string
	HTML       string
	UserID     string
	CampaignID string
	LeadID     string
}

// Mailer is the transactional email collaborator.
type Mailer interface {
	Send(ctx context.Context, env Envelope) (model.DeliveryReceipt, error)
}

// Dialer sends composed messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer delivers mail over SMTP with gomail.
type SMTPMailer struct {
	dialer Dialer
	domain string
	now    func() time.Time
}

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// Domain is the right-hand side of generated Message-IDs.
	Domain string `mapstructure:"domain"`
}

// NewSMTPMailer dials cfg for every message.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return NewSMTPMailerWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.Domain)
}

// NewSMTPMailerWithDialer uses d to send.
func NewSMTPMailerWithDialer(d Dialer, domain string) *SMTPMailer {
	if domain == "" {
		domain = "leadforge.local"
	}
	return &SMTPMailer{dialer: d, domain: domain, now: time.Now}
}

// Send composes and delivers env. The receipt's MessageID is the value the
// provider echoes back in delivery webhooks. gomail does not take a context,
// so ctx is only checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, env Envelope) (model.DeliveryReceipt, error) {
	if err := ctx.Err(); err != nil {
		return model.DeliveryReceipt{}, eris.Wrap(err, "smtp: send")
	}
	if env.To == "" {
		return model.DeliveryReceipt{}, eris.New("smtp: recipient is required")
	}

	id := uuid.NewString()
	msg := gomail.NewMessage()
	msg.SetHeader("From", env.From.Address())
	msg.SetHeader("To", env.To)
	msg.SetHeader("Subject", env.Subject)
	msg.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", id, m.domain))
	msg.SetHeader("X-User-ID", env.UserID)
	msg.SetHeader("X-Campaign-ID", env.CampaignID)
	msg.SetHeader("X-Lead-ID", env.LeadID)
	msg.SetBody("text/html", env.HTML)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return model.DeliveryReceipt{}, eris.Wrapf(err, "smtp: send to %s", env.To)
	}
	return model.DeliveryReceipt{
		MessageID:  id,
		CampaignID: env.CampaignID,
		LeadID:     env.LeadID,
		To:         env.To,
		SentAt:     m.now().UTC(),
	}, nil
}
