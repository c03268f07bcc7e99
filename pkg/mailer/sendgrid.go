// Package mailer sends transactional email through SendGrid.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/config"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
)

const acceptedSubject = "Your establishment has been approved"

var acceptedTemplate = template.Must(template.New("accepted").Parse(`<p>Hello {{.Name}},</p>
<p>your establishment <strong>{{.EstablishmentName}}</strong> has been approved and is now visible on NowAround.</p>
<p>Sign in with this email address and the temporary password below, then change it right away.</p>
<p><code>{{.TempPassword}}</code></p>
<p>The NowAround team</p>`))

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendgridMailer delivers account notifications.
type SendgridMailer struct {
	client sender
	from   *mail.Email
	logg   *logger.Logger
}

func NewSendgridMailer(cfg config.SendgridConfig, logg *logger.Logger) (*SendgridMailer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, errors.New("sendgrid sender address is required")
	}
	return &SendgridMailer{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.DefaultFrom),
		logg:   logg,
	}, nil
}

// SendAccountAcceptedEmail tells the owner their establishment was approved
// and hands over the temporary password.
func (m *SendgridMailer) SendAccountAcceptedEmail(ctx context.Context, name, establishmentName, email, tempPassword string) error {
	if strings.TrimSpace(email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient email is required")
	}

	var body bytes.Buffer
	if err := acceptedTemplate.Execute(&body, struct {
		Name              string
		EstablishmentName string
		TempPassword      string
	}{name, establishmentName, tempPassword}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render accepted email")
	}

	plain := fmt.Sprintf("Hello %s, your establishment %s has been approved. Temporary password: %s", name, establishmentName, tempPassword)
	msg := mail.NewSingleEmail(m.from, acceptedSubject, mail.NewEmail(name, email), plain, body.String())

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send accepted email")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("sendgrid returned status %d", resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	if m.logg != nil {
		m.logg.Info(m.logg.WithField(ctx, "template", "account_accepted"), "email sent")
	}
	return nil
}
