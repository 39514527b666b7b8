// Package mailer рассылает письма через Resend. Тело письма рендерится из встроенных html шаблонов.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-grocer/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Template string

const (
	TemplateOrderConfirmation Template = "order_confirmation"
	TemplatePriceDrop         Template = "price_drop"
	TemplateCampaign          Template = "campaign"
)

// emailAPI часть API Resend, используемая мейлером.
type emailAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Mailer struct {
	api       emailAPI
	from      string
	baseURL   string
	templates *template.Template
	l         *logrus.Entry
}

// New создает мейлер. from - адрес отправителя, baseURL - адрес витрины для ссылок в письмах.
func New(apiKey, from, baseURL string, l *logrus.Logger) (*Mailer, error) {
	return newMailer(resend.NewClient(apiKey).Emails, from, baseURL, l)
}

func newMailer(api emailAPI, from, baseURL string, l *logrus.Logger) (*Mailer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse email templates")
	}
	return &Mailer{
		api:       api,
		from:      from,
		baseURL:   baseURL,
		templates: tmpl,
		l:         l.WithFields(logrus.Fields{"component": "mailer", "module": "resend"}),
	}, nil
}

func (m *Mailer) SendOrderConfirmation(ctx context.Context, p service.OrderConfirmationPayload) error {
	return m.send(ctx, p.Email, "Your order "+p.OrderNumber+" is confirmed", TemplateOrderConfirmation, map[string]any{
		"FullName":    p.FullName,
		"OrderNumber": p.OrderNumber,
		"Items":       p.Items,
		"Total":       p.Total.StringFixed(2),
		"OrderURL":    fmt.Sprintf("%s/orders/%d", m.baseURL, p.OrderID),
	})
}

func (m *Mailer) SendPriceDrop(ctx context.Context, p service.PriceDropPayload) error {
	return m.send(ctx, p.Email, p.ProductName+" is now cheaper", TemplatePriceDrop, map[string]any{
		"FullName":    p.FullName,
		"ProductName": p.ProductName,
		"OldPrice":    p.OldPrice.StringFixed(2),
		"NewPrice":    p.NewPrice.StringFixed(2),
		"ProductURL":  m.baseURL + "/products/" + p.ProductSlug,
	})
}

func (m *Mailer) SendCampaign(ctx context.Context, p service.CampaignEmailPayload) error {
	return m.send(ctx, p.Email, p.Title, TemplateCampaign, map[string]any{
		"FullName": p.FullName,
		"Title":    p.Title,
		"Body":     p.Body,
		"URL":      p.URL,
	})
}

func (m *Mailer) send(ctx context.Context, to, subject string, name Template, data map[string]any) error {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, string(name)+".html", data); err != nil {
		return errors.Wrapf(err, "failed to execute email template %s", name)
	}

	resp, err := m.api.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to send %s email", name)
	}
	m.l.WithFields(logrus.Fields{"template": name, "id": resp.Id}).Debug("email sent")
	return nil
}
