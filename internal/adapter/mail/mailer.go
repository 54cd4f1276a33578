package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"payment-event-pipeline/config"
	"payment-event-pipeline/internal/core/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// ErrNoRecipient means the payer left no e-mail address with the provider.
var ErrNoRecipient = errors.New("confirmation has no recipient")

// Dialer is the part of *gomail.Dialer the mailer needs.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer implements ports.ConfirmationMailer over SMTP.
type Mailer struct {
	dialer  Dialer
	from    string
	subject string
}

// NewMailer creates a Mailer with a gomail SMTP dialer.
func NewMailer(cfg config.MailConfig) *Mailer {
	return NewMailerWithDialer(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password))
}

// NewMailerWithDialer creates a Mailer with a custom dialer (useful for testing).
func NewMailerWithDialer(cfg config.MailConfig, d Dialer) *Mailer {
	return &Mailer{dialer: d, from: cfg.From, subject: cfg.Subject}
}

// SendConfirmation renders and sends the order confirmation.
// gomail has no context support, so ctx only bounds how long we wait.
func (m *Mailer) SendConfirmation(ctx context.Context, req domain.ConfirmationRequest) error {
	if strings.TrimSpace(req.Payer.Email) == "" {
		return ErrNoRecipient
	}

	body, err := RenderConfirmation(req)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	if req.Payer.Name != "" {
		msg.SetHeader("To", msg.FormatAddress(req.Payer.Email, req.Payer.Name))
	} else {
		msg.SetHeader("To", req.Payer.Email)
	}
	msg.SetHeader("Subject", m.subject)
	msg.SetBody("text/html", body)

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send confirmation: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send confirmation: %w", ctx.Err())
	}
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333333;">
	<p>Hi{{if .Name}} {{.Name}}{{end}},</p>
	<p>Thanks for your purchase. Your order <strong>{{.OrderID}}</strong> is confirmed.</p>
	<table cellpadding="6" style="border-collapse: collapse;">
		{{range .Items}}<tr><td>{{.Label}}</td><td>x{{.Quantity}}</td><td align="right">{{.Amount}}</td></tr>
		{{end}}<tr><td colspan="2"><strong>Total</strong></td><td align="right"><strong>{{.Total}}</strong></td></tr>
	</table>
</body>
</html>`))

type confirmationItem struct {
	Label    string
	Quantity int64
	Amount   string
}

type confirmationView struct {
	Name    string
	OrderID string
	Items   []confirmationItem
	Total   string
}

// RenderConfirmation renders the HTML body. Payer-supplied text is escaped.
func RenderConfirmation(req domain.ConfirmationRequest) (string, error) {
	view := confirmationView{
		Name:    req.Payer.Name,
		OrderID: req.OrderID,
		Total:   FormatAmount(req.AmountTotal, req.Currency),
	}
	for _, it := range req.Items {
		label := it.Description
		if label == "" {
			label = it.PriceID
		}
		view.Items = append(view.Items, confirmationItem{
			Label:    label,
			Quantity: it.Quantity,
			Amount:   FormatAmount(it.AmountTotal, req.Currency),
		})
	}

	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return buf.String(), nil
}

// zeroDecimal lists currencies whose minor unit is the major unit.
var zeroDecimal = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// FormatAmount turns a provider minor-unit amount into "12.34 USD".
func FormatAmount(minor int64, currency string) string {
	cur := strings.ToLower(currency)
	places := int32(2)
	if zeroDecimal[cur] {
		places = 0
	}
	amount := decimal.NewFromInt(minor).Shift(-places)
	return amount.StringFixed(places) + " " + strings.ToUpper(cur)
}
