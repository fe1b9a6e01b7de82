package mailer

import (
	"context"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun delivers through the Mailgun HTTP API. The caller bounds each
// send with ctx.
type Mailgun struct {
	client mg.Mailgun
	sender string
	tag    string
}

// NewMailgun builds a sender for domain. apiBase selects the region
// (e.g. mg.APIBaseEU) and defaults to the US endpoint when empty.
func NewMailgun(domain, apiKey, sender, apiBase string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{client: client, sender: sender, tag: "expense-management"}
}

func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	if err := msg.AddTag(m.tag); err != nil {
		return err
	}
	_, _, err := m.client.Send(ctx, msg)
	return err
}

var _ Sender = (*Mailgun)(nil)
