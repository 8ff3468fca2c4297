// Package services – EmailWorker
//
// Order confirmation e-mail, driven off the event bus. The worker subscribes
// to ORDER_CREATED entries and hands each one to an EmailSender. Delivery is
// best-effort: a send failure is logged and the entry is not replayed.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-ecommerce-backend/internal/events"
)

// EmailSender delivers one e-mail. The default implementation only logs;
// production deployments plug in a real provider.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogEmailSender writes the e-mail to the structured log instead of sending
// it. Used when no e-mail provider is configured.
type LogEmailSender struct{}

// Send implements EmailSender.
func (LogEmailSender) Send(_ context.Context, to, subject, body string) error {
	log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("e-mail delivery (log sender)")
	return nil
}

// EmailWorker consumes order events and sends confirmation e-mails.
type EmailWorker struct {
	Sender EmailSender
}

// NewEmailWorker returns a worker using the given sender, defaulting to the
// log-backed one when nil.
func NewEmailWorker(sender EmailSender) *EmailWorker {
	if sender == nil {
		sender = LogEmailSender{}
	}
	return &EmailWorker{Sender: sender}
}

// Run consumes entries until ctx is canceled or the channel is closed.
func (w *EmailWorker) Run(ctx context.Context, entries <-chan events.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-entries:
			if !ok {
				return
			}
			w.handle(ctx, e)
		}
	}
}

func (w *EmailWorker) handle(ctx context.Context, e events.Entry) {
	if e.Source != events.SourceOrder || e.DetailType != "ORDER_CREATED" {
		return
	}

	var detail OrderEventDetail
	if err := json.Unmarshal([]byte(e.DetailJSON()), &detail); err != nil || detail.Email == "" {
		log.Warn().Str("detail_type", e.DetailType).Msg("order event without usable detail; no e-mail sent")
		return
	}

	subject := "Your order has been placed"
	body := fmt.Sprintf("Order %s confirmed. Total: %.2f (%d items).",
		detail.OrderID, detail.TotalPrice, detail.Items)
	if err := w.Sender.Send(ctx, detail.Email, subject, body); err != nil {
		log.Error().Err(err).
			Str("order_id", detail.OrderID).
			Msg("order confirmation e-mail failed")
	}
}
