// Package services – bus log subscribers
//
// Two small subscribers that turn bus traffic into structured log streams:
// AuditLogger surfaces invoice rejection signals, BillingLogger surfaces the
// order events a billing system would consume. Both are read-only taps; the
// durable record is written by the EventRecorder.
package services

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-ecommerce-backend/internal/events"
)

// AuditLogger logs invoice audit signals (rejected documents).
type AuditLogger struct{}

// Run consumes entries until ctx is canceled or the channel is closed.
func (AuditLogger) Run(ctx context.Context, entries <-chan events.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-entries:
			if !ok {
				return
			}
			if e.Source != events.SourceInvoice {
				continue
			}
			var detail InvoiceAuditDetail
			if err := json.Unmarshal([]byte(e.DetailJSON()), &detail); err != nil || detail.ErrorDetail == "" {
				continue
			}
			log.Warn().
				Str("error_detail", detail.ErrorDetail).
				Str("invoice_key", detail.Info.InvoiceKey).
				Str("customer_name", detail.Info.CustomerName).
				Msg("invoice audit signal")
		}
	}
}

// BillingLogger logs billing-relevant order events.
type BillingLogger struct{}

// Run consumes entries until ctx is canceled or the channel is closed.
func (BillingLogger) Run(ctx context.Context, entries <-chan events.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-entries:
			if !ok {
				return
			}
			if e.Source != events.SourceOrder {
				continue
			}
			var detail OrderEventDetail
			if err := json.Unmarshal([]byte(e.DetailJSON()), &detail); err != nil || detail.OrderID == "" {
				continue
			}
			log.Info().
				Str("event_type", e.DetailType).
				Str("order_id", detail.OrderID).
				Str("email", detail.Email).
				Float64("total_price", detail.TotalPrice).
				Msg("billing event")
		}
	}
}
