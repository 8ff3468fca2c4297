// Package services – EventRecorder
//
// Persists bus entries as audit event rows so they can be queried after the
// fact. Rows carry a short TTL and are garbage-collected by the reaper's
// sweep; the table is a recent-history window, not an event store.
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/events"
	"github.com/tbourn/go-ecommerce-backend/internal/repo"
)

// EventWriter appends one audit event row.
type EventWriter func(ctx context.Context, db *gorm.DB, ev *domain.Event) error

// EventRecorder consumes bus entries and writes them to the events table.
type EventRecorder struct {
	DB    *gorm.DB
	Write EventWriter
	// TTL is the retention window per row. NewEventRecorder defaults it to
	// one hour.
	TTL time.Duration
}

// NewEventRecorder returns a recorder writing through repo.CreateEvent with a
// one hour retention window.
func NewEventRecorder(db *gorm.DB) *EventRecorder {
	return &EventRecorder{DB: db, Write: repo.CreateEvent, TTL: time.Hour}
}

// Run consumes entries until ctx is canceled or the channel is closed. Write
// failures are logged; the entry is lost, matching the bus's best-effort
// delivery.
func (r *EventRecorder) Run(ctx context.Context, entries <-chan events.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-entries:
			if !ok {
				return
			}
			if err := r.record(ctx, e); err != nil {
				log.Error().Err(err).
					Str("source", e.Source).
					Str("detail_type", e.DetailType).
					Msg("audit event not recorded")
			}
		}
	}
}

func (r *EventRecorder) record(ctx context.Context, e events.Entry) error {
	aggregateID, email := aggregateOf(e)
	row := &domain.Event{
		AggregateID: aggregateID,
		EventType:   e.DetailType,
		Email:       email,
		Info:        e.DetailJSON(),
		CreatedAt:   e.Time.UnixMilli(),
		TTL:         e.Time.Add(r.TTL).Unix(),
	}
	return r.Write(ctx, r.DB, row)
}

// aggregateOf extracts the aggregate id (and owner e-mail, when present) from
// the known detail payload shapes. Unknown shapes fall back to the source
// name so the row is still queryable.
func aggregateOf(e events.Entry) (aggregateID, email string) {
	var probe struct {
		OrderID      string `json:"orderId"`
		ProductID    string `json:"productId"`
		InvoiceKey   string `json:"invoiceKey"`
		Transaction  string `json:"transactionId"`
		Email        string `json:"email"`
		CustomerName string `json:"customerName"`
	}
	if err := json.Unmarshal([]byte(e.DetailJSON()), &probe); err == nil {
		switch {
		case probe.OrderID != "":
			return probe.OrderID, probe.Email
		case probe.ProductID != "":
			return probe.ProductID, probe.Email
		case probe.InvoiceKey != "":
			return probe.InvoiceKey, probe.Email
		case probe.Transaction != "":
			return probe.Transaction, probe.Email
		}
	}
	return e.Source, ""
}
