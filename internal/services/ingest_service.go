// Package services – IngestService
//
// This file implements the ingestion processor: the handler triggered once
// per file that lands in the upload store. It validates the file, advances
// the transaction ledger, persists the resulting invoice, and keeps the
// owning client informed over its channel.
//
// The trigger is at-least-once: the same arrival can be delivered more than
// once, and an arrival can race the cancellation handler and the expiry
// reaper for the same transaction. Idempotency rests on two checks: the
// status gate before processing starts, and the ledger's conditional
// transition whose failed guard means another handler finalized the
// transaction first.
//
// Any unexpected failure (unreadable object, malformed JSON, storage outage)
// is caught at the top level, logged, and swallowed: the trigger source must
// never be told to retry, because a retry would re-run ingestion against a
// ledger row that may already have moved past AWAITING.
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/events"
	"github.com/tbourn/go-ecommerce-backend/internal/storage"
)

// AuditReasonNoInvoiceNumber is the fixed reason code carried by the audit
// signal emitted for documents failing invoice number validation.
const AuditReasonNoInvoiceNumber = "FAIL_NO_INVOICE_NUMBER"

var invoiceImports = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "invoice_imports_total",
		Help: "Invoice import outcomes by result.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(invoiceImports)
}

// InvoiceValidator decides whether an uploaded document is acceptable.
// A nil return means valid.
type InvoiceValidator func(domain.InvoiceFile) error

// MinInvoiceNumberLength returns a validator accepting documents whose
// invoice number has at least n characters.
func MinInvoiceNumberLength(n int) InvoiceValidator {
	return func(f domain.InvoiceFile) error {
		if len(f.InvoiceNumber) < n {
			return ErrInvalidInvoiceNumber
		}
		return nil
	}
}

// InvoiceAuditInfo is the contextual block inside an audit signal.
type InvoiceAuditInfo struct {
	InvoiceKey   string `json:"invoiceKey"`
	CustomerName string `json:"customerName"`
}

// InvoiceAuditDetail is the audit signal payload emitted for rejected
// documents: {errorDetail, info:{invoiceKey, customerName}}.
type InvoiceAuditDetail struct {
	ErrorDetail string           `json:"errorDetail"`
	Info        InvoiceAuditInfo `json:"info"`
}

// IngestService processes uploaded invoice files.
type IngestService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Ledger is the transaction ledger repository.
	Ledger LedgerRepo
	// Invoices persists validated invoices.
	Invoices InvoiceRepo
	// Store is the upload object store the files arrive in.
	Store ObjectStore
	// Notifier pushes status updates and tears channels down.
	Notifier Notifier
	// Bus receives the audit signal for rejected documents and the
	// INVOICE_CREATED event for accepted ones.
	Bus Publisher
	// Validator is the pluggable acceptance rule; nil means the default
	// minimum invoice number length of 5.
	Validator InvoiceValidator
}

// Run consumes arrival notifications until ctx is canceled or the channel is
// closed. One Process call per arrival; failures never stop the loop.
func (s *IngestService) Run(ctx context.Context, arrivals <-chan storage.Arrival) {
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-arrivals:
			if !ok {
				return
			}
			s.Process(ctx, a.Key)
		}
	}
}

// Process handles one arrival for the given object key (= transaction id).
// All failures are handled internally; Process never reports one upstream.
func (s *IngestService) Process(ctx context.Context, key string) {
	if err := s.process(ctx, key); err != nil {
		log.Error().Err(err).Str("transaction_id", key).Msg("invoice ingestion aborted")
	}
}

func (s *IngestService) process(ctx context.Context, key string) error {
	tx, err := s.Ledger.Get(ctx, s.DB, key, time.Now())
	if err != nil {
		// Unknown or expired transaction: no channel to notify.
		invoiceImports.WithLabelValues("unknown").Inc()
		return ErrTransactionUnknown
	}

	if tx.Status != domain.TransactionStatusGenerated {
		// Duplicate trigger delivery, or a lost race against cancellation or
		// timeout. Report the recorded state as-is and close the channel;
		// this is the idempotency gate, not an error.
		s.Notifier.NotifyStatus(key, tx.ConnectionID, tx.Status)
		s.Notifier.Terminate(tx.ConnectionID)
		invoiceImports.WithLabelValues("duplicate").Inc()
		return nil
	}

	var received bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := s.Ledger.Update(gctx, s.DB, key, domain.TransactionStatusReceived)
		received = ok
		return err
	})
	g.Go(func() error {
		s.Notifier.NotifyStatus(key, tx.ConnectionID, domain.TransactionStatusReceived)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if !received {
		// The row vanished between the read and the transition: finalized
		// (or swept) elsewhere. Skip validation entirely.
		s.Notifier.Terminate(tx.ConnectionID)
		invoiceImports.WithLabelValues("conflict").Inc()
		return nil
	}

	raw, err := s.Store.Get(key)
	if err != nil {
		return err
	}
	var file domain.InvoiceFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return err
	}

	validate := s.Validator
	if validate == nil {
		validate = MinInvoiceNumberLength(5)
	}

	if err := validate(file); err != nil {
		s.reject(ctx, key, tx.ConnectionID, file)
	} else {
		s.accept(ctx, key, tx.ConnectionID, file)
	}

	// One notification cycle per transaction, then disconnect.
	s.Notifier.Terminate(tx.ConnectionID)
	return nil
}

// accept runs the success branch: persist the invoice, delete the source
// object, finalize the ledger, notify the client. The four side effects are
// independent and jointly awaited. A partial failure is logged, not rolled
// back; every effect here is idempotent under redelivery.
func (s *IngestService) accept(ctx context.Context, key, connectionID string, file domain.InvoiceFile) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Invoices.Create(gctx, s.DB, &domain.Invoice{
			CustomerName:  file.CustomerName,
			InvoiceNumber: file.InvoiceNumber,
			TotalValue:    file.TotalValue,
			ProductID:     file.ProductID,
			Quantity:      file.Quantity,
			TransactionID: key,
			CreatedAt:     time.Now().UnixMilli(),
		})
	})
	g.Go(func() error {
		return s.Store.Delete(key)
	})
	g.Go(func() error {
		_, err := s.Ledger.Update(gctx, s.DB, key, domain.TransactionStatusProcessed)
		return err
	})
	g.Go(func() error {
		s.Notifier.NotifyStatus(key, connectionID, domain.TransactionStatusProcessed)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("transaction_id", key).Msg("partial failure finalizing processed invoice")
	}

	if s.Bus != nil {
		s.Bus.Publish(events.Entry{
			Source:     events.SourceInvoice,
			DetailType: "INVOICE_CREATED",
			Detail: map[string]any{
				"customerName":  file.CustomerName,
				"invoiceNumber": file.InvoiceNumber,
				"transactionId": key,
				"productId":     file.ProductID,
				"quantity":      file.Quantity,
			},
		})
	}
	invoiceImports.WithLabelValues("processed").Inc()
}

// reject runs the failure branch: audit signal, terminal REJECTED status,
// client notification. The source object is deliberately left in place for
// manual inspection; the store's lifecycle will reclaim it.
func (s *IngestService) reject(ctx context.Context, key, connectionID string, file domain.InvoiceFile) {
	log.Error().
		Str("transaction_id", key).
		Str("customer_name", file.CustomerName).
		Msg("invoice import failed - non valid invoice number")

	if s.Bus != nil {
		s.Bus.Publish(events.Entry{
			Source:     events.SourceInvoice,
			DetailType: "invoice",
			Detail: InvoiceAuditDetail{
				ErrorDetail: AuditReasonNoInvoiceNumber,
				Info: InvoiceAuditInfo{
					InvoiceKey:   key,
					CustomerName: file.CustomerName,
				},
			},
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.Ledger.Update(gctx, s.DB, key, domain.TransactionStatusInvalidNumber)
		return err
	})
	g.Go(func() error {
		s.Notifier.NotifyStatus(key, connectionID, domain.TransactionStatusInvalidNumber)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("transaction_id", key).Msg("partial failure finalizing rejected invoice")
	}
	invoiceImports.WithLabelValues("rejected").Inc()
}
