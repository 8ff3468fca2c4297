// Package services – CancelService
//
// Client-initiated cancellation of a pending invoice import. Cancellation is
// only honored while the upload URL is outstanding; once a file arrived the
// import runs to completion and the client simply learns the recorded status.
// Every path, accepted or refused, ends with the channel closed: one import
// attempt per connection.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
)

// CancelService handles cancellation requests for pending imports.
type CancelService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Ledger is the transaction ledger repository.
	Ledger LedgerRepo
	// Notifier pushes status updates and tears channels down.
	Notifier Notifier
}

// Cancel processes a cancellation request for transactionID arriving on
// connectionID. The outcome always travels back as a status push, never as
// an error: NOT_FOUND for unknown or expired transactions, INVOICE_CANCELED
// when the cancellation lands, or the current recorded status when it is too
// late to cancel. The channel is closed afterwards in every case.
func (s *CancelService) Cancel(ctx context.Context, transactionID, connectionID string) error {
	defer s.Notifier.Terminate(connectionID)

	tx, err := s.Ledger.Get(ctx, s.DB, transactionID, time.Now())
	if err != nil {
		s.Notifier.NotifyStatus(transactionID, connectionID, domain.TransactionStatusNotFound)
		log.Warn().
			Str("transaction_id", transactionID).
			Str("connection_id", connectionID).
			Msg("cancellation for unknown transaction")
		return nil
	}

	if !tx.Status.Cancelable() {
		// Too late: a file already arrived or the import already finalized.
		// Report what the ledger recorded.
		s.Notifier.NotifyStatus(transactionID, tx.ConnectionID, tx.Status)
		log.Info().
			Str("transaction_id", transactionID).
			Str("status", string(tx.Status)).
			Msg("cancellation refused")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.Ledger.Update(gctx, s.DB, transactionID, domain.TransactionStatusCanceled)
		return err
	})
	g.Go(func() error {
		s.Notifier.NotifyStatus(transactionID, tx.ConnectionID, domain.TransactionStatusCanceled)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().
		Str("transaction_id", transactionID).
		Str("connection_id", connectionID).
		Msg("invoice import canceled")
	return nil
}
