// Package services – ReaperService
//
// Background expiry of abandoned invoice import transactions. Ledger rows
// carry an absolute TTL stamped at slot issuance; the reaper periodically
// sweeps rows past that deadline, pushes a TIMEOUT to clients still waiting
// on a non-terminal transaction, and closes their channels. Rows already in
// a terminal state expire silently.
//
// The same pass also garbage-collects expired audit event rows, which share
// the TTL convention.
package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
)

var reaperSweeps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_expired_transactions_total",
		Help: "Ledger rows removed by the expiry reaper, by recorded state.",
	},
	[]string{"state"},
)

func init() {
	prometheus.MustRegister(reaperSweeps)
}

// EventPurger garbage-collects expired audit event rows.
type EventPurger func(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)

// ReaperService sweeps expired ledger rows and notifies their owners.
type ReaperService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Ledger is the transaction ledger repository.
	Ledger LedgerRepo
	// Notifier pushes TIMEOUT statuses and tears channels down.
	Notifier Notifier
	// PurgeEvents removes expired audit event rows alongside the ledger
	// sweep. Optional.
	PurgeEvents EventPurger
	// Interval between sweeps. NewReaperService defaults it to 30 seconds.
	Interval time.Duration
}

// NewReaperService constructs a ReaperService with the default 30 second
// sweep interval.
func NewReaperService(db *gorm.DB, ledger LedgerRepo, notifier Notifier, purge EventPurger) *ReaperService {
	return &ReaperService{
		DB:          db,
		Ledger:      ledger,
		Notifier:    notifier,
		PurgeEvents: purge,
		Interval:    30 * time.Second,
	}
}

// Run sweeps on every tick until ctx is canceled. Sweep failures are logged
// and the loop keeps going.
func (s *ReaperService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, time.Now()); err != nil {
				log.Error().Err(err).Msg("ledger expiry sweep failed")
			}
		}
	}
}

// Sweep removes every ledger row expired at now, handles each removed row,
// and purges expired event rows. It returns the number of ledger rows
// removed.
func (s *ReaperService) Sweep(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.Ledger.Expire(ctx, s.DB, now)
	if err != nil {
		return 0, err
	}
	for _, tx := range expired {
		s.handleExpired(tx)
	}

	if s.PurgeEvents != nil {
		if n, err := s.PurgeEvents(ctx, s.DB, now); err != nil {
			log.Error().Err(err).Msg("event purge failed")
		} else if n > 0 {
			log.Debug().Int64("removed", n).Msg("expired event rows purged")
		}
	}
	return len(expired), nil
}

// handleExpired runs the per-row expiry protocol. A row swept while still in
// a non-terminal state means the client never finished: it gets a TIMEOUT
// push and its channel is closed. Terminal rows were already settled with
// the client and expire without a sound.
func (s *ReaperService) handleExpired(tx domain.InvoiceTransaction) {
	reaperSweeps.WithLabelValues(string(tx.Status)).Inc()
	if tx.Status.Terminal() {
		return
	}

	delivered := s.Notifier.NotifyStatus(tx.TransactionID, tx.ConnectionID, domain.TransactionStatusTimeout)
	s.Notifier.Terminate(tx.ConnectionID)
	log.Info().
		Str("transaction_id", tx.TransactionID).
		Str("last_status", string(tx.Status)).
		Bool("client_notified", delivered).
		Msg("invoice import timed out")
}
