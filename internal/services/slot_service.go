// Package services – SlotService
//
// This file implements the upload slot issuer: the first step of the invoice
// import pipeline. For each request arriving over an open WebSocket
// connection it mints a fresh transaction id, signs a short-lived write-once
// upload URL for it, records the AWAITING state in the transaction ledger,
// and pushes the slot descriptor back to the client.
//
// There are no retries anywhere on this path: if the final push fails the
// client never learns its transaction id and the ledger row simply expires
// unreceived, at which point the reaper closes the channel out.
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
)

// SlotPayload is the JSON body pushed to the client after slot issuance.
type SlotPayload struct {
	URL              string `json:"url"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
	TransactionID    string `json:"transactionId"`
}

// SlotService issues upload slots and their ledger entries.
type SlotService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Ledger is the transaction ledger repository.
	Ledger LedgerRepo
	// Signer mints upload URLs.
	Signer SlotSigner
	// Notifier pushes the slot descriptor to the client.
	Notifier Notifier

	// Endpoint is the push-channel endpoint metadata recorded on each row.
	Endpoint string
	// URLTTL is the validity of the signed upload URL. It is intentionally
	// longer than LedgerTTL to tolerate clock slack; the ledger expiry is
	// the binding constraint in practice.
	URLTTL time.Duration
	// LedgerTTL is the window the client has to start the upload.
	LedgerTTL time.Duration
}

// NewSlotService constructs a SlotService with the production windows:
// a 5 minute upload URL against a 2 minute ledger expiry.
func NewSlotService(db *gorm.DB, ledger LedgerRepo, signer SlotSigner, notifier Notifier, endpoint string) *SlotService {
	return &SlotService{
		DB:        db,
		Ledger:    ledger,
		Signer:    signer,
		Notifier:  notifier,
		Endpoint:  endpoint,
		URLTTL:    5 * time.Minute,
		LedgerTTL: 2 * time.Minute,
	}
}

// IssueSlot mints an upload slot bound to the calling connection and returns
// the new transaction id. Side effects: one ledger insert, one push. A failed
// push is logged and otherwise ignored.
func (s *SlotService) IssueSlot(ctx context.Context, connectionID, requestID string) (string, error) {
	transactionID := uuid.NewString()

	url, expiresIn, err := s.Signer.SignPutURL(transactionID, s.URLTTL)
	if err != nil {
		return "", err
	}

	now := time.Now()
	row := &domain.InvoiceTransaction{
		TransactionID: transactionID,
		Status:        domain.TransactionStatusGenerated,
		Timestamp:     now.UnixMilli(),
		TTL:           now.Add(s.LedgerTTL).Unix(),
		ExpiresIn:     expiresIn,
		ConnectionID:  connectionID,
		RequestID:     requestID,
		Endpoint:      s.Endpoint,
	}
	if err := s.Ledger.Create(ctx, s.DB, row); err != nil {
		return "", err
	}

	payload, err := json.Marshal(SlotPayload{
		URL:              url,
		ExpiresInSeconds: expiresIn,
		TransactionID:    transactionID,
	})
	if err != nil {
		return "", err
	}
	if !s.Notifier.Push(connectionID, payload) {
		log.Warn().
			Str("transaction_id", transactionID).
			Str("connection_id", connectionID).
			Msg("slot push failed; transaction will expire unreceived")
	}

	log.Info().
		Str("transaction_id", transactionID).
		Str("connection_id", connectionID).
		Str("request_id", requestID).
		Msg("upload slot issued")
	return transactionID, nil
}
