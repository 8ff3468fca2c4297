// Package services – invoice pipeline contracts
//
// This file defines the narrow collaborator contracts shared by the four
// invoice pipeline services (slot issuer, ingestion processor, cancellation,
// expiry reaper). The concrete implementations are the ws.Registry, the
// storage.UploadStore, and the repo ledger functions; services depend only on
// these interfaces so tests can observe every push, terminate, and transition
// with hand-rolled fakes.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/events"
	"github.com/tbourn/go-ecommerce-backend/internal/repo"
)

// Notifier is the push surface of the channel registry. Both operations are
// best-effort: false means the client was unreachable, and no error is ever
// raised across this boundary.
type Notifier interface {
	// Push delivers a raw payload to the connection.
	Push(connectionID string, payload []byte) bool
	// NotifyStatus pushes {transactionId, status} to the connection.
	NotifyStatus(transactionID, connectionID string, status domain.TransactionStatus) bool
	// Terminate force-disconnects the client; false if already gone.
	Terminate(connectionID string) bool
}

// LedgerRepo is the transaction ledger contract. Update reports a failed
// existence guard as (false, nil); see the repo package for the exact
// semantics the pipeline relies on.
type LedgerRepo interface {
	Create(ctx context.Context, db *gorm.DB, tx *domain.InvoiceTransaction) error
	Get(ctx context.Context, db *gorm.DB, transactionID string, now time.Time) (*domain.InvoiceTransaction, error)
	Update(ctx context.Context, db *gorm.DB, transactionID string, status domain.TransactionStatus) (bool, error)
	UpdateFrom(ctx context.Context, db *gorm.DB, transactionID string, from, to domain.TransactionStatus) (bool, error)
	Expire(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.InvoiceTransaction, error)
}

// InvoiceRepo persists validated invoices.
type InvoiceRepo interface {
	Create(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error
}

// ObjectStore is the slice of the upload store the ingestion processor needs.
type ObjectStore interface {
	Get(key string) ([]byte, error)
	Delete(key string) error
}

// SlotSigner mints time-limited, write-once upload URLs.
type SlotSigner interface {
	SignPutURL(key string, ttl time.Duration) (url string, expiresIn int64, err error)
}

// Publisher is the producing side of the event bus.
type Publisher interface {
	Publish(e events.Entry)
}

// GormLedgerRepo adapts the package-level ledger functions to LedgerRepo.
type GormLedgerRepo struct{}

func (GormLedgerRepo) Create(ctx context.Context, db *gorm.DB, tx *domain.InvoiceTransaction) error {
	return repo.CreateInvoiceTransaction(ctx, db, tx)
}

func (GormLedgerRepo) Get(ctx context.Context, db *gorm.DB, transactionID string, now time.Time) (*domain.InvoiceTransaction, error) {
	return repo.GetInvoiceTransaction(ctx, db, transactionID, now)
}

func (GormLedgerRepo) Update(ctx context.Context, db *gorm.DB, transactionID string, status domain.TransactionStatus) (bool, error) {
	return repo.UpdateInvoiceTransaction(ctx, db, transactionID, status)
}

func (GormLedgerRepo) UpdateFrom(ctx context.Context, db *gorm.DB, transactionID string, from, to domain.TransactionStatus) (bool, error) {
	return repo.UpdateInvoiceTransactionFrom(ctx, db, transactionID, from, to)
}

func (GormLedgerRepo) Expire(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.InvoiceTransaction, error) {
	return repo.ExpireInvoiceTransactions(ctx, db, now)
}

// GormInvoiceRepo adapts the package-level invoice functions to InvoiceRepo.
type GormInvoiceRepo struct{}

func (GormInvoiceRepo) Create(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return repo.CreateInvoice(ctx, db, inv)
}
