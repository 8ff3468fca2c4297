// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the invoice
// transaction ledger.
//
// The ledger is the sole serialization point between the handlers of the
// invoice import pipeline: the slot issuer, the ingestion processor, the
// cancellation handler, and the expiry reaper never share in-process state,
// so every race between them is resolved by the conditional updates below.
//
// Error semantics:
//   - GetInvoiceTransaction returns ErrNotFound when the row is absent or its
//     TTL has elapsed (an expired row is as good as gone to callers; the
//     reaper owns its removal).
//   - UpdateInvoiceTransaction reports a failed guard as (false, nil), never
//     as an error. A false return tells the caller "someone else finalized
//     this transaction; skip your dependent side effects".
//   - CreateInvoiceTransaction returns ErrDuplicate on a primary key
//     collision, which the UUID generation scheme makes practically
//     unreachable.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateInvoiceTransaction inserts a new ledger row. The caller supplies the
// fully populated record (id, status, timestamps, connection binding).
// Returns ErrDuplicate if the transaction id already exists.
func CreateInvoiceTransaction(ctx context.Context, db *gorm.DB, tx *domain.InvoiceTransaction) error {
	if err := db.WithContext(ctx).Create(tx).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetInvoiceTransaction fetches a ledger row by transaction id. Rows whose
// TTL has elapsed at now are reported as ErrNotFound even if the reaper has
// not swept them yet, so callers observe expiry consistently.
func GetInvoiceTransaction(ctx context.Context, db *gorm.DB, transactionID string, now time.Time) (*domain.InvoiceTransaction, error) {
	var tx domain.InvoiceTransaction
	err := db.WithContext(ctx).
		Where("transaction_id = ? AND ttl > ?", transactionID, now.Unix()).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// UpdateInvoiceTransaction applies a status transition guarded on row
// existence only: the update lands iff the row is still present. It returns
// (false, nil) when the guard fails, signaling that the transaction was
// finalized (or swept) concurrently; this is an expected outcome under
// concurrency, not an error.
//
// The previous status is deliberately not part of the guard; callers are
// responsible for only requesting transitions that are valid from the state
// they last observed. See UpdateInvoiceTransactionFrom for the stricter
// variant.
func UpdateInvoiceTransaction(ctx context.Context, db *gorm.DB, transactionID string, status domain.TransactionStatus) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.InvoiceTransaction{}).
		Where("transaction_id = ?", transactionID).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateInvoiceTransactionFrom applies a status transition guarded on both
// existence and the expected current status (compare-and-swap). Returns
// (false, nil) when the row is gone or no longer in the expected status.
func UpdateInvoiceTransactionFrom(ctx context.Context, db *gorm.DB, transactionID string, from, to domain.TransactionStatus) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.InvoiceTransaction{}).
		Where("transaction_id = ? AND status = ?", transactionID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExpireInvoiceTransactions removes every ledger row whose TTL elapsed at or
// before now and returns the removed rows so the caller can run per-row
// expiry handling (timeout notification, channel teardown). The read and the
// delete run in one transaction so a row is handed out at most once per
// sweep.
func ExpireInvoiceTransactions(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.InvoiceTransaction, error) {
	var expired []domain.InvoiceTransaction
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ttl <= ?", now.Unix()).Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		ids := make([]string, 0, len(expired))
		for _, e := range expired {
			ids = append(ids, e.TransactionID)
		}
		return tx.Where("transaction_id IN ?", ids).
			Delete(&domain.InvoiceTransaction{}).Error
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
