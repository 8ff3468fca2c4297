package services

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/repo"
)

func TestCancelService_CancelPending(t *testing.T) {
	db := newServiceDB(t)
	notifier := newFakeNotifier()
	svc := &CancelService{DB: db, Ledger: GormLedgerRepo{}, Notifier: notifier}

	seedTransaction(t, db, "tx-c1", "conn-c1", domain.TransactionStatusGenerated)

	if err := svc.Cancel(context.Background(), "tx-c1", "conn-c1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	tx, err := repo.GetInvoiceTransaction(context.Background(), db, "tx-c1", time.Now())
	if err != nil {
		t.Fatalf("ledger row: %v", err)
	}
	if tx.Status != domain.TransactionStatusCanceled {
		t.Fatalf("status = %s; want %s", tx.Status, domain.TransactionStatusCanceled)
	}

	got := notifier.statusSequence()
	if len(got) != 1 || got[0] != domain.TransactionStatusCanceled {
		t.Fatalf("status sequence = %v", got)
	}
	if notifier.terminatedCount() != 1 {
		t.Fatal("channel must be closed after cancellation")
	}
}

func TestCancelService_TooLateAfterReceive(t *testing.T) {
	db := newServiceDB(t)
	notifier := newFakeNotifier()
	svc := &CancelService{DB: db, Ledger: GormLedgerRepo{}, Notifier: notifier}

	seedTransaction(t, db, "tx-c2", "conn-c2", domain.TransactionStatusReceived)

	if err := svc.Cancel(context.Background(), "tx-c2", "conn-c2"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	// Status untouched; the client just learns what is recorded.
	tx, err := repo.GetInvoiceTransaction(context.Background(), db, "tx-c2", time.Now())
	if err != nil {
		t.Fatalf("ledger row: %v", err)
	}
	if tx.Status != domain.TransactionStatusReceived {
		t.Fatalf("status = %s; want unchanged %s", tx.Status, domain.TransactionStatusReceived)
	}

	got := notifier.statusSequence()
	if len(got) != 1 || got[0] != domain.TransactionStatusReceived {
		t.Fatalf("status sequence = %v", got)
	}
	if notifier.terminatedCount() != 1 {
		t.Fatal("channel must be closed after a refused cancellation")
	}
}

func TestCancelService_UnknownTransaction(t *testing.T) {
	db := newServiceDB(t)
	notifier := newFakeNotifier()
	svc := &CancelService{DB: db, Ledger: GormLedgerRepo{}, Notifier: notifier}

	if err := svc.Cancel(context.Background(), "missing", "conn-x"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	got := notifier.statusSequence()
	if len(got) != 1 || got[0] != domain.TransactionStatusNotFound {
		t.Fatalf("status sequence = %v; want NOT_FOUND", got)
	}
	if notifier.terminatedCount() != 1 {
		t.Fatal("channel must be closed even for unknown transactions")
	}
}

func TestCancelService_ExpiredReportsNotFound(t *testing.T) {
	db := newServiceDB(t)
	notifier := newFakeNotifier()
	svc := &CancelService{DB: db, Ledger: GormLedgerRepo{}, Notifier: notifier}

	// Row present but past its TTL.
	now := time.Now()
	err := repo.CreateInvoiceTransaction(context.Background(), db, &domain.InvoiceTransaction{
		TransactionID: "tx-c3",
		Status:        domain.TransactionStatusGenerated,
		Timestamp:     now.Add(-5 * time.Minute).UnixMilli(),
		TTL:           now.Add(-3 * time.Minute).Unix(),
		ExpiresIn:     300,
		ConnectionID:  "conn-c3",
		RequestID:     "req-c3",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Cancel(context.Background(), "tx-c3", "conn-c3"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	got := notifier.statusSequence()
	if len(got) != 1 || got[0] != domain.TransactionStatusNotFound {
		t.Fatalf("status sequence = %v; want NOT_FOUND for expired row", got)
	}
}
