// Package domain defines the persistence models for the e-commerce backend:
// products, orders, invoices, the invoice import transaction ledger, and
// audit/notification events. These types are mapped with GORM and form the
// core data layer of the application.
package domain

// TransactionStatus enumerates the lifecycle states of an invoice import
// transaction. The string values are the wire-level statuses pushed to
// WebSocket clients, so they must not be renamed.
type TransactionStatus string

const (
	// TransactionStatusGenerated is the initial state: an upload URL has been
	// issued and the client has not uploaded a file yet.
	TransactionStatusGenerated TransactionStatus = "URL_GENERATED"
	// TransactionStatusReceived means a file landed for the transaction and
	// ingestion has started.
	TransactionStatusReceived TransactionStatus = "INVOICE_RECEIVED"
	// TransactionStatusProcessed is the terminal success state: the invoice
	// was validated and persisted.
	TransactionStatusProcessed TransactionStatus = "INVOICE_PROCESSED"
	// TransactionStatusTimeout is the terminal state applied when the ledger
	// entry expired before a terminal outcome was reached.
	TransactionStatusTimeout TransactionStatus = "TIMEOUT"
	// TransactionStatusCanceled is the terminal state for a client-initiated
	// cancellation while still awaiting the upload.
	TransactionStatusCanceled TransactionStatus = "INVOICE_CANCELED"
	// TransactionStatusInvalidNumber is the terminal state for an uploaded
	// file that failed invoice number validation.
	TransactionStatusInvalidNumber TransactionStatus = "NON_VALID_INVOICE_NUMBER"

	// TransactionStatusNotFound is never stored; it is pushed to a client
	// that references a transaction the ledger does not know (or that has
	// already expired).
	TransactionStatusNotFound TransactionStatus = "NOT_FOUND"
)

// Terminal reports whether the status is a terminal outcome. A transaction in
// a terminal state accepts no further transitions.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case TransactionStatusProcessed,
		TransactionStatusTimeout,
		TransactionStatusCanceled,
		TransactionStatusInvalidNumber:
		return true
	}
	return false
}

// Cancelable reports whether a client cancellation is still permitted.
// Cancellation is only allowed while the upload URL is outstanding; once a
// file has been received (or any terminal state reached) the request is
// refused and the current status is reported back instead.
func (s TransactionStatus) Cancelable() bool {
	return s == TransactionStatusGenerated
}

// InvoiceTransaction is the ledger entry recording one upload attempt. The
// ledger exclusively owns the lifecycle of these rows: handlers mutate status
// through existence-guarded conditional updates only (see repo package),
// never unconditional overwrites, so concurrent handlers cannot resurrect or
// duplicate a finalized transaction.
//
// Fields:
//   - TransactionID: opaque UUID, doubles as the upload object key.
//   - Status: current lifecycle state (wire string, see TransactionStatus).
//   - Timestamp: creation time in epoch milliseconds.
//   - TTL: absolute expiry in epoch seconds; rows past TTL are swept by the
//     ledger reaper regardless of state.
//   - ExpiresIn: validity of the issued upload URL in seconds.
//   - ConnectionID: the WebSocket connection that owns this transaction, used
//     to route notifications after the originating request has ended.
//   - RequestID: correlation id of the issuing request (tracing).
//   - Endpoint: push-channel endpoint metadata recorded at issue time.
type InvoiceTransaction struct {
	TransactionID string            `json:"transactionId" gorm:"type:char(36);primaryKey"`
	Status        TransactionStatus `json:"transactionStatus" gorm:"type:varchar(32);not null;index"`
	Timestamp     int64             `json:"timestamp" gorm:"not null"`
	TTL           int64             `json:"ttl" gorm:"not null;index"`
	ExpiresIn     int64             `json:"expiresIn" gorm:"not null"`
	ConnectionID  string            `json:"connectionId" gorm:"type:char(36);not null"`
	RequestID     string            `json:"requestId" gorm:"type:char(36);not null"`
	Endpoint      string            `json:"endpoint" gorm:"type:varchar(255)"`
}

// TableName returns the database table name for InvoiceTransaction.
func (InvoiceTransaction) TableName() string { return "invoice_transactions" }

// Invoice is the validated business record produced by a successful import.
// It is created exactly once per successful transaction and never mutated.
//
// The (CustomerName, InvoiceNumber) pair is the natural key; TransactionID is
// a foreign reference back to the originating ledger entry.
type Invoice struct {
	CustomerName  string  `json:"customerName" gorm:"type:varchar(128);not null;primaryKey"`
	InvoiceNumber string  `json:"invoiceNumber" gorm:"type:varchar(64);not null;primaryKey"`
	TotalValue    float64 `json:"totalValue" gorm:"not null"`
	ProductID     string  `json:"productId" gorm:"type:char(36);not null"`
	Quantity      int     `json:"quantity" gorm:"not null"`
	TransactionID string  `json:"transactionId" gorm:"type:char(36);not null;index"`
	CreatedAt     int64   `json:"createdAt" gorm:"not null"`
}

// TableName returns the database table name for Invoice.
func (Invoice) TableName() string { return "invoices" }

// InvoiceFile is the expected shape of an uploaded invoice document. It is
// parsed from the raw uploaded object, validated, and copied into an Invoice
// on success. It is not a persistence model.
type InvoiceFile struct {
	CustomerName  string  `json:"customerName"`
	InvoiceNumber string  `json:"invoiceNumber"`
	TotalValue    float64 `json:"totalValue"`
	ProductID     string  `json:"productId"`
	Quantity      int     `json:"quantity"`
}
