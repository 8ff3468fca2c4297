// Package services defines the business logic for the product catalog, order
// placement, and the invoice import pipeline. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer. The invoice pipeline itself surfaces
// almost nothing as an error: its outcomes travel to the client as status
// pushes, and concurrency conflicts are resolved silently by the ledger's
// conditional updates.
package services

import "errors"

// Catalog-related errors.
var (
	// ErrProductNotFound indicates that the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateProductCode is returned when a create or update would reuse
	// an existing product code.
	ErrDuplicateProductCode = errors.New("product code already exists")
)

// Order-related errors.
var (
	// ErrOrderNotFound indicates that the requested order does not exist or
	// does not belong to the given customer.
	ErrOrderNotFound = errors.New("order not found")

	// ErrEmptyOrder is returned when an order is placed without products.
	ErrEmptyOrder = errors.New("order has no products")

	// ErrUnknownProduct is returned when an order references a product id
	// that is not in the catalog.
	ErrUnknownProduct = errors.New("order references unknown product")
)

// Invoice pipeline errors. These are logged, never pushed raw to clients.
var (
	// ErrTransactionUnknown indicates an upload arrived for a transaction the
	// ledger does not know (or that already expired). With no ledger row
	// there is no channel to notify, so the processor just logs and stops.
	ErrTransactionUnknown = errors.New("invoice transaction unknown")

	// ErrTransactionFinalized indicates a conditional transition lost a race:
	// another handler finalized the transaction first. The loser skips its
	// dependent side effects; this is an expected outcome, not a failure.
	ErrTransactionFinalized = errors.New("invoice transaction finalized concurrently")

	// ErrInvalidInvoiceNumber is the stock validator's rejection reason.
	ErrInvalidInvoiceNumber = errors.New("invoice number too short")
)
