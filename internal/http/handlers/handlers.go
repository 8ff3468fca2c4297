// Shared handler wiring for the REST API.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Service dependencies are abstract
// interfaces so tests can exercise every branch with in-memory fakes.
package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/services"
	"github.com/tbourn/go-ecommerce-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ProductService defines catalog operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ProductService interface {
	// Create adds a product to the catalog.
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	// ListPage returns a page of the catalog plus the total count.
	ListPage(ctx context.Context, offset, limit int) ([]domain.Product, int64, error)
	// Get returns one product by id.
	Get(ctx context.Context, id string) (*domain.Product, error)
	// Update overwrites the mutable fields of a product.
	Update(ctx context.Context, id string, p *domain.Product) (*domain.Product, error)
	// Delete removes a product and returns its last state.
	Delete(ctx context.Context, id string) (*domain.Product, error)
}

// OrderService defines order placement and retrieval operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type OrderService interface {
	// Place validates and persists a new order.
	Place(ctx context.Context, in services.PlaceOrderInput) (*domain.Order, error)
	// ListByEmail returns a customer's orders, newest first.
	ListByEmail(ctx context.Context, email string) ([]domain.Order, error)
	// Get returns one order by (email, id).
	Get(ctx context.Context, email, id string) (*domain.Order, error)
	// GetByID returns one order by id alone (idempotent replays).
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// Delete removes an order and returns its last state.
	Delete(ctx context.Context, email, id string) (*domain.Order, error)
}

// InvoiceReader defines read access to imported invoices and audit events.
type InvoiceReader interface {
	// GetInvoice returns one invoice by its natural key.
	GetInvoice(ctx context.Context, customerName, invoiceNumber string) (*domain.Invoice, error)
	// ListInvoices returns all invoices for a customer, newest first.
	ListInvoices(ctx context.Context, customerName string) ([]domain.Invoice, error)
	// ListEvents returns non-expired events owned by an e-mail, optionally
	// filtered by event type.
	ListEvents(ctx context.Context, email, eventType string) ([]domain.Event, error)
}

// IdempotencyStore persists and retrieves idempotent order placement results.
type IdempotencyStore interface {
	// Find returns the stored order id for (userID, key), or ("", false).
	Find(ctx context.Context, userID, key string) (orderID string, found bool)
	// Save records the produced order id for (userID, key). Losing a save
	// race is acceptable; the winner's order is served on replay.
	Save(ctx context.Context, userID, key, orderID string) error
}

//
// Handler wiring
//

// Handlers groups the REST endpoints for products, orders, invoices, and
// audit events.
type Handlers struct {
	products ProductService
	orders   OrderService
	invoices InvoiceReader
	idem     IdempotencyStore
}

// New constructs a Handlers instance bound to the given services. idem may be
// nil, which disables order placement replay (keys are still validated by the
// middleware).
func New(products ProductService, orders OrderService, invoices InvoiceReader, idem IdempotencyStore) *Handlers {
	return &Handlers{products: products, orders: orders, invoices: invoices, idem: idem}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// Shared DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
