// Invoice and audit event read endpoints.
//
// Imported invoices are produced exclusively by the WebSocket import
// pipeline; these handlers only expose read access:
//   - GET /invoices?customer=...                      (list a customer's invoices)
//   - GET /invoices/{customer}/{number}               (fetch one invoice)
//   - GET /events?email=...&type=...                  (recent audit events)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/repo"
)

// ListInvoicesResponse wraps a customer's imported invoices.
type ListInvoicesResponse struct {
	Invoices []domain.Invoice `json:"invoices"`
}

// ListEventsResponse wraps recent audit events.
type ListEventsResponse struct {
	Events []domain.Event `json:"events"`
}

// ListInvoices godoc
// @ID          listInvoices
// @Summary     List a customer's imported invoices
// @Tags        Invoices
// @Produce     json
//
// @Param       customer  query  string  true  "Customer name"
//
// @Success     200  {object}  handlers.ListInvoicesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /invoices [get]
func (h *Handlers) ListInvoices(c *gin.Context) {
	customer := strings.TrimSpace(c.Query("customer"))
	if customer == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "customer query parameter required")
		return
	}

	invoices, err := h.invoices.ListInvoices(c.Request.Context(), customer)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListInvoicesResponse{Invoices: invoices})
}

// GetInvoice godoc
// @ID          getInvoice
// @Summary     Fetch one imported invoice
// @Tags        Invoices
// @Produce     json
//
// @Param       customer  path  string  true  "Customer name"
// @Param       number    path  string  true  "Invoice number"
//
// @Success     200  {object}  domain.Invoice
// @Failure     404  {object}  handlers.ErrorResponse  "Invoice not found"
// @Router      /invoices/{customer}/{number} [get]
func (h *Handlers) GetInvoice(c *gin.Context) {
	customer := c.Param("customer")
	number := c.Param("number")

	inv, err := h.invoices.GetInvoice(c.Request.Context(), customer, number)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "invoice not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, inv)
}

// ListEvents godoc
// @ID          listEvents
// @Summary     List recent audit events for a customer
// @Description Returns the non-expired audit events owned by the given e-mail,
// @Description newest first, optionally filtered by event type.
// @Tags        Events
// @Produce     json
//
// @Param       email  query  string  true   "Owner e-mail"
// @Param       type   query  string  false  "Event type filter (e.g. ORDER_CREATED)"
//
// @Success     200  {object}  handlers.ListEventsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /events [get]
func (h *Handlers) ListEvents(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email query parameter required")
		return
	}

	events, err := h.invoices.ListEvents(c.Request.Context(), email, strings.TrimSpace(c.Query("type")))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListEventsResponse{Events: events})
}
