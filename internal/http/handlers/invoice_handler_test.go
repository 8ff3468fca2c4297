package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
)

func newInvoiceRouter(invoices *fakeInvoices) http.Handler {
	h := New(newFakeProducts(), newFakeOrders(), invoices, nil)
	return newTestRouter(h)
}

func TestListInvoices_FiltersByCustomer(t *testing.T) {
	r := newInvoiceRouter(&fakeInvoices{
		invoices: []domain.Invoice{
			{CustomerName: "ACME", InvoiceNumber: "INV-10001", TotalValue: 120},
			{CustomerName: "ACME", InvoiceNumber: "INV-10002", TotalValue: 80},
			{CustomerName: "Globex", InvoiceNumber: "INV-20001", TotalValue: 55},
		},
	})

	w := doJSON(t, r, http.MethodGet, "/invoices?customer=ACME", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ListInvoicesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Invoices) != 2 {
		t.Fatalf("invoices = %d, want 2", len(resp.Invoices))
	}
	for _, inv := range resp.Invoices {
		if inv.CustomerName != "ACME" {
			t.Fatalf("leaked foreign invoice %+v", inv)
		}
	}
}

func TestListInvoices_RequiresCustomer(t *testing.T) {
	r := newInvoiceRouter(&fakeInvoices{})
	if w := doJSON(t, r, http.MethodGet, "/invoices", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetInvoice_ByNaturalKey(t *testing.T) {
	r := newInvoiceRouter(&fakeInvoices{
		invoices: []domain.Invoice{
			{CustomerName: "ACME", InvoiceNumber: "INV-10001", TotalValue: 120, Quantity: 3},
		},
	})

	w := doJSON(t, r, http.MethodGet, "/invoices/ACME/INV-10001", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var inv domain.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &inv); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if inv.TotalValue != 120 || inv.Quantity != 3 {
		t.Fatalf("invoice = %+v", inv)
	}

	if w := doJSON(t, r, http.MethodGet, "/invoices/ACME/INV-99999", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d, want 404", w.Code)
	}
}

func TestListEvents_FiltersByEmailAndType(t *testing.T) {
	r := newInvoiceRouter(&fakeInvoices{
		events: []domain.Event{
			{ID: "e1", Email: "buyer@example.com", EventType: "ORDER_CREATED"},
			{ID: "e2", Email: "buyer@example.com", EventType: "ORDER_DELETED"},
			{ID: "e3", Email: "other@example.com", EventType: "ORDER_CREATED"},
		},
	})

	w := doJSON(t, r, http.MethodGet, "/events?email=buyer@example.com&type=ORDER_CREATED", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ListEventsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Events) != 1 || resp.Events[0].ID != "e1" {
		t.Fatalf("events = %+v", resp.Events)
	}

	// No type filter returns everything the e-mail owns.
	w = doJSON(t, r, http.MethodGet, "/events?email=buyer@example.com", "", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(resp.Events))
	}

	if w := doJSON(t, r, http.MethodGet, "/events", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing email status = %d, want 400", w.Code)
	}
}
