package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/http/middleware"
)

const testOrderBody = `{
	"email": "buyer@example.com",
	"productIds": ["141add05-4415-4938-b5a1-17e0d3171aff"],
	"shippingType": "ECONOMIC",
	"shippingCarrier": "DHL",
	"payment": "CREDIT_CARD"
}`

func TestPlaceOrder_CreatesOrder(t *testing.T) {
	orders := newFakeOrders()
	h := New(newFakeProducts(), orders, &fakeInvoices{}, nil)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/orders", testOrderBody, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}

	var got domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Email != "buyer@example.com" {
		t.Fatalf("email = %q", got.Email)
	}
	if got.TotalPrice != 10 {
		t.Fatalf("total = %v, want 10", got.TotalPrice)
	}
	if orders.placed != 1 {
		t.Fatalf("placed = %d, want 1", orders.placed)
	}
}

func TestPlaceOrder_ValidatesBody(t *testing.T) {
	h := New(newFakeProducts(), newFakeOrders(), &fakeInvoices{}, nil)
	r := newTestRouter(h)

	cases := map[string]string{
		"bad email":    `{"email":"nope","productIds":["a"],"shippingType":"URGENT","shippingCarrier":"DHL","payment":"CASH"}`,
		"no products":  `{"email":"a@b.com","productIds":[],"shippingType":"URGENT","shippingCarrier":"DHL","payment":"CASH"}`,
		"bad shipping": `{"email":"a@b.com","productIds":["a"],"shippingType":"TELEPORT","shippingCarrier":"DHL","payment":"CASH"}`,
		"bad payment":  `{"email":"a@b.com","productIds":["a"],"shippingType":"URGENT","shippingCarrier":"DHL","payment":"IOU"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/orders", body, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestPlaceOrder_UnknownProductIsUnprocessable(t *testing.T) {
	h := New(newFakeProducts(), newFakeOrders(), &fakeInvoices{}, nil)
	r := newTestRouter(h)

	body := `{"email":"a@b.com","productIds":["missing-1"],"shippingType":"URGENT","shippingCarrier":"DHL","payment":"CASH"}`
	w := doJSON(t, r, http.MethodPost, "/orders", body, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

// A retried POST with the same Idempotency-Key serves the stored order with
// 200 and does not place a second one.
func TestPlaceOrder_IdempotentReplay(t *testing.T) {
	orders := newFakeOrders()
	idem := newFakeIdem()
	h := New(newFakeProducts(), orders, &fakeInvoices{}, idem)

	lookup := func(ctx context.Context, userID, key string, _ time.Time) (bool, error) {
		_, found := idem.Find(ctx, userID, key)
		return found, nil
	}
	r := newTestRouter(h, middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, lookup))

	headers := map[string]string{
		"Idempotency-Key": "retry-abc-1",
		"X-User-ID":       "buyer@example.com",
	}

	first := doJSON(t, r, http.MethodPost, "/orders", testOrderBody, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d (body %s)", first.Code, first.Body.String())
	}
	var placed domain.Order
	if err := json.Unmarshal(first.Body.Bytes(), &placed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	second := doJSON(t, r, http.MethodPost, "/orders", testOrderBody, headers)
	if second.Code != http.StatusOK {
		t.Fatalf("replay status = %d, want 200 (body %s)", second.Code, second.Body.String())
	}
	var replayed domain.Order
	if err := json.Unmarshal(second.Body.Bytes(), &replayed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if replayed.ID != placed.ID {
		t.Fatalf("replayed order %q, want original %q", replayed.ID, placed.ID)
	}
	if orders.placed != 1 {
		t.Fatalf("placed = %d, want 1", orders.placed)
	}
}

// A different key from the same user places a fresh order.
func TestPlaceOrder_DistinctKeysPlaceDistinctOrders(t *testing.T) {
	orders := newFakeOrders()
	idem := newFakeIdem()
	h := New(newFakeProducts(), orders, &fakeInvoices{}, idem)

	lookup := func(ctx context.Context, userID, key string, _ time.Time) (bool, error) {
		_, found := idem.Find(ctx, userID, key)
		return found, nil
	}
	r := newTestRouter(h, middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, lookup))

	for _, key := range []string{"k-1", "k-2"} {
		w := doJSON(t, r, http.MethodPost, "/orders", testOrderBody, map[string]string{"Idempotency-Key": key})
		if w.Code != http.StatusCreated {
			t.Fatalf("key %s status = %d", key, w.Code)
		}
	}
	if orders.placed != 2 {
		t.Fatalf("placed = %d, want 2", orders.placed)
	}
}

func TestListOrders_RequiresEmail(t *testing.T) {
	h := New(newFakeProducts(), newFakeOrders(), &fakeInvoices{}, nil)
	r := newTestRouter(h)

	if w := doJSON(t, r, http.MethodGet, "/orders", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetAndDeleteOrder_ScopedToEmail(t *testing.T) {
	orders := newFakeOrders()
	h := New(newFakeProducts(), orders, &fakeInvoices{}, nil)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/orders", testOrderBody, nil)
	var placed domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &placed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Wrong owner cannot see or delete the order.
	if w := doJSON(t, r, http.MethodGet, "/orders/"+placed.ID+"?email=other@example.com", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign get status = %d, want 404", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/orders/"+placed.ID+"?email=other@example.com", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status = %d, want 404", w.Code)
	}

	if w := doJSON(t, r, http.MethodGet, "/orders/"+placed.ID+"?email=buyer@example.com", "", nil); w.Code != http.StatusOK {
		t.Fatalf("owner get status = %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/orders/"+placed.ID+"?email=buyer@example.com", "", nil); w.Code != http.StatusNoContent {
		t.Fatalf("owner delete status = %d, want 204", w.Code)
	}
	if len(orders.orders) != 0 {
		t.Fatalf("orders remaining = %d, want 0", len(orders.orders))
	}
}
