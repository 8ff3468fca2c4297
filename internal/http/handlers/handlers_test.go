package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/repo"
	"github.com/tbourn/go-ecommerce-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeProducts is an in-memory ProductService.
type fakeProducts struct {
	mu    sync.Mutex
	items map[string]domain.Product
	fail  error
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{items: map[string]domain.Product{}}
}

func (f *fakeProducts) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	for _, existing := range f.items {
		if existing.Code == p.Code {
			return nil, services.ErrDuplicateProductCode
		}
	}
	if p.ID == "" {
		p.ID = "11111111-1111-1111-1111-11111111111" + string(rune('0'+len(f.items)))
	}
	f.items[p.ID] = *p
	return p, nil
}

func (f *fakeProducts) ListPage(_ context.Context, offset, limit int) ([]domain.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, 0, f.fail
	}
	out := make([]domain.Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []domain.Product{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (f *fakeProducts) Get(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, services.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeProducts) Update(_ context.Context, id string, p *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return nil, services.ErrProductNotFound
	}
	p.ID = id
	f.items[id] = *p
	return p, nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, services.ErrProductNotFound
	}
	delete(f.items, id)
	return &p, nil
}

// fakeOrders is an in-memory OrderService.
type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	placed int
	fail   error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[string]domain.Order{}}
}

func (f *fakeOrders) Place(_ context.Context, in services.PlaceOrderInput) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if len(in.ProductIDs) == 0 {
		return nil, services.ErrEmptyOrder
	}
	for _, id := range in.ProductIDs {
		if strings.HasPrefix(id, "missing") {
			return nil, services.ErrUnknownProduct
		}
	}
	f.placed++
	o := domain.Order{
		Email:           in.Email,
		ID:              "22222222-2222-2222-2222-22222222222" + string(rune('0'+f.placed)),
		ShippingType:    in.ShippingType,
		ShippingCarrier: in.ShippingCarrier,
		Payment:         in.Payment,
		TotalPrice:      float64(len(in.ProductIDs)) * 10,
	}
	f.orders[o.ID] = o
	return &o, nil
}

func (f *fakeOrders) ListByEmail(_ context.Context, email string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if o.Email == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) Get(_ context.Context, email, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.Email != email {
		return nil, services.ErrOrderNotFound
	}
	return &o, nil
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, services.ErrOrderNotFound
	}
	return &o, nil
}

func (f *fakeOrders) Delete(_ context.Context, email, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.Email != email {
		return nil, services.ErrOrderNotFound
	}
	delete(f.orders, id)
	return &o, nil
}

// fakeInvoices is an in-memory InvoiceReader.
type fakeInvoices struct {
	invoices []domain.Invoice
	events   []domain.Event
}

func (f *fakeInvoices) GetInvoice(_ context.Context, customerName, invoiceNumber string) (*domain.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.CustomerName == customerName && inv.InvoiceNumber == invoiceNumber {
			return &inv, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeInvoices) ListInvoices(_ context.Context, customerName string) ([]domain.Invoice, error) {
	var out []domain.Invoice
	for _, inv := range f.invoices {
		if inv.CustomerName == customerName {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvoices) ListEvents(_ context.Context, email, eventType string) ([]domain.Event, error) {
	var out []domain.Event
	for _, ev := range f.events {
		if ev.Email == email && (eventType == "" || ev.EventType == eventType) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// fakeIdem is an in-memory IdempotencyStore.
type fakeIdem struct {
	mu   sync.Mutex
	keys map[string]string // userID+"/"+key -> orderID
}

func newFakeIdem() *fakeIdem { return &fakeIdem{keys: map[string]string{}} }

func (f *fakeIdem) Find(_ context.Context, userID, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.keys[userID+"/"+key]
	return id, ok
}

func (f *fakeIdem) Save(_ context.Context, userID, key, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[userID+"/"+key] = orderID
	return nil
}

// newTestRouter wires a gin engine with the REST routes the production router
// registers for the given Handlers. extra middleware runs before the routes.
func newTestRouter(h *Handlers, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)

	r.POST("/products", h.CreateProduct)
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.PUT("/products/:id", h.UpdateProduct)
	r.DELETE("/products/:id", h.DeleteProduct)

	r.POST("/orders", h.PlaceOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.DELETE("/orders/:id", h.DeleteOrder)

	r.GET("/invoices", h.ListInvoices)
	r.GET("/invoices/:customer/:number", h.GetInvoice)
	r.GET("/events", h.ListEvents)

	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
