package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tbourn/go-ecommerce-backend/internal/ws"
)

// fakeSlotIssuer records issued slots and optionally pushes a payload through
// the registry the way the real slot service does.
type fakeSlotIssuer struct {
	mu       sync.Mutex
	registry *ws.Registry
	conns    []string
	payload  []byte
	err      error
}

func (f *fakeSlotIssuer) IssueSlot(_ context.Context, connectionID, _ string) (string, error) {
	f.mu.Lock()
	f.conns = append(f.conns, connectionID)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if f.registry != nil && f.payload != nil {
		f.registry.Push(connectionID, f.payload)
	}
	return "tx-1", nil
}

func (f *fakeSlotIssuer) issued() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.conns...)
}

// fakeCanceler records cancellations and terminates the channel like the real
// cancel service.
type fakeCanceler struct {
	mu       sync.Mutex
	registry *ws.Registry
	calls    []string
	err      error
}

func (f *fakeCanceler) Cancel(_ context.Context, transactionID, connectionID string) error {
	f.mu.Lock()
	f.calls = append(f.calls, transactionID)
	f.mu.Unlock()
	if f.registry != nil {
		f.registry.Terminate(connectionID)
	}
	return f.err
}

func (f *fakeCanceler) canceled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// dialWS spins up a server around the handler and dials it. Cleanup closes
// both ends.
func dialWS(t *testing.T, h *WSHandler) *websocket.Conn {
	t.Helper()
	r := gin.New()
	r.GET("/ws/invoices", h.Serve)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/invoices"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, out any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestWSHandler_RegistersConnectionAndIssuesSlot(t *testing.T) {
	registry := ws.NewRegistry()
	issuer := &fakeSlotIssuer{registry: registry, payload: []byte(`{"url":"http://api.test/upload/tok","ttl":300}`)}
	h := NewWSHandler(registry, issuer, &fakeCanceler{registry: registry})

	conn := dialWS(t, h)
	waitFor(t, func() bool { return registry.Len() == 1 }, "connection never registered")

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"getImportUrl"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	var slot struct {
		URL string `json:"url"`
		TTL int    `json:"ttl"`
	}
	readJSON(t, conn, &slot)
	if slot.URL == "" || slot.TTL != 300 {
		t.Fatalf("slot push = %+v", slot)
	}

	issued := issuer.issued()
	if len(issued) != 1 {
		t.Fatalf("issued slots = %d, want 1", len(issued))
	}
	if !registry.IsReachable(issued[0]) {
		t.Fatal("issuer got a connection id the registry cannot reach")
	}
}

func TestWSHandler_SlotFailurePushesError(t *testing.T) {
	registry := ws.NewRegistry()
	issuer := &fakeSlotIssuer{err: errors.New("ledger down")}
	h := NewWSHandler(registry, issuer, &fakeCanceler{})

	conn := dialWS(t, h)
	waitFor(t, func() bool { return registry.Len() == 1 }, "connection never registered")

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"getImportUrl"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	var push struct {
		Error string `json:"error"`
	}
	readJSON(t, conn, &push)
	if push.Error != "import slot unavailable" {
		t.Fatalf("error push = %+v", push)
	}
}

func TestWSHandler_CancelImportTerminatesChannel(t *testing.T) {
	registry := ws.NewRegistry()
	canceler := &fakeCanceler{registry: registry}
	h := NewWSHandler(registry, &fakeSlotIssuer{}, canceler)

	conn := dialWS(t, h)
	waitFor(t, func() bool { return registry.Len() == 1 }, "connection never registered")

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"cancelImport","transactionId":"tx-9"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, func() bool { return len(canceler.canceled()) == 1 }, "cancel never dispatched")
	if got := canceler.canceled()[0]; got != "tx-9" {
		t.Fatalf("canceled transaction = %q, want tx-9", got)
	}
	waitFor(t, func() bool { return registry.Len() == 0 }, "channel not torn down after cancel")

	// The peer observes the close handshake.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected a read error after termination")
	}
}

func TestWSHandler_CancelWithoutTransactionIDPushesError(t *testing.T) {
	registry := ws.NewRegistry()
	canceler := &fakeCanceler{registry: registry}
	h := NewWSHandler(registry, &fakeSlotIssuer{}, canceler)

	conn := dialWS(t, h)
	waitFor(t, func() bool { return registry.Len() == 1 }, "connection never registered")

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"cancelImport"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	var push struct {
		Error string `json:"error"`
	}
	readJSON(t, conn, &push)
	if push.Error != "transactionId required" {
		t.Fatalf("error push = %+v", push)
	}
	if len(canceler.canceled()) != 0 {
		t.Fatal("cancel dispatched without a transaction id")
	}
}

func TestWSHandler_UnknownActionAndMalformedMessage(t *testing.T) {
	registry := ws.NewRegistry()
	h := NewWSHandler(registry, &fakeSlotIssuer{}, &fakeCanceler{})

	conn := dialWS(t, h)
	waitFor(t, func() bool { return registry.Len() == 1 }, "connection never registered")

	var push struct {
		Error string `json:"error"`
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"selfDestruct"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	readJSON(t, conn, &push)
	if push.Error != "unknown action" {
		t.Fatalf("error push = %+v", push)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{{{`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	readJSON(t, conn, &push)
	if push.Error != "malformed message" {
		t.Fatalf("error push = %+v", push)
	}
}

func TestWSHandler_DisconnectUnregisters(t *testing.T) {
	registry := ws.NewRegistry()
	h := NewWSHandler(registry, &fakeSlotIssuer{}, &fakeCanceler{})

	conn := dialWS(t, h)
	waitFor(t, func() bool { return registry.Len() == 1 }, "connection never registered")

	_ = conn.Close()
	waitFor(t, func() bool { return registry.Len() == 0 }, "connection never unregistered")
}
