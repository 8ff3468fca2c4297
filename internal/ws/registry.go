// Package ws implements the channel registry for the invoice import
// pipeline: it maps opaque connection ids to live WebSocket connections and
// exposes the small push surface the pipeline handlers need: "is this client
// still reachable", "push this payload", and "tear the channel down".
//
// Every operation is best-effort and swallows transport failures at this
// boundary: pushing to a dead channel or terminating an already-gone channel
// is a safe no-op reported as false, never an error or a panic. The
// correctness of the pipeline does not depend on a client receiving any
// particular push, only on the ledger reaching a correct terminal state, so
// no retry logic is layered on top.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
)

// writeWait bounds every write (data, ping, close) to a slow or dead peer.
const writeWait = 5 * time.Second

var wsPushes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ws_pushes_total",
		Help: "Total WebSocket payload pushes by result.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(wsPushes)
}

// Conn is the transport surface the registry requires from a connection.
// *websocket.Conn satisfies it; tests substitute fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// StatusPayload is the JSON body pushed for every transaction status
// notification: {"transactionId": "...", "status": "..."}.
type StatusPayload struct {
	TransactionID string                   `json:"transactionId"`
	Status        domain.TransactionStatus `json:"status"`
}

// client pairs a connection with the write mutex gorilla requires
// (one concurrent writer per connection).
type client struct {
	conn Conn
	mu   sync.Mutex
}

// Registry tracks live connections by id. It is safe for concurrent use by
// the HTTP layer (register/unregister) and the pipeline services
// (push/terminate), which run on independent goroutines.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*client)}
}

// Register adds a connection under the given id, replacing (and closing) any
// previous connection registered under the same id.
func (r *Registry) Register(connectionID string, conn Conn) {
	r.mu.Lock()
	prev := r.clients[connectionID]
	r.clients[connectionID] = &client{conn: conn}
	r.mu.Unlock()

	if prev != nil {
		_ = prev.conn.Close()
	}
}

// Unregister removes a connection without sending a close frame. Intended for
// the read-loop cleanup path after the peer already went away.
func (r *Registry) Unregister(connectionID string) {
	r.mu.Lock()
	delete(r.clients, connectionID)
	r.mu.Unlock()
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// IsReachable probes the connection with a ping control frame. Any transport
// error is treated as "not reachable" and evicts the stale entry; the caller
// never sees an error.
func (r *Registry) IsReachable(connectionID string) bool {
	c := r.get(connectionID)
	if c == nil {
		return false
	}
	c.mu.Lock()
	err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	c.mu.Unlock()
	if err != nil {
		r.evict(connectionID, c)
		return false
	}
	return true
}

// Push attempts to deliver payload to the connection. It probes liveness
// first and reports false on any failure without raising. Delivery is
// at-least-once from the caller's perspective: a true return means the write
// was handed to the transport, not that the client processed it.
func (r *Registry) Push(connectionID string, payload []byte) bool {
	if !r.IsReachable(connectionID) {
		wsPushes.WithLabelValues("unreachable").Inc()
		return false
	}
	c := r.get(connectionID)
	if c == nil {
		wsPushes.WithLabelValues("unreachable").Inc()
		return false
	}
	c.mu.Lock()
	err := c.conn.WriteMessage(websocket.TextMessage, payload)
	c.mu.Unlock()
	if err != nil {
		log.Debug().Err(err).Str("connection_id", connectionID).Msg("ws push failed")
		r.evict(connectionID, c)
		wsPushes.WithLabelValues("failed").Inc()
		return false
	}
	wsPushes.WithLabelValues("ok").Inc()
	return true
}

// NotifyStatus serializes {transactionId, status} and pushes it to the
// connection. Convenience wrapper used by every pipeline handler.
func (r *Registry) NotifyStatus(transactionID, connectionID string, status domain.TransactionStatus) bool {
	payload, err := json.Marshal(StatusPayload{
		TransactionID: transactionID,
		Status:        status,
	})
	if err != nil {
		return false
	}
	return r.Push(connectionID, payload)
}

// Terminate force-disconnects the client: best-effort close frame, close the
// underlying connection, drop the registry entry. Returns false when the
// connection was already gone.
func (r *Registry) Terminate(connectionID string) bool {
	r.mu.Lock()
	c, ok := r.clients[connectionID]
	delete(r.clients, connectionID)
	r.mu.Unlock()
	if !ok {
		return false
	}

	c.mu.Lock()
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	c.mu.Unlock()
	_ = c.conn.Close()
	return true
}

func (r *Registry) get(connectionID string) *client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[connectionID]
}

// evict removes the entry only if it still maps to the same client, so a
// concurrent re-register under the same id is not clobbered.
func (r *Registry) evict(connectionID string, c *client) {
	r.mu.Lock()
	if cur, ok := r.clients[connectionID]; ok && cur == c {
		delete(r.clients, connectionID)
	}
	r.mu.Unlock()
	_ = c.conn.Close()
}
