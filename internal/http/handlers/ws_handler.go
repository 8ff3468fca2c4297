// Invoice import WebSocket endpoint.
//
// GET /ws/invoices upgrades the connection and serves the import protocol.
// The client sends JSON actions over the socket:
//
//	{"action": "getImportUrl"}
//	{"action": "cancelImport", "transactionId": "..."}
//
// and receives slot descriptors and {transactionId, status} pushes in return.
// The connection is registered under a fresh connection id so pipeline
// handlers running after this request ends (ingestion, reaper) can still
// reach the client through the registry. The pipeline closes the channel when
// the import settles; a read error just unregisters the connection.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-ecommerce-backend/internal/ws"
)

// SlotIssuer mints an upload slot bound to a connection.
type SlotIssuer interface {
	IssueSlot(ctx context.Context, connectionID, requestID string) (string, error)
}

// ImportCanceler processes a cancellation request for a pending import.
type ImportCanceler interface {
	Cancel(ctx context.Context, transactionID, connectionID string) error
}

// clientAction is one JSON message read from the socket.
type clientAction struct {
	Action        string `json:"action"`
	TransactionID string `json:"transactionId"`
}

// WSHandler serves the invoice import WebSocket.
type WSHandler struct {
	Registry *ws.Registry
	Slots    SlotIssuer
	Cancels  ImportCanceler

	Upgrader websocket.Upgrader
}

// NewWSHandler returns a handler with a permissive upgrader; origin policy is
// enforced by the CORS middleware in front of it.
func NewWSHandler(registry *ws.Registry, slots SlotIssuer, cancels ImportCanceler) *WSHandler {
	return &WSHandler{
		Registry: registry,
		Slots:    slots,
		Cancels:  cancels,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Serve godoc
// @ID          invoiceImportSocket
// @Summary     Invoice import WebSocket
// @Description Upgrades to a WebSocket serving the invoice import protocol
// @Description (getImportUrl / cancelImport actions, status pushes back).
// @Tags        Invoices
//
// @Success     101  {string}  string  "Switching Protocols"
// @Failure     400  {object}  handlers.ErrorResponse  "Upgrade failed"
// @Router      /ws/invoices [get]
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote its own response; just log.
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	connectionID := uuid.NewString()
	requestID := c.Writer.Header().Get("X-Request-ID")
	h.Registry.Register(connectionID, conn)
	log.Info().
		Str("connection_id", connectionID).
		Str("request_id", requestID).
		Msg("invoice import channel opened")

	h.readLoop(c.Request.Context(), conn, connectionID, requestID)
}

// readLoop serves client actions until the peer goes away or the pipeline
// terminates the channel.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, connectionID, requestID string) {
	defer h.Registry.Unregister(connectionID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var action clientAction
		if err := json.Unmarshal(data, &action); err != nil {
			h.pushError(connectionID, "malformed message")
			continue
		}

		switch action.Action {
		case "getImportUrl":
			if _, err := h.Slots.IssueSlot(ctx, connectionID, requestID); err != nil {
				log.Error().Err(err).
					Str("connection_id", connectionID).
					Msg("upload slot issuance failed")
				h.pushError(connectionID, "import slot unavailable")
			}
		case "cancelImport":
			if action.TransactionID == "" {
				h.pushError(connectionID, "transactionId required")
				continue
			}
			if err := h.Cancels.Cancel(ctx, action.TransactionID, connectionID); err != nil {
				log.Error().Err(err).
					Str("transaction_id", action.TransactionID).
					Msg("import cancellation failed")
			}
			// Cancel terminates the channel on every outcome.
			return
		default:
			h.pushError(connectionID, "unknown action")
		}
	}
}

func (h *WSHandler) pushError(connectionID, msg string) {
	payload, _ := json.Marshal(gin.H{"error": msg})
	h.Registry.Push(connectionID, payload)
}
