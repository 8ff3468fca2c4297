// Order HTTP handlers.
//
// This file exposes REST endpoints for order resources:
//   - POST   /orders       (place, idempotent via Idempotency-Key)
//   - GET    /orders       (list the caller's orders)
//   - GET    /orders/{id}  (fetch)
//   - DELETE /orders/{id}  (delete)
//
// Order placement honors the Idempotency-Key header: when the middleware
// flags a replay, the previously produced order is served with 200 instead of
// re-running placement.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/http/middleware"
	"github.com/tbourn/go-ecommerce-backend/internal/services"
)

// PlaceOrderRequest is the JSON payload for placing an order.
type PlaceOrderRequest struct {
	// Email identifies the ordering customer.
	Email string `json:"email" binding:"required,email" example:"buyer@example.com"`
	// ProductIDs reference catalog products; duplicates order multiple units.
	ProductIDs []string `json:"productIds" binding:"required,min=1" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// ShippingType is URGENT or ECONOMIC.
	ShippingType string `json:"shippingType" binding:"required,oneof=URGENT ECONOMIC" example:"ECONOMIC"`
	// ShippingCarrier names the carrier.
	ShippingCarrier string `json:"shippingCarrier" binding:"required" example:"DHL"`
	// Payment is CASH, DEBIT_CARD, or CREDIT_CARD.
	Payment string `json:"payment" binding:"required,oneof=CASH DEBIT_CARD CREDIT_CARD" example:"CREDIT_CARD"`
}

// ListOrdersResponse wraps the caller's orders.
type ListOrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// PlaceOrder godoc
// @ID          placeOrder
// @Summary     Place an order
// @Description Places an order for the given customer. Pricing is resolved
// @Description server-side from the catalog. Supply an Idempotency-Key header
// @Description to make retries safe; a replay returns the original order.
// @Tags        Orders
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string                       false  "Client-chosen retry key"
// @Param       body             body    handlers.PlaceOrderRequest   true   "Order payload"
//
// @Success     201  {object}  domain.Order
// @Success     200  {object}  domain.Order  "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     422  {object}  handlers.ErrorResponse  "Unknown product"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders [post]
func (h *Handlers) PlaceOrder(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	// Serve a stored result when the middleware detected a replay.
	if key, hasKey := middleware.GetIdempotencyKey(c); hasKey && h.idem != nil && middleware.IsReplay(c) {
		if orderID, found := h.idem.Find(ctx, uid, key); found {
			if order, err := h.orders.GetByID(ctx, orderID); err == nil {
				ok(c, http.StatusOK, order)
				return
			}
		}
		// Stored order vanished; fall through and place a fresh one.
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	order, err := h.orders.Place(ctx, services.PlaceOrderInput{
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		ProductIDs:      req.ProductIDs,
		ShippingType:    req.ShippingType,
		ShippingCarrier: req.ShippingCarrier,
		Payment:         req.Payment,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyOrder):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order has no products")
		case errors.Is(err, services.ErrUnknownProduct):
			fail(c, http.StatusUnprocessableEntity, ErrCodeBadRequest, "order references unknown product")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}

	if key, hasKey := middleware.GetIdempotencyKey(c); hasKey && h.idem != nil {
		// Best-effort: a failed save only costs replay protection.
		_ = h.idem.Save(ctx, uid, key, order.ID)
	}
	ok(c, http.StatusCreated, order)
}

// ListOrders godoc
// @ID          listOrders
// @Summary     List the customer's orders
// @Tags        Orders
// @Produce     json
//
// @Param       email  query  string  true  "Customer e-mail"
//
// @Success     200  {object}  handlers.ListOrdersResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders [get]
func (h *Handlers) ListOrders(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email query parameter required")
		return
	}

	orders, err := h.orders.ListByEmail(c.Request.Context(), email)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListOrdersResponse{Orders: orders})
}

// GetOrder godoc
// @ID          getOrder
// @Summary     Fetch an order
// @Tags        Orders
// @Produce     json
//
// @Param       id     path   string  true  "Order ID (UUID)"  format(uuid)
// @Param       email  query  string  true  "Customer e-mail"
//
// @Success     200  {object}  domain.Order
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Order not found"
// @Router      /orders/{id} [get]
func (h *Handlers) GetOrder(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email query parameter required")
		return
	}

	order, err := h.orders.Get(c.Request.Context(), email, id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, order)
}

// DeleteOrder godoc
// @ID          deleteOrder
// @Summary     Delete an order
// @Tags        Orders
// @Produce     json
//
// @Param       id     path   string  true  "Order ID (UUID)"  format(uuid)
// @Param       email  query  string  true  "Customer e-mail"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Order not found"
// @Router      /orders/{id} [delete]
func (h *Handlers) DeleteOrder(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email query parameter required")
		return
	}

	if _, err := h.orders.Delete(c.Request.Context(), email, id); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
