package domain

import "time"

// Product represents a catalog entry. Products are managed through the admin
// REST endpoints and referenced by orders and imported invoices.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - ProductName: display name.
//   - Code: short merchant code; unique, used in order snapshots.
//   - Price: unit price.
//   - Model: manufacturer model identifier.
type Product struct {
	ID          string  `json:"id" gorm:"type:char(36);primaryKey"`
	ProductName string  `json:"productName" gorm:"type:varchar(255);not null"`
	Code        string  `json:"code" gorm:"type:varchar(64);not null;uniqueIndex"`
	Price       float64 `json:"price" gorm:"not null"`
	Model       string  `json:"model" gorm:"type:varchar(128)"`
	ProductURL  string  `json:"productUrl" gorm:"type:varchar(255)"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// Order represents a placed order. The owning customer is identified by
// e-mail; (Email, ID) form the composite primary key so a customer's orders
// can be listed with a single indexed lookup.
type Order struct {
	Email     string `json:"email" gorm:"type:varchar(128);not null;primaryKey;priority:1"`
	ID        string `json:"id" gorm:"type:char(36);not null;primaryKey;priority:2"`
	CreatedAt int64  `json:"createdAt" gorm:"not null"`

	// Shipping
	ShippingType    string `json:"shippingType" gorm:"type:varchar(16);not null;check:shipping_type IN ('URGENT','ECONOMIC')"`
	ShippingCarrier string `json:"shippingCarrier" gorm:"type:varchar(16);not null"`

	// Billing
	Payment    string  `json:"payment" gorm:"type:varchar(16);not null;check:payment IN ('CASH','DEBIT_CARD','CREDIT_CARD')"`
	TotalPrice float64 `json:"totalPrice" gorm:"not null"`

	// Products is the denormalized snapshot of ordered items, priced at
	// order time so later catalog changes do not rewrite order history.
	Products []OrderItem `json:"products" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// OrderItem is a single product snapshot inside an order.
type OrderItem struct {
	ID      uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID string  `json:"-" gorm:"type:char(36);not null;index"`
	Code    string  `json:"code" gorm:"type:varchar(64);not null"`
	Price   float64 `json:"price" gorm:"not null"`
}

// TableName returns the database table name for OrderItem.
func (OrderItem) TableName() string { return "order_items" }

// Event is an audit/notification event row. Product, order, and invoice
// lifecycle events are appended here by bus subscribers and garbage-collected
// after TTL; they back the order events fetch endpoint.
//
// Fields:
//   - AggregateID: the entity the event refers to (order id, invoice number,
//     product id).
//   - EventType: e.g. ORDER_CREATED, PRODUCT_UPDATED, INVOICE_CREATED.
//   - Email: owner identity, when known, for per-customer event queries.
//   - Info: free-form JSON payload with event-specific details.
//   - CreatedAt: epoch milliseconds.
//   - TTL: absolute expiry in epoch seconds.
type Event struct {
	ID          string `json:"id" gorm:"type:char(36);primaryKey"`
	AggregateID string `json:"aggregateId" gorm:"type:varchar(128);not null;index:idx_event_aggregate,priority:1"`
	EventType   string `json:"eventType" gorm:"type:varchar(32);not null;index:idx_event_aggregate,priority:2"`
	Email       string `json:"email" gorm:"type:varchar(128);index"`
	Info        string `json:"info" gorm:"type:text"`
	CreatedAt   int64  `json:"createdAt" gorm:"not null"`
	TTL         int64  `json:"ttl" gorm:"not null;index"`
}

// TableName returns the database table name for Event.
func (Event) TableName() string { return "events" }

// Idempotency represents a recorded result of a previously processed order
// placement, keyed by (user_id, key). It enables safe retries for POST
// operations by letting handlers serve the originally produced order without
// re-executing side effects.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_key,priority:1"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_key,priority:2"`
	OrderID   string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
