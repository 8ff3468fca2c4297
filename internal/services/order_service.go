// Package services – OrderService
//
// Order placement and retrieval. Placement snapshots the ordered products at
// their current catalog price, totals them server-side, persists the order,
// and publishes ORDER_CREATED for the audit trail and the e-mail worker.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/events"
	"github.com/tbourn/go-ecommerce-backend/internal/repo"
)

// OrderRepo is the consumer-side contract of the order repository.
type OrderRepo interface {
	Create(ctx context.Context, db *gorm.DB, o *domain.Order) (*domain.Order, error)
	List(ctx context.Context, db *gorm.DB) ([]domain.Order, error)
	ListByEmail(ctx context.Context, db *gorm.DB, email string) ([]domain.Order, error)
	Get(ctx context.Context, db *gorm.DB, email, id string) (*domain.Order, error)
	GetByID(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error)
	Delete(ctx context.Context, db *gorm.DB, email, id string) (*domain.Order, error)
}

// GormOrderRepo adapts the package-level repo functions to OrderRepo.
type GormOrderRepo struct{}

func (GormOrderRepo) Create(ctx context.Context, db *gorm.DB, o *domain.Order) (*domain.Order, error) {
	return repo.CreateOrder(ctx, db, o)
}

func (GormOrderRepo) List(ctx context.Context, db *gorm.DB) ([]domain.Order, error) {
	return repo.ListOrders(ctx, db)
}

func (GormOrderRepo) ListByEmail(ctx context.Context, db *gorm.DB, email string) ([]domain.Order, error) {
	return repo.ListOrdersByEmail(ctx, db, email)
}

func (GormOrderRepo) Get(ctx context.Context, db *gorm.DB, email, id string) (*domain.Order, error) {
	return repo.GetOrder(ctx, db, email, id)
}

func (GormOrderRepo) GetByID(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	return repo.GetOrderByID(ctx, db, id)
}

func (GormOrderRepo) Delete(ctx context.Context, db *gorm.DB, email, id string) (*domain.Order, error) {
	return repo.DeleteOrder(ctx, db, email, id)
}

// PlaceOrderInput is the service-level order placement request. ProductIDs
// reference the catalog; pricing is resolved here, never trusted from the
// client.
type PlaceOrderInput struct {
	Email           string
	ProductIDs      []string
	ShippingType    string
	ShippingCarrier string
	Payment         string
}

// OrderEventDetail is the payload of order lifecycle events consumed by the
// audit recorder and the e-mail worker.
type OrderEventDetail struct {
	Email      string  `json:"email"`
	OrderID    string  `json:"orderId"`
	TotalPrice float64 `json:"totalPrice"`
	Items      int     `json:"items"`
}

// OrderService implements order placement and retrieval.
type OrderService struct {
	DB       *gorm.DB
	Orders   OrderRepo
	Products ProductRepo
	Bus      Publisher
}

// NewOrderService wires the service with the GORM-backed repositories.
func NewOrderService(db *gorm.DB, bus Publisher) *OrderService {
	return &OrderService{DB: db, Orders: GormOrderRepo{}, Products: GormProductRepo{}, Bus: bus}
}

// Place validates the referenced products, snapshots them at current catalog
// prices, persists the order, and publishes ORDER_CREATED. Returns
// ErrEmptyOrder for an empty product list and ErrUnknownProduct when any id
// is not in the catalog.
func (s *OrderService) Place(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	if len(in.ProductIDs) == 0 {
		return nil, ErrEmptyOrder
	}

	products, err := s.Products.GetByIDs(ctx, s.DB, in.ProductIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]domain.OrderItem, 0, len(in.ProductIDs))
	var total float64
	for _, id := range in.ProductIDs {
		p, ok := byID[id]
		if !ok {
			return nil, ErrUnknownProduct
		}
		items = append(items, domain.OrderItem{Code: p.Code, Price: p.Price})
		total += p.Price
	}

	order := &domain.Order{
		Email:           in.Email,
		ShippingType:    in.ShippingType,
		ShippingCarrier: in.ShippingCarrier,
		Payment:         in.Payment,
		TotalPrice:      total,
		Products:        items,
	}
	created, err := s.Orders.Create(ctx, s.DB, order)
	if err != nil {
		return nil, err
	}

	s.publish("ORDER_CREATED", created)
	return created, nil
}

// List returns all orders, newest first.
func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.Orders.List(ctx, s.DB)
}

// ListByEmail returns a customer's orders, newest first.
func (s *OrderService) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	return s.Orders.ListByEmail(ctx, s.DB, email)
}

// Get returns one order by (email, id) or ErrOrderNotFound.
func (s *OrderService) Get(ctx context.Context, email, id string) (*domain.Order, error) {
	o, err := s.Orders.Get(ctx, s.DB, email, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// GetByID returns one order by id alone, used when replaying an idempotent
// placement where only the stored order id is known.
func (s *OrderService) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.Orders.GetByID(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// Delete removes an order and publishes ORDER_DELETED with its last state.
func (s *OrderService) Delete(ctx context.Context, email, id string) (*domain.Order, error) {
	deleted, err := s.Orders.Delete(ctx, s.DB, email, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	s.publish("ORDER_DELETED", deleted)
	return deleted, nil
}

func (s *OrderService) publish(eventType string, o *domain.Order) {
	if s.Bus == nil {
		return
	}
	s.Bus.Publish(events.Entry{
		Source:     events.SourceOrder,
		DetailType: eventType,
		Detail: OrderEventDetail{
			Email:      o.Email,
			OrderID:    o.ID,
			TotalPrice: o.TotalPrice,
			Items:      len(o.Products),
		},
	})
}
