// Package services – ProductService
//
// Catalog management. Thin orchestration over the product repository plus a
// lifecycle event publish per mutation; handlers own transport concerns and
// the repo owns persistence.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
	"github.com/tbourn/go-ecommerce-backend/internal/events"
	"github.com/tbourn/go-ecommerce-backend/internal/repo"
)

// ProductRepo is the consumer-side contract of the product repository.
type ProductRepo interface {
	Create(ctx context.Context, db *gorm.DB, p *domain.Product) (*domain.Product, error)
	List(ctx context.Context, db *gorm.DB) ([]domain.Product, error)
	ListPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Product, int64, error)
	Get(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Product, error)
	Update(ctx context.Context, db *gorm.DB, id string, p *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error)
}

// GormProductRepo adapts the package-level repo functions to ProductRepo.
type GormProductRepo struct{}

func (GormProductRepo) Create(ctx context.Context, db *gorm.DB, p *domain.Product) (*domain.Product, error) {
	return repo.CreateProduct(ctx, db, p)
}

func (GormProductRepo) List(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	return repo.ListProducts(ctx, db)
}

func (GormProductRepo) ListPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Product, int64, error) {
	return repo.ListProductsPage(ctx, db, offset, limit)
}

func (GormProductRepo) Get(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error) {
	return repo.GetProduct(ctx, db, id)
}

func (GormProductRepo) GetByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Product, error) {
	return repo.GetProductsByIDs(ctx, db, ids)
}

func (GormProductRepo) Update(ctx context.Context, db *gorm.DB, id string, p *domain.Product) (*domain.Product, error) {
	return repo.UpdateProduct(ctx, db, id, p)
}

func (GormProductRepo) Delete(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error) {
	return repo.DeleteProduct(ctx, db, id)
}

// ProductEventDetail is the payload of product lifecycle events.
type ProductEventDetail struct {
	ProductID   string `json:"productId"`
	ProductCode string `json:"productCode"`
}

// ProductService implements the catalog operations.
type ProductService struct {
	DB       *gorm.DB
	Products ProductRepo
	Bus      Publisher
}

// NewProductService wires the service with the GORM-backed repository.
func NewProductService(db *gorm.DB, bus Publisher) *ProductService {
	return &ProductService{DB: db, Products: GormProductRepo{}, Bus: bus}
}

// Create adds a product to the catalog and publishes PRODUCT_CREATED.
func (s *ProductService) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	created, err := s.Products.Create(ctx, s.DB, p)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateProductCode
		}
		return nil, err
	}
	s.publish("PRODUCT_CREATED", created)
	return created, nil
}

// List returns the full catalog.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.Products.List(ctx, s.DB)
}

// ListPage returns one page of the catalog plus the total count.
func (s *ProductService) ListPage(ctx context.Context, offset, limit int) ([]domain.Product, int64, error) {
	return s.Products.ListPage(ctx, s.DB, offset, limit)
}

// Get returns one product or ErrProductNotFound.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.Products.Get(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// Update overwrites the mutable fields of a product and publishes
// PRODUCT_UPDATED.
func (s *ProductService) Update(ctx context.Context, id string, p *domain.Product) (*domain.Product, error) {
	updated, err := s.Products.Update(ctx, s.DB, id, p)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repo.ErrDuplicate):
			return nil, ErrDuplicateProductCode
		}
		return nil, err
	}
	s.publish("PRODUCT_UPDATED", updated)
	return updated, nil
}

// Delete removes a product and publishes PRODUCT_DELETED with the last known
// state.
func (s *ProductService) Delete(ctx context.Context, id string) (*domain.Product, error) {
	deleted, err := s.Products.Delete(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.publish("PRODUCT_DELETED", deleted)
	return deleted, nil
}

func (s *ProductService) publish(eventType string, p *domain.Product) {
	if s.Bus == nil {
		return
	}
	s.Bus.Publish(events.Entry{
		Source:     events.SourceProduct,
		DetailType: eventType,
		Detail: ProductEventDetail{
			ProductID:   p.ID,
			ProductCode: p.Code,
		},
	})
}
