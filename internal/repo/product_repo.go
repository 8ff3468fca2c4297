// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Product
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
)

// CreateProduct inserts a new product with a generated UUID primary key.
// Returns ErrDuplicate when the product code is already taken.
func CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

// ListProducts returns the full catalog.
func ListProducts(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).Order("product_name asc").Find(&out).Error
	return out, err
}

// ListProductsPage returns a page of the catalog plus the total count.
func ListProductsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Product, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Product
	err := db.WithContext(ctx).
		Order("product_name asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, total, err
}

// GetProduct fetches one product by id, or ErrNotFound.
func GetProduct(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetProductsByIDs fetches a batch of products. The result may be shorter
// than ids when some are unknown; the caller decides whether that is fatal.
func GetProductsByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	var out []domain.Product
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// UpdateProduct overwrites the mutable fields of a product. Returns
// ErrNotFound when no row was affected.
func UpdateProduct(ctx context.Context, db *gorm.DB, id string, p *domain.Product) (*domain.Product, error) {
	res := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"product_name": p.ProductName,
			"code":         p.Code,
			"price":        p.Price,
			"model":        p.Model,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, ErrDuplicate
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return GetProduct(ctx, db, id)
}

// DeleteProduct removes a product and returns the deleted row so callers can
// emit a deletion event with the last known state. Returns ErrNotFound when
// the product does not exist.
func DeleteProduct(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error) {
	p, err := GetProduct(ctx, db, id)
	if err != nil {
		return nil, err
	}
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return p, nil
}
