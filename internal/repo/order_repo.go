// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order
// model and its item snapshots.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
)

// CreateOrder inserts an order together with its item snapshots in a single
// transaction. The order id is generated here when absent.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) (*domain.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt == 0 {
		o.CreatedAt = time.Now().UnixMilli()
	}
	for i := range o.Products {
		o.Products[i].OrderID = o.ID
	}
	if err := db.WithContext(ctx).Create(o).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return o, nil
}

// ListOrders returns all orders, newest first, items preloaded. Intended for
// the admin listing; per-customer queries should use ListOrdersByEmail.
func ListOrders(ctx context.Context, db *gorm.DB) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Preload("Products").
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListOrdersByEmail returns all orders owned by the given e-mail, newest
// first, items preloaded.
func ListOrdersByEmail(ctx context.Context, db *gorm.DB, email string) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Preload("Products").
		Where("email = ?", email).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// GetOrder fetches one order by (email, id), items preloaded, or ErrNotFound.
func GetOrder(ctx context.Context, db *gorm.DB, email, id string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Preload("Products").
		Where("email = ? AND id = ?", email, id).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// GetOrderByID fetches one order by id alone (used for idempotent replays
// where only the stored order id is known).
func GetOrderByID(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Preload("Products").
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// DeleteOrder removes an order by (email, id) and returns the deleted row so
// callers can emit a deletion event. Returns ErrNotFound when absent.
func DeleteOrder(ctx context.Context, db *gorm.DB, email, id string) (*domain.Order, error) {
	o, err := GetOrder(ctx, db, email, id)
	if err != nil {
		return nil, err
	}
	res := db.WithContext(ctx).
		Where("email = ? AND id = ?", email, id).
		Delete(&domain.Order{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return o, nil
}
