// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for audit and
// notification event rows.
//
// Event rows are append-only and TTL-bound: bus subscribers append them, the
// fetch endpoints read them, and PurgeExpiredEvents garbage-collects them.
// Nothing updates an event in place.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
)

// CreateEvent appends an event row. ID and CreatedAt are filled in when the
// caller leaves them zero.
func CreateEvent(ctx context.Context, db *gorm.DB, ev *domain.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt == 0 {
		ev.CreatedAt = time.Now().UnixMilli()
	}
	return db.WithContext(ctx).Create(ev).Error
}

// ListEventsByEmail returns non-expired events owned by the given e-mail,
// newest first, optionally filtered by event type.
func ListEventsByEmail(ctx context.Context, db *gorm.DB, email, eventType string, now time.Time) ([]domain.Event, error) {
	q := db.WithContext(ctx).
		Where("email = ? AND ttl > ?", email, now.Unix())
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	var out []domain.Event
	err := q.Order("created_at desc").Find(&out).Error
	return out, err
}

// ListEventsByAggregate returns non-expired events for a single aggregate
// (order id, invoice number, product id), newest first.
func ListEventsByAggregate(ctx context.Context, db *gorm.DB, aggregateID string, now time.Time) ([]domain.Event, error) {
	var out []domain.Event
	err := db.WithContext(ctx).
		Where("aggregate_id = ? AND ttl > ?", aggregateID, now.Unix()).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// PurgeExpiredEvents deletes event rows past their TTL and reports how many
// were removed.
func PurgeExpiredEvents(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("ttl <= ?", now.Unix()).
		Delete(&domain.Event{})
	return res.RowsAffected, res.Error
}
