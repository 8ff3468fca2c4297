// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for imported
// invoices.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-ecommerce-backend/internal/domain"
)

// CreateInvoice persists a validated invoice. Invoices are write-once: a
// second insert for the same (customer, invoice number) pair returns
// ErrDuplicate, which protects against double ingestion of the same upload.
func CreateInvoice(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	if inv.CreatedAt == 0 {
		inv.CreatedAt = time.Now().UnixMilli()
	}
	if err := db.WithContext(ctx).Create(inv).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetInvoice fetches one invoice by its natural key, or ErrNotFound.
func GetInvoice(ctx context.Context, db *gorm.DB, customerName, invoiceNumber string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).
		Where("customer_name = ? AND invoice_number = ?", customerName, invoiceNumber).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// ListInvoicesByCustomer returns all invoices for a customer, newest first.
func ListInvoicesByCustomer(ctx context.Context, db *gorm.DB, customerName string) ([]domain.Invoice, error) {
	var out []domain.Invoice
	err := db.WithContext(ctx).
		Where("customer_name = ?", customerName).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}
