package repositories

import (
	"context"
	"errors"

	"catalogue/internal/models"
)

// Sentinel errors returned by repositories so handlers can map them to HTTP
// statuses without matching on message text.
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidID   = errors.New("invalid id")
	ErrDuplicateID = errors.New("duplicate id")
)

// ProductRepository defines the interface for product data access.
//
// UpdateFields applies a partial update: keys are dot-notation paths into
// the document ("comment", "ratings.naim") and each named field is set in a
// single storage operation. Fields not named keep their stored values, so
// two concurrent updates touching different reviewer keys cannot revert
// each other.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}
