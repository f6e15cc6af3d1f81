package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"catalogue/internal/models"
)

// MemoryProductRepository is an in-memory implementation of
// ProductRepository. It mirrors the Mongo implementation's semantics
// (hex ids, atomic field sets, insertion order) so handler and service
// tests can run without a database.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]models.Product
	order    []string // insertion order of ids
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products in insertion order.
func (r *MemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		productList = append(productList, cloneProduct(r.products[id]))
	}
	return productList, nil
}

// GetByID returns a product by its hex id.
func (r *MemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("product id %q: %w", id, ErrInvalidID)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	copied := cloneProduct(product)
	return &copied, nil
}

// Create adds a new product, assigning an id and creation time if unset.
func (r *MemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	id := product.ID.Hex()
	if _, exists := r.products[id]; exists {
		return fmt.Errorf("product %s: %w", id, ErrDuplicateID)
	}
	r.products[id] = cloneProduct(*product)
	r.order = append(r.order, id)
	return nil
}

// UpdateFields sets the named dot-notation fields on one product under a
// single lock acquisition, leaving every other field untouched.
func (r *MemoryProductRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("product id %q: %w", id, ErrInvalidID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	for field, value := range fields {
		switch {
		case field == "comment":
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("field comment: expected string, got %T", value)
			}
			product.Comment = s
		case strings.HasPrefix(field, "ratings."):
			v, ok := value.(float64)
			if !ok {
				return fmt.Errorf("field %s: expected float64, got %T", field, value)
			}
			if product.Ratings == nil {
				product.Ratings = make(map[string]float64)
			}
			product.Ratings[strings.TrimPrefix(field, "ratings.")] = v
		default:
			return fmt.Errorf("unsupported update field %q", field)
		}
	}

	r.products[id] = product
	return nil
}

// cloneProduct deep-copies the maps and slices so callers cannot mutate
// stored state through returned values.
func cloneProduct(p models.Product) models.Product {
	if p.Ratings != nil {
		ratings := make(map[string]float64, len(p.Ratings))
		for k, v := range p.Ratings {
			ratings[k] = v
		}
		p.Ratings = ratings
	}
	if p.ImageURLs != nil {
		p.ImageURLs = append([]string(nil), p.ImageURLs...)
	}
	return p
}
