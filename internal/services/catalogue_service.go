package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"catalogue/internal/models"
	"catalogue/internal/repositories"
	"catalogue/pkg/rabbitmq"
)

// ValidationError marks an error the caller can correct (bad reviewer key,
// out-of-range rating, missing field). Handlers map it to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CatalogueService handles business logic for the product catalogue.
type CatalogueService struct {
	repo      repositories.ProductRepository
	reviewers []string
	mqClient  *rabbitmq.Client
}

// NewCatalogueService creates a new CatalogueService. reviewers is the
// closed set of rating keys; a nil or empty slice falls back to the default
// allow-list. mqClient may be nil, in which case no events are published.
func NewCatalogueService(repo repositories.ProductRepository, reviewers []string, mqClient *rabbitmq.Client) *CatalogueService {
	if len(reviewers) == 0 {
		reviewers = models.DefaultReviewers
	}
	return &CatalogueService{
		repo:      repo,
		reviewers: reviewers,
		mqClient:  mqClient,
	}
}

// Reviewers returns the configured reviewer allow-list.
func (s *CatalogueService) Reviewers() []string {
	return s.reviewers
}

// GetAllProducts retrieves all products.
func (s *CatalogueService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *CatalogueService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct creates a new product. Every reviewer key in the allow-list
// is defaulted to 0 independently of which keys the request supplied; the
// creation timestamp is stamped here and never taken from the caller.
func (s *CatalogueService) CreateProduct(ctx context.Context, name string, imageURLs []string, ratings map[string]float64, comment string) (*models.Product, error) {
	if name == "" {
		return nil, &ValidationError{Message: "name is required"}
	}
	if len(imageURLs) == 0 {
		return nil, &ValidationError{Message: "at least one image URL is required"}
	}
	if err := s.validateRatings(ratings); err != nil {
		return nil, err
	}

	fullRatings := make(map[string]float64, len(s.reviewers))
	for _, reviewer := range s.reviewers {
		fullRatings[reviewer] = 0
	}
	for reviewer, value := range ratings {
		fullRatings[reviewer] = value
	}

	product := &models.Product{
		Name:      name,
		ImageURLs: imageURLs,
		Ratings:   fullRatings,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvent("product.created", map[string]interface{}{
		"eventId":   uuid.New().String(),
		"productId": product.ID.Hex(),
		"name":      product.Name,
	})

	return product, nil
}

// UpdateProduct applies a partial update to one product and returns the
// dot-notation names of the fields actually written. Reviewer keys present
// in ratings override that key only; absent keys keep their stored values.
// A non-nil comment replaces the stored comment wholesale (the empty string
// is an explicit clear); a nil comment leaves it untouched.
func (s *CatalogueService) UpdateProduct(ctx context.Context, id string, ratings map[string]float64, comment *string) ([]string, error) {
	if len(ratings) == 0 && comment == nil {
		return nil, &ValidationError{Message: "must provide ratings or comment"}
	}
	if err := s.validateRatings(ratings); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{}, len(ratings)+1)
	updatedFields := make([]string, 0, len(ratings)+1)
	for reviewer, value := range ratings {
		fields["ratings."+reviewer] = value
		updatedFields = append(updatedFields, "ratings."+reviewer)
	}
	sort.Strings(updatedFields)
	if comment != nil {
		fields["comment"] = *comment
		updatedFields = append(updatedFields, "comment")
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	s.publishEvent("product.updated", map[string]interface{}{
		"eventId":       uuid.New().String(),
		"productId":     id,
		"updatedFields": updatedFields,
	})

	return updatedFields, nil
}

// validateRatings checks every supplied reviewer key against the allow-list
// and every value against the 0-10 half-step scale.
func (s *CatalogueService) validateRatings(ratings map[string]float64) error {
	for reviewer, value := range ratings {
		if !s.isReviewer(reviewer) {
			return &ValidationError{Message: fmt.Sprintf("unknown reviewer %q", reviewer)}
		}
		if !models.ValidRating(value) {
			return &ValidationError{Message: fmt.Sprintf("invalid rating %v for reviewer %q: must be 0-10 in 0.5 steps", value, reviewer)}
		}
	}
	return nil
}

func (s *CatalogueService) isReviewer(name string) bool {
	for _, reviewer := range s.reviewers {
		if reviewer == name {
			return true
		}
	}
	return false
}

// publishEvent sends a catalogue event to RabbitMQ. Publication failures are
// logged, never surfaced: the write already succeeded.
func (s *CatalogueService) publishEvent(eventType string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}
	if err := s.mqClient.PublishEvent(eventType, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %v: %v", eventType, payload["productId"], err)
	}
}
