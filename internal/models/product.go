package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultReviewers is the reviewer allow-list used when no REVIEWERS
// configuration is supplied.
var DefaultReviewers = []string{"nifar", "afia", "sijil", "naim"}

// Product represents a catalogue entry and its per-reviewer ratings.
type Product struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	ImageURLs []string           `json:"imageUrls" bson:"image_urls"`
	Ratings   map[string]float64 `json:"ratings" bson:"ratings"`
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// ValidRating reports whether v is an allowed rating value: 0 to 10
// inclusive, in half-point steps. 0 means "not rated".
func ValidRating(v float64) bool {
	if v < 0 || v > 10 {
		return false
	}
	return v*2 == math.Trunc(v*2)
}

// AverageRating returns the mean of the non-zero rating slots. Unrated
// slots are excluded, so a product with no ratings averages 0, never NaN.
func (p *Product) AverageRating() float64 {
	var sum float64
	var count int
	for _, v := range p.Ratings {
		if v == 0 {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
