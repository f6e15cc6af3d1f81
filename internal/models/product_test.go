package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catalogue/internal/models"
)

func TestValidRating(t *testing.T) {
	valid := []float64{0, 0.5, 1, 5.5, 9.5, 10}
	for _, v := range valid {
		assert.True(t, models.ValidRating(v), "expected %v to be valid", v)
	}

	invalid := []float64{-0.5, -1, 10.5, 11, 3.3, 7.25}
	for _, v := range invalid {
		assert.False(t, models.ValidRating(v), "expected %v to be invalid", v)
	}
}

func TestProductAverageRating_ExcludesUnratedSlots(t *testing.T) {
	product := models.Product{
		Ratings: map[string]float64{"nifar": 0, "afia": 8, "sijil": 0, "naim": 6},
	}
	assert.Equal(t, 7.0, product.AverageRating())
}

func TestProductAverageRating_NoRatings(t *testing.T) {
	product := models.Product{
		Ratings: map[string]float64{"nifar": 0, "afia": 0, "sijil": 0, "naim": 0},
	}
	assert.Equal(t, 0.0, product.AverageRating())

	empty := models.Product{}
	assert.Equal(t, 0.0, empty.AverageRating())
}

func TestProductAverageRating_HalfSteps(t *testing.T) {
	product := models.Product{
		Ratings: map[string]float64{"nifar": 7.5, "afia": 8.5},
	}
	assert.Equal(t, 8.0, product.AverageRating())
}
