package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"catalogue/internal/models"
	"catalogue/internal/repositories"
)

func TestSeedProducts(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	seedProducts(repo, models.DefaultReviewers)

	products, err := repo.GetAll(context.Background())
	assert.NoError(t, err)
	assert.NotEmpty(t, products)
	for _, p := range products {
		assert.False(t, p.ID.IsZero())
		assert.NotEmpty(t, p.ImageURLs)
		for _, reviewer := range models.DefaultReviewers {
			value, ok := p.Ratings[reviewer]
			assert.True(t, ok, "reviewer %s missing from %s", reviewer, p.Name)
			assert.Equal(t, 0.0, value)
		}
	}
}

func TestSeedUsers(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	seedUsers(repo, models.DefaultReviewers)

	users, err := repo.GetAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, users, len(models.DefaultReviewers))

	user, err := repo.GetByUsername(context.Background(), "naim")
	assert.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("changeme")))
}
