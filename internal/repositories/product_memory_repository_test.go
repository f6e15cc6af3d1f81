package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"catalogue/internal/models"
	"catalogue/internal/repositories"
)

func newProduct(name string) *models.Product {
	return &models.Product{
		Name:      name,
		ImageURLs: []string{"http://x/1.png"},
		Ratings:   map[string]float64{"nifar": 0, "afia": 0, "sijil": 0, "naim": 0},
	}
}

func TestMemoryProductRepository_CreateAssignsUniqueIDs(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		p := newProduct("Widget")
		assert.NoError(t, repo.Create(ctx, p))
		assert.False(t, p.ID.IsZero())
		assert.False(t, p.CreatedAt.IsZero())

		id := p.ID.Hex()
		assert.False(t, seen[id], "id %s assigned twice", id)
		seen[id] = true
	}
}

func TestMemoryProductRepository_CreateDuplicate(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	ctx := context.Background()

	p := newProduct("Widget")
	p.ID = primitive.NewObjectID()
	assert.NoError(t, repo.Create(ctx, p))

	dup := newProduct("Widget Again")
	dup.ID = p.ID
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, repositories.ErrDuplicateID)
}

func TestMemoryProductRepository_GetByID(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	ctx := context.Background()

	p := newProduct("Widget")
	assert.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)

	_, err = repo.GetByID(ctx, "not-a-hex-id")
	assert.ErrorIs(t, err, repositories.ErrInvalidID)

	_, err = repo.GetByID(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMemoryProductRepository_GetAllInsertionOrder(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	ctx := context.Background()

	names := []string{"First", "Second", "Third"}
	for _, name := range names {
		assert.NoError(t, repo.Create(ctx, newProduct(name)))
	}

	products, err := repo.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, products, 3)
	for i, name := range names {
		assert.Equal(t, name, products[i].Name)
	}
}

// Regression: setting one reviewer key must leave the other reviewer keys
// exactly as stored, not reset them.
func TestMemoryProductRepository_UpdateFieldsMergesPerKey(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	ctx := context.Background()

	p := newProduct("Widget")
	p.Ratings = map[string]float64{"nifar": 3, "afia": 8, "sijil": 0, "naim": 6}
	assert.NoError(t, repo.Create(ctx, p))

	err := repo.UpdateFields(ctx, p.ID.Hex(), map[string]interface{}{"ratings.naim": 9.0})
	assert.NoError(t, err)

	got, err := repo.GetByID(ctx, p.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, map[string]float64{"nifar": 3, "afia": 8, "sijil": 0, "naim": 9}, got.Ratings)
}

func TestMemoryProductRepository_UpdateFieldsComment(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	ctx := context.Background()

	p := newProduct("Widget")
	p.Comment = "original"
	assert.NoError(t, repo.Create(ctx, p))

	// Updating ratings only must not touch the comment.
	assert.NoError(t, repo.UpdateFields(ctx, p.ID.Hex(), map[string]interface{}{"ratings.afia": 5.0}))
	got, err := repo.GetByID(ctx, p.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, "original", got.Comment)

	// An explicit empty comment clears it.
	assert.NoError(t, repo.UpdateFields(ctx, p.ID.Hex(), map[string]interface{}{"comment": ""}))
	got, err = repo.GetByID(ctx, p.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, "", got.Comment)
}

func TestMemoryProductRepository_UpdateFieldsErrors(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	ctx := context.Background()

	err := repo.UpdateFields(ctx, "bogus", map[string]interface{}{"comment": "x"})
	assert.ErrorIs(t, err, repositories.ErrInvalidID)

	err = repo.UpdateFields(ctx, primitive.NewObjectID().Hex(), map[string]interface{}{"comment": "x"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMemoryProductRepository_ReturnsCopies(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	ctx := context.Background()

	p := newProduct("Widget")
	assert.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID.Hex())
	assert.NoError(t, err)
	got.Ratings["naim"] = 10

	fresh, err := repo.GetByID(ctx, p.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, 0.0, fresh.Ratings["naim"])
}
