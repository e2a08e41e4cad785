package catalog

import (
	"context"
	"testing"

	"github.com/angelmondragon/retailpos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, repo *Repository, businessID uuid.UUID, branchID *uuid.UUID, name, category string) models.Product {
	t.Helper()
	cat := category
	p := models.Product{
		ID:            uuid.New(),
		BusinessID:    businessID,
		BranchID:      branchID,
		Name:          name,
		Price:         decimal.RequireFromString("1.99"),
		StockQuantity: 10,
		Category:      &cat,
	}
	require.NoError(t, repo.db.Create(&p).Error)
	return p
}

func TestGetProduct(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	seeded := seedProduct(t, repo, uuid.New(), nil, "Apples", "produce")

	got, err := repo.GetProduct(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apples", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("1.99")))

	_, err = repo.GetProduct(context.Background(), uuid.New())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestListProductsBranchScope(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	business := uuid.New()
	branchA := uuid.New()
	branchB := uuid.New()

	seedProduct(t, repo, business, nil, "Bread", "bakery")
	seedProduct(t, repo, business, &branchA, "Apples", "produce")
	seedProduct(t, repo, business, &branchB, "Cheese", "dairy")
	seedProduct(t, repo, uuid.New(), nil, "Other business", "dairy")

	all, err := repo.ListProducts(context.Background(), business, nil, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apples", "Bread", "Cheese"}, names(all))

	scoped, err := repo.ListProducts(context.Background(), business, &branchA, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apples", "Bread"}, names(scoped))

	filtered, err := repo.ListProducts(context.Background(), business, nil, Filter{Category: "dairy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cheese"}, names(filtered))

	searched, err := repo.ListProducts(context.Background(), business, nil, Filter{Query: "APP"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apples"}, names(searched))
}

func TestGetProducts(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	business := uuid.New()
	a := seedProduct(t, repo, business, nil, "A", "x")
	b := seedProduct(t, repo, business, nil, "B", "x")

	got, err := repo.GetProducts(context.Background(), []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "B", got[b.ID].Name)

	empty, err := repo.GetProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}
