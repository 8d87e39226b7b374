package repositories_test

import (
	"errors"
	"testing"
	"time"

	"brocante/internal/apperrors"
	"brocante/internal/models"
	"brocante/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func seedProduct(t *testing.T, repo *repositories.MockProductRepository, p models.Product) models.Product {
	t.Helper()
	err := repo.Create(&p)
	assert.NoError(t, err)
	return p
}

func TestMockProductRepository_CRUD(t *testing.T) {
	repo := repositories.NewMockProductRepository()

	created := seedProduct(t, repo, models.Product{
		Title:    "Art deco lamp",
		SellerID: "seller-1",
		Status:   models.StatusPending,
	})
	assert.NotEmpty(t, created.ID)

	got, err := repo.GetByID(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Art deco lamp", got.Title)

	got.Title = "Art deco lamp, restored"
	assert.NoError(t, repo.Update(got))
	got, err = repo.GetByID(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Art deco lamp, restored", got.Title)

	assert.NoError(t, repo.Delete(created.ID))
	_, err = repo.GetByID(created.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(created.ID), apperrors.ErrNotFound))
	assert.True(t, errors.Is(repo.Update(got), apperrors.ErrNotFound))
}

func TestMockProductRepository_FindPending_FIFO(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	now := time.Now()

	second := seedProduct(t, repo, models.Product{Title: "Second", Status: models.StatusPending, CreatedAt: now})
	first := seedProduct(t, repo, models.Product{Title: "First", Status: models.StatusPending, CreatedAt: now.Add(-time.Hour)})
	seedProduct(t, repo, models.Product{Title: "Approved", Status: models.StatusApproved, CreatedAt: now.Add(-2 * time.Hour)})

	pending, err := repo.FindPending()
	assert.NoError(t, err)
	assert.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
}

func TestMockProductRepository_FindPublic(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	now := time.Now()

	lamp := seedProduct(t, repo, models.Product{
		Title: "Art deco LAMP", Description: "Brass base", Status: models.StatusApproved,
		CategoryID: "cat-deco", CreatedAt: now,
	})
	vase := seedProduct(t, repo, models.Product{
		Title: "Porcelain vase", Description: "With a lamp motif", Status: models.StatusApproved,
		CategoryID: "cat-ceramics", CreatedAt: now.Add(-time.Minute),
	})
	seedProduct(t, repo, models.Product{
		Title: "Pending lamp", Status: models.StatusPending, CategoryID: "cat-deco", CreatedAt: now,
	})

	// Only approved products surface, newest first
	all, err := repo.FindPublic(repositories.ProductFilter{})
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, lamp.ID, all[0].ID)

	// Category filter
	deco, err := repo.FindPublic(repositories.ProductFilter{CategoryID: "cat-deco"})
	assert.NoError(t, err)
	assert.Len(t, deco, 1)
	assert.Equal(t, lamp.ID, deco[0].ID)

	// Case-insensitive search across title OR description
	found, err := repo.FindPublic(repositories.ProductFilter{Search: "lamp"})
	assert.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.FindPublic(repositories.ProductFilter{Search: "PORCELAIN"})
	assert.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, vase.ID, found[0].ID)

	found, err = repo.FindPublic(repositories.ProductFilter{Search: "no such thing"})
	assert.NoError(t, err)
	assert.Empty(t, found)
}

func TestMockProductRepository_FindBySeller(t *testing.T) {
	repo := repositories.NewMockProductRepository()

	seedProduct(t, repo, models.Product{Title: "Mine, pending", SellerID: "seller-1", Status: models.StatusPending})
	seedProduct(t, repo, models.Product{Title: "Mine, rejected", SellerID: "seller-1", Status: models.StatusRejected})
	seedProduct(t, repo, models.Product{Title: "Someone else's", SellerID: "seller-2", Status: models.StatusApproved})

	mine, err := repo.FindBySeller("seller-1")
	assert.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, p := range mine {
		assert.Equal(t, "seller-1", p.SellerID)
	}
}
