package repositories

import (
	"sort"
	"strings"
	"sync"

	"brocante/internal/apperrors"
	"brocante/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[product.ID]
	if !ok {
		return apperrors.NotFound("product", product.ID)
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return apperrors.NotFound("product", id)
	}
	delete(r.products, id)
	return nil
}

// FindPending returns all pending products, oldest first.
func (r *MockProductRepository) FindPending() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := make([]models.Product, 0)
	for _, p := range r.products {
		if p.Status == models.StatusPending {
			pending = append(pending, p)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}

// FindPublic returns approved products matching the filter, newest first.
func (r *MockProductRepository) FindPublic(filter ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	matches := make([]models.Product, 0)
	for _, p := range r.products {
		if p.Status != models.StatusApproved {
			continue
		}
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		matches = append(matches, p)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// FindBySeller returns a seller's products in every status.
func (r *MockProductRepository) FindBySeller(sellerID string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mine := make([]models.Product, 0)
	for _, p := range r.products {
		if p.SellerID == sellerID {
			mine = append(mine, p)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	return mine, nil
}
