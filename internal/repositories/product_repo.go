package repositories

import (
	"brocante/internal/models"
)

// ProductFilter narrows public catalog queries. Zero values mean "no filter".
// Search matches a case-insensitive substring of title or description.
type ProductFilter struct {
	CategoryID string
	Search     string
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	// FindPending returns all pending products, oldest first (FIFO moderation queue).
	FindPending() ([]models.Product, error)
	// FindPublic returns approved products matching the filter, newest first.
	FindPublic(filter ProductFilter) ([]models.Product, error)
	// FindBySeller returns a seller's products in every status.
	FindBySeller(sellerID string) ([]models.Product, error)
}
