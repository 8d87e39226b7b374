package repositories

import (
	"fmt"

	"brocante/internal/apperrors"
	"brocante/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product) // Save will update all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound for an update that
		// matched nothing, so we check RowsAffected.
		return apperrors.NotFound("product", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// FindPending retrieves all pending products, oldest first.
func (r *GORMProductRepository) FindPending() ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Where("status = ?", models.StatusPending).
		Order("created_at ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending products: %w", err)
	}
	return products, nil
}

// FindPublic retrieves approved products matching the filter, newest first.
func (r *GORMProductRepository) FindPublic(filter ProductFilter) ([]models.Product, error) {
	query := r.db.Where("status = ?", models.StatusApproved)
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find public products: %w", err)
	}
	return products, nil
}

// FindBySeller retrieves a seller's products in every status.
func (r *GORMProductRepository) FindBySeller(sellerID string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products for seller %s: %w", sellerID, err)
	}
	return products, nil
}
