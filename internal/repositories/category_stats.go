package repositories

import (
	"fmt"
	"sync"

	"brocante/internal/models"

	"gorm.io/gorm"
)

// CategoryStatsRepository supplies the category-average-price figure consumed
// by the fraud rules. The category registry itself lives elsewhere; only this
// aggregate is needed here.
type CategoryStatsRepository interface {
	// AveragePrice returns the mean price of approved products in the
	// category, or 0 when the category has none.
	AveragePrice(categoryID string) (float64, error)
}

// GORMCategoryStatsRepository computes category averages from the products table.
type GORMCategoryStatsRepository struct {
	db *gorm.DB
}

// NewGORMCategoryStatsRepository creates a new instance of GORMCategoryStatsRepository.
func NewGORMCategoryStatsRepository(db *gorm.DB) *GORMCategoryStatsRepository {
	return &GORMCategoryStatsRepository{
		db: db,
	}
}

// AveragePrice returns the mean approved price for the category.
func (r *GORMCategoryStatsRepository) AveragePrice(categoryID string) (float64, error) {
	var avg *float64
	err := r.db.Model(&models.Product{}).
		Where("category_id = ? AND status = ?", categoryID, models.StatusApproved).
		Select("AVG(price)").
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute average price for category %s: %w", categoryID, err)
	}
	if avg == nil {
		// No approved products in the category yet.
		return 0, nil
	}
	return *avg, nil
}

// MockCategoryStatsRepository is an in-memory implementation keyed by category ID.
type MockCategoryStatsRepository struct {
	averages map[string]float64
	mu       sync.RWMutex
}

// NewMockCategoryStatsRepository creates a new instance of MockCategoryStatsRepository.
func NewMockCategoryStatsRepository() *MockCategoryStatsRepository {
	return &MockCategoryStatsRepository{
		averages: make(map[string]float64),
	}
}

// SetAverage records the average price reported for a category.
func (r *MockCategoryStatsRepository) SetAverage(categoryID string, avg float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.averages[categoryID] = avg
}

// AveragePrice returns the recorded average, or 0 for unknown categories.
func (r *MockCategoryStatsRepository) AveragePrice(categoryID string) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.averages[categoryID], nil
}
