package repositories

import (
	"fmt"

	"brocante/internal/apperrors"
	"brocante/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAlertRepository is a GORM implementation of AlertRepository.
type GORMAlertRepository struct {
	db *gorm.DB
}

// NewGORMAlertRepository creates a new instance of GORMAlertRepository.
func NewGORMAlertRepository(db *gorm.DB) *GORMAlertRepository {
	return &GORMAlertRepository{
		db: db,
	}
}

// Create creates a new alert in the database.
func (r *GORMAlertRepository) Create(alert *models.FraudAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if err := r.db.Create(alert).Error; err != nil {
		return fmt.Errorf("failed to create fraud alert: %w", err)
	}
	return nil
}

// GetByID retrieves an alert by its ID from the database.
func (r *GORMAlertRepository) GetByID(id string) (*models.FraudAlert, error) {
	var alert models.FraudAlert
	if err := r.db.First(&alert, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("alert", id)
		}
		return nil, fmt.Errorf("failed to get alert by ID %s: %w", id, err)
	}
	return &alert, nil
}

// FindAll retrieves alerts newest first, optionally filtered by resolution state.
func (r *GORMAlertRepository) FindAll(resolved *bool) ([]models.FraudAlert, error) {
	query := r.db.Order("created_at DESC")
	if resolved != nil {
		query = query.Where("is_resolved = ?", *resolved)
	}

	var alerts []models.FraudAlert
	if err := query.Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to find fraud alerts: %w", err)
	}
	return alerts, nil
}

// Update updates an existing alert in the database.
func (r *GORMAlertRepository) Update(alert *models.FraudAlert) error {
	res := r.db.Save(alert)
	if res.Error != nil {
		return fmt.Errorf("failed to update alert: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("alert", alert.ID)
	}
	return nil
}
