package repositories

import (
	"brocante/internal/models"
)

// AlertRepository defines the interface for fraud alert data access.
// Alerts are append-only apart from resolution; there is no delete.
type AlertRepository interface {
	Create(alert *models.FraudAlert) error
	GetByID(id string) (*models.FraudAlert, error)
	// FindAll returns alerts newest first. A nil resolved filter returns
	// alerts in both states.
	FindAll(resolved *bool) ([]models.FraudAlert, error)
	Update(alert *models.FraudAlert) error
}
