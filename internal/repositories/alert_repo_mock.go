package repositories

import (
	"sort"
	"sync"

	"brocante/internal/apperrors"
	"brocante/internal/models"

	"github.com/google/uuid"
)

// MockAlertRepository is an in-memory implementation of AlertRepository.
type MockAlertRepository struct {
	alerts map[string]models.FraudAlert
	mu     sync.RWMutex
}

// NewMockAlertRepository creates a new instance of MockAlertRepository.
func NewMockAlertRepository() *MockAlertRepository {
	return &MockAlertRepository{
		alerts: make(map[string]models.FraudAlert),
	}
}

// Create adds a new alert. Repeated triggers for the same product create
// separate rows on purpose; there is no deduplication.
func (r *MockAlertRepository) Create(alert *models.FraudAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	r.alerts[alert.ID] = *alert
	return nil
}

// GetByID returns an alert by its ID.
func (r *MockAlertRepository) GetByID(id string) (*models.FraudAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alert, ok := r.alerts[id]
	if !ok {
		return nil, apperrors.NotFound("alert", id)
	}
	return &alert, nil
}

// FindAll returns alerts newest first, optionally filtered by resolution state.
func (r *MockAlertRepository) FindAll(resolved *bool) ([]models.FraudAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]models.FraudAlert, 0, len(r.alerts))
	for _, a := range r.alerts {
		if resolved != nil && a.IsResolved != *resolved {
			continue
		}
		matches = append(matches, a)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// Update modifies an existing alert.
func (r *MockAlertRepository) Update(alert *models.FraudAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.alerts[alert.ID]
	if !ok {
		return apperrors.NotFound("alert", alert.ID)
	}
	r.alerts[alert.ID] = *alert
	return nil
}
