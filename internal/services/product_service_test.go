package services_test

import (
	"errors"
	"testing"

	"brocante/internal/apperrors"
	"brocante/internal/models"
	"brocante/internal/repositories"
	"brocante/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) FindPending() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) FindPublic(filter repositories.ProductFilter) ([]models.Product, error) {
	args := m.Called(filter)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySeller(sellerID string) ([]models.Product, error) {
	args := m.Called(sellerID)
	return args.Get(0).([]models.Product), args.Error(1)
}

// newProductService wires a ProductService over the given repository with the
// fraud pipeline disabled.
func newProductService(repo repositories.ProductRepository) *services.ProductService {
	return services.NewProductService(repo, services.NewContentFilter(), nil, nil, nil)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestProductService_Create(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.Create("seller-1", &models.Product{
		Title:       "Tintin figurine from the seventies",
		Description: "Rare collector piece in mint condition",
		Price:       120,
		CategoryID:  "cat-figurines",
	})

	assert.NoError(t, err)
	assert.Equal(t, "seller-1", product.SellerID)
	assert.Equal(t, models.StatusPending, product.Status)
	assert.Len(t, product.PriceHistory, 1)
	assert.Equal(t, 120.0, product.PriceHistory[0].Price)
	assert.False(t, product.CreatedAt.IsZero())
	mockRepo.AssertExpectations(t)
}

func TestProductService_Create_ContentViolation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	// Nothing may be persisted when the filter rejects a field.
	product, err := service.Create("seller-1", &models.Product{
		Title:       "Rare stamp collection",
		Description: "Write to me at stamps@mail.com for a better deal",
		Price:       50,
	})

	assert.Error(t, err)
	assert.Nil(t, product)
	var violation *apperrors.ContentViolationError
	assert.True(t, errors.As(err, &violation))
	assert.Equal(t, "description", violation.Field)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_Update_Forbidden(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	existing := &models.Product{
		ID:       "prod-1",
		SellerID: "seller-1",
		Title:    "Vintage comic",
		Price:    40,
		Status:   models.StatusApproved,
	}
	// An intruder who is a perfectly valid seller of other products still
	// gets Forbidden here.
	mockRepo.On("GetByID", "prod-1").Return(existing, nil).Once()

	_, err := service.Update("prod-1", "seller-2", models.ProductUpdate{Title: strPtr("Stolen comic")})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestProductService_Update_ResetsStatusToPending(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	existing := &models.Product{
		ID:           "prod-1",
		SellerID:     "seller-1",
		Title:        "Vintage comic",
		Description:  "Good condition",
		Price:        40,
		Status:       models.StatusApproved,
		PriceHistory: []models.PricePoint{{Price: 40}},
	}
	mockRepo.On("GetByID", "prod-1").Return(existing, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	// A non-price edit still invalidates the previous approval.
	updated, err := service.Update("prod-1", "seller-1", models.ProductUpdate{
		Condition: strPtr("bon état"),
	})

	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Len(t, updated.PriceHistory, 1) // no price change, no new ledger entry
	mockRepo.AssertExpectations(t)
}

func TestProductService_Update_PriceChangeAppendsToLedger(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	existing := &models.Product{
		ID:           "prod-1",
		SellerID:     "seller-1",
		Title:        "Vintage comic",
		Description:  "Good condition",
		Price:        40,
		Status:       models.StatusApproved,
		PriceHistory: []models.PricePoint{{Price: 40}},
	}
	mockRepo.On("GetByID", "prod-1").Return(existing, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	updated, err := service.Update("prod-1", "seller-1", models.ProductUpdate{
		Price: floatPtr(55),
	})

	assert.NoError(t, err)
	assert.Equal(t, 55.0, updated.Price)
	assert.Len(t, updated.PriceHistory, 2)
	assert.Equal(t, 55.0, updated.PriceHistory[len(updated.PriceHistory)-1].Price)
	assert.Equal(t, models.StatusPending, updated.Status)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Update_SamePriceDoesNotGrowLedger(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	existing := &models.Product{
		ID:           "prod-1",
		SellerID:     "seller-1",
		Price:        40,
		Status:       models.StatusApproved,
		PriceHistory: []models.PricePoint{{Price: 40}},
	}
	mockRepo.On("GetByID", "prod-1").Return(existing, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	updated, err := service.Update("prod-1", "seller-1", models.ProductUpdate{
		Price: floatPtr(40),
	})

	assert.NoError(t, err)
	assert.Len(t, updated.PriceHistory, 1)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Update_ContentViolationOnUpdatedField(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	existing := &models.Product{
		ID:       "prod-1",
		SellerID: "seller-1",
		Price:    40,
		Status:   models.StatusApproved,
	}
	mockRepo.On("GetByID", "prod-1").Return(existing, nil).Once()

	_, err := service.Update("prod-1", "seller-1", models.ProductUpdate{
		Description: strPtr("reach me at 06 12 34 56 78"),
	})

	assert.Error(t, err)
	var violation *apperrors.ContentViolationError
	assert.True(t, errors.As(err, &violation))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestProductService_Update_PriceJumpRaisesFraudAlert(t *testing.T) {
	// Real in-memory repositories so the whole pipeline runs.
	productRepo := repositories.NewMockProductRepository()
	alertRepo := repositories.NewMockAlertRepository()
	stats := repositories.NewMockCategoryStatsRepository()
	stats.SetAverage("cat-1", 100)

	fraudService := services.NewFraudService(alertRepo, nil)
	service := services.NewProductService(productRepo, services.NewContentFilter(), fraudService, stats, nil)

	product, err := service.Create("seller-1", &models.Product{
		Title:       "Porcelain doll",
		Description: "Late 19th century",
		Price:       100,
		CategoryID:  "cat-1",
	})
	assert.NoError(t, err)

	// Doubling the price trips the rapid-price-change rule (ratio vs the
	// category average stays at 2x, so the price-anomaly rule is quiet).
	_, err = service.Update(product.ID, "seller-1", models.ProductUpdate{Price: floatPtr(200)})
	assert.NoError(t, err)

	alerts, err := alertRepo.FindAll(nil)
	assert.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, models.AlertRapidPriceChange, alerts[0].Type)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, product.ID, alerts[0].ProductID)
	assert.Equal(t, "seller-1", alerts[0].SellerID)
}

func TestProductService_Update_AnomalousPriceShortCircuitsRapidRule(t *testing.T) {
	productRepo := repositories.NewMockProductRepository()
	alertRepo := repositories.NewMockAlertRepository()
	stats := repositories.NewMockCategoryStatsRepository()
	stats.SetAverage("cat-1", 100)

	fraudService := services.NewFraudService(alertRepo, nil)
	service := services.NewProductService(productRepo, services.NewContentFilter(), fraudService, stats, nil)

	product, err := service.Create("seller-1", &models.Product{
		Title:       "Porcelain doll",
		Description: "Late 19th century",
		Price:       100,
		CategoryID:  "cat-1",
	})
	assert.NoError(t, err)

	// 1100 is 11x the category average AND a 1000% jump; exactly one alert
	// results and it is the price anomaly.
	_, err = service.Update(product.ID, "seller-1", models.ProductUpdate{Price: floatPtr(1100)})
	assert.NoError(t, err)

	alerts, err := alertRepo.FindAll(nil)
	assert.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, models.AlertPriceAnomaly, alerts[0].Type)
}

func TestProductService_UpdateStatus(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	existing := &models.Product{ID: "prod-1", SellerID: "seller-1", Status: models.StatusPending}
	mockRepo.On("GetByID", "prod-1").Return(existing, nil).Twice()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Twice()

	approved, err := service.UpdateStatus("prod-1", models.StatusApproved)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	// Re-moderating an already-moderated listing is allowed.
	rejected, err := service.UpdateStatus("prod-1", models.StatusRejected)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateStatus_RejectsNonModerationStatus(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	_, err := service.UpdateStatus("prod-1", models.StatusSold)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid moderation status")
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestProductService_Delete(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	existing := &models.Product{ID: "prod-1", SellerID: "seller-1"}

	// Non-owner is rejected
	mockRepo.On("GetByID", "prod-1").Return(existing, nil).Once()
	err := service.Delete("prod-1", "seller-2")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything)

	// Owner succeeds
	mockRepo.On("GetByID", "prod-1").Return(existing, nil).Once()
	mockRepo.On("Delete", "prod-1").Return(nil).Once()
	err = service.Delete("prod-1", "seller-1")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Delete_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(mockRepo)

	mockRepo.On("GetByID", "missing").Return(nil, apperrors.NotFound("product", "missing")).Once()

	err := service.Delete("missing", "seller-1")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
