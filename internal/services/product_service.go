package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"brocante/internal/apperrors"
	"brocante/internal/models"
	"brocante/internal/repositories"
	"brocante/pkg/rabbitmq"
)

// ProductService owns the listing lifecycle: creation, seller edits,
// moderation decisions and deletion. Every edit passes the content filter,
// every confirmed price change is appended to the price ledger and handed to
// the fraud service.
type ProductService struct {
	repo          repositories.ProductRepository
	contentFilter *ContentFilter
	fraudService  *FraudService
	categoryStats repositories.CategoryStatsRepository
	mqClient      *rabbitmq.Client

	// Per-product locks serialize mutations so a fraud analysis never reads
	// a half-written ledger tail.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewProductService creates a new ProductService. The RabbitMQ client may be
// nil, in which case moderation events are not published.
func NewProductService(
	repo repositories.ProductRepository,
	contentFilter *ContentFilter,
	fraudService *FraudService,
	categoryStats repositories.CategoryStatsRepository,
	mqClient *rabbitmq.Client,
) *ProductService {
	return &ProductService{
		repo:          repo,
		contentFilter: contentFilter,
		fraudService:  fraudService,
		categoryStats: categoryStats,
		mqClient:      mqClient,
		locks:         make(map[string]*sync.Mutex),
	}
}

// lockProduct acquires the mutation lock for a product ID and returns its
// release function. At most one mutation per product runs at a time.
func (s *ProductService) lockProduct(id string) func() {
	s.locksMu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.locksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Create registers a new listing for a seller. Title and description must
// pass the content filter; on violation no product is persisted. The product
// starts in PENDING with a one-entry price ledger.
func (s *ProductService) Create(sellerID string, product *models.Product) (*models.Product, error) {
	if err := s.contentFilter.Validate(product.Title, "title"); err != nil {
		return nil, err
	}
	if err := s.contentFilter.Validate(product.Description, "description"); err != nil {
		return nil, err
	}

	now := time.Now()
	product.SellerID = sellerID
	product.Status = models.StatusPending
	product.PriceHistory = []models.PricePoint{{Price: product.Price, Date: now}}
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.repo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update applies a seller's partial edit. Only the owning seller may edit.
// Text fields present in the edit are filtered; a differing price appends a
// ledger entry. Any edit, whatever the fields, sends the listing back to
// PENDING: moderation approval is tied to the exact approved content and
// price. A confirmed price change is then analyzed for fraud.
func (s *ProductService) Update(id, callerID string, update models.ProductUpdate) (*models.Product, error) {
	unlock := s.lockProduct(id)
	defer unlock()

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != callerID {
		return nil, apperrors.Forbidden("you can only update your own products")
	}

	if update.Title != nil {
		if err := s.contentFilter.Validate(*update.Title, "title"); err != nil {
			return nil, err
		}
	}
	if update.Description != nil {
		if err := s.contentFilter.Validate(*update.Description, "description"); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	oldPrice := product.Price
	priceChanged := update.Price != nil && *update.Price != product.Price
	if priceChanged {
		product.Price = *update.Price
		product.PriceHistory = append(product.PriceHistory, models.PricePoint{Price: *update.Price, Date: now})
	}

	if update.Title != nil {
		product.Title = *update.Title
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.ShippingCost != nil {
		product.ShippingCost = *update.ShippingCost
	}
	if update.ImageURLs != nil {
		product.ImageURLs = update.ImageURLs
	}
	if update.CategoryID != nil {
		product.CategoryID = *update.CategoryID
	}
	if update.Condition != nil {
		product.Condition = *update.Condition
	}

	// Any edit invalidates prior moderation and forces re-review.
	product.Status = models.StatusPending
	product.UpdatedAt = now

	if err := s.repo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if priceChanged {
		s.analyzePriceChange(product, oldPrice)
	}

	return product, nil
}

// analyzePriceChange feeds a confirmed price change to the fraud rules.
// Analysis failures do not undo the update; they are logged and the alert
// is simply missed.
func (s *ProductService) analyzePriceChange(product *models.Product, oldPrice float64) {
	if s.fraudService == nil {
		return
	}

	var categoryAvg float64
	if s.categoryStats != nil && product.CategoryID != "" {
		avg, err := s.categoryStats.AveragePrice(product.CategoryID)
		if err != nil {
			log.Printf("Failed to get average price for category %s: %v", product.CategoryID, err)
		} else {
			categoryAvg = avg
		}
	}

	alert, err := s.fraudService.AnalyzePriceChange(PriceChangeEvent{
		ProductID:        product.ID,
		SellerID:         product.SellerID,
		NewPrice:         product.Price,
		OldPrice:         oldPrice,
		CategoryAvgPrice: categoryAvg,
		PriceHistory:     product.PriceHistory,
	})
	if err != nil {
		log.Printf("Fraud analysis failed for product %s: %v", product.ID, err)
		return
	}
	if alert != nil {
		log.Printf("Fraud alert %s (%s) raised for product %s", alert.ID, alert.Type, product.ID)
	}
}

// UpdateStatus records a moderation decision. Only APPROVED and REJECTED are
// accepted; repeating a decision on an already-moderated listing is allowed.
// There is no ownership check: any moderator may decide any listing.
func (s *ProductService) UpdateStatus(id string, status models.ProductStatus) (*models.Product, error) {
	if !status.IsModerationStatus() {
		return nil, fmt.Errorf("invalid moderation status: %s", status)
	}

	unlock := s.lockProduct(id)
	defer unlock()

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	product.Status = status
	product.UpdatedAt = time.Now()
	if err := s.repo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product status: %w", err)
	}

	s.publishModerationEvent(product)
	return product, nil
}

// MarkSold transitions a listing to SOLD. Called when the order subsystem
// reports a completed sale.
func (s *ProductService) MarkSold(id string) error {
	unlock := s.lockProduct(id)
	defer unlock()

	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	product.Status = models.StatusSold
	product.UpdatedAt = time.Now()
	if err := s.repo.Update(product); err != nil {
		return fmt.Errorf("failed to mark product %s as sold: %w", id, err)
	}
	return nil
}

// Delete permanently removes a listing. Only the owning seller may delete;
// the price ledger goes with the product, there is no archival.
func (s *ProductService) Delete(id, callerID string) error {
	unlock := s.lockProduct(id)
	defer unlock()

	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product.SellerID != callerID {
		return apperrors.Forbidden("you can only delete your own products")
	}

	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// FindByID retrieves a single product.
func (s *ProductService) FindByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// FindPending returns the moderation queue, oldest first.
func (s *ProductService) FindPending() ([]models.Product, error) {
	return s.repo.FindPending()
}

// FindPublic returns the approved catalog, optionally filtered.
func (s *ProductService) FindPublic(filter repositories.ProductFilter) ([]models.Product, error) {
	return s.repo.FindPublic(filter)
}

// FindBySeller returns a seller's own products in every status.
func (s *ProductService) FindBySeller(sellerID string) ([]models.Product, error) {
	return s.repo.FindBySeller(sellerID)
}

// publishModerationEvent notifies downstream consumers (notifications, search
// index) of a moderation decision. Fire-and-forget.
func (s *ProductService) publishModerationEvent(product *models.Product) {
	if s.mqClient == nil {
		return
	}

	body, err := json.Marshal(map[string]any{
		"productID": product.ID,
		"sellerID":  product.SellerID,
		"status":    product.Status,
	})
	if err != nil {
		log.Printf("Failed to marshal moderation event: %v", err)
		return
	}
	routingKey := "listing." + string(product.Status)
	if err := s.mqClient.Publish("marketplace", routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish moderation event for product %s: %v", product.ID, err)
	}
}
