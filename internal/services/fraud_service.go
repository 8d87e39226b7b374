package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"brocante/internal/models"
	"brocante/internal/repositories"
	"brocante/pkg/rabbitmq"
)

// RuleResult is the outcome of a single fraud rule evaluation.
type RuleResult struct {
	IsAnomaly bool
	Severity  models.AlertSeverity
	Reason    string
}

// CheckPriceAnomaly flags prices far above the category average.
// A zero (or negative) category average makes the ratio undefined; the rule
// treats that case as no anomaly instead of dividing by zero.
func CheckPriceAnomaly(price, categoryAvgPrice float64) RuleResult {
	if categoryAvgPrice <= 0 {
		return RuleResult{}
	}

	ratio := price / categoryAvgPrice
	if ratio > 10 {
		return RuleResult{
			IsAnomaly: true,
			Severity:  models.SeverityHigh,
			Reason:    fmt.Sprintf("Price %.1fx above the category average", ratio),
		}
	}
	if ratio > 5 {
		return RuleResult{
			IsAnomaly: true,
			Severity:  models.SeverityMedium,
			Reason:    fmt.Sprintf("Price %.1fx above the category average", ratio),
		}
	}
	return RuleResult{}
}

// CheckRapidPriceChange flags a jump of more than 50% between the last two
// entries of the price ledger. Fewer than two entries means nothing to compare.
func CheckRapidPriceChange(priceHistory []models.PricePoint) RuleResult {
	if len(priceHistory) < 2 {
		return RuleResult{}
	}

	latest := priceHistory[len(priceHistory)-1]
	previous := priceHistory[len(priceHistory)-2]
	changePercent := math.Abs(latest.Price-previous.Price) / previous.Price * 100

	if changePercent > 50 {
		return RuleResult{
			IsAnomaly: true,
			Severity:  models.SeverityHigh,
			Reason:    fmt.Sprintf("Price change of %.0f%% detected", changePercent),
		}
	}
	return RuleResult{}
}

// PriceChangeEvent describes a confirmed price change to analyze.
type PriceChangeEvent struct {
	ProductID        string              `json:"productId"`
	SellerID         string              `json:"sellerId"`
	NewPrice         float64             `json:"newPrice"`
	OldPrice         float64             `json:"oldPrice"`
	CategoryAvgPrice float64             `json:"categoryAvgPrice"`
	PriceHistory     []models.PricePoint `json:"priceHistory"`
}

// FraudService evaluates price-change events against the fraud rules and
// manages the resulting alerts.
type FraudService struct {
	alertRepo repositories.AlertRepository
	mqClient  *rabbitmq.Client
}

// NewFraudService creates a new FraudService. The RabbitMQ client may be nil,
// in which case alert events are simply not published.
func NewFraudService(alertRepo repositories.AlertRepository, mqClient *rabbitmq.Client) *FraudService {
	return &FraudService{
		alertRepo: alertRepo,
		mqClient:  mqClient,
	}
}

// AnalyzePriceChange runs the price-anomaly rule first and, only when it does
// not fire, the rapid-price-change rule. At most one alert is raised per
// event; a clean event yields (nil, nil).
func (s *FraudService) AnalyzePriceChange(event PriceChangeEvent) (*models.FraudAlert, error) {
	if result := CheckPriceAnomaly(event.NewPrice, event.CategoryAvgPrice); result.IsAnomaly {
		return s.CreateAlert(&models.FraudAlert{
			Type:        models.AlertPriceAnomaly,
			Severity:    result.Severity,
			ProductID:   event.ProductID,
			SellerID:    event.SellerID,
			Description: result.Reason,
			Details: map[string]any{
				"newPrice":    event.NewPrice,
				"categoryAvg": event.CategoryAvgPrice,
			},
		})
	}

	if result := CheckRapidPriceChange(event.PriceHistory); result.IsAnomaly {
		return s.CreateAlert(&models.FraudAlert{
			Type:        models.AlertRapidPriceChange,
			Severity:    result.Severity,
			ProductID:   event.ProductID,
			SellerID:    event.SellerID,
			Description: result.Reason,
			Details: map[string]any{
				"newPrice": event.NewPrice,
				"oldPrice": event.OldPrice,
			},
		})
	}

	return nil, nil
}

// CreateAlert persists a new unresolved alert and publishes a notification
// event. Repeated triggers for the same product produce repeated alerts; that
// is intentional.
func (s *FraudService) CreateAlert(alert *models.FraudAlert) (*models.FraudAlert, error) {
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	if err := s.alertRepo.Create(alert); err != nil {
		return nil, fmt.Errorf("failed to create fraud alert: %w", err)
	}

	s.publishAlertEvent(alert)
	return alert, nil
}

// FindAllAlerts returns alerts newest first. A nil filter returns both
// resolved and unresolved alerts.
func (s *FraudService) FindAllAlerts(resolved *bool) ([]models.FraudAlert, error) {
	return s.alertRepo.FindAll(resolved)
}

// ResolveAlert marks an alert as handled by the given moderator. Resolving an
// already-resolved alert succeeds and leaves the original resolver in place.
func (s *FraudService) ResolveAlert(id, moderatorID string) (*models.FraudAlert, error) {
	alert, err := s.alertRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if alert.IsResolved {
		return alert, nil
	}

	alert.IsResolved = true
	alert.ResolvedBy = moderatorID
	if err := s.alertRepo.Update(alert); err != nil {
		return nil, fmt.Errorf("failed to resolve alert %s: %w", id, err)
	}
	return alert, nil
}

// publishAlertEvent notifies downstream consumers about a new alert.
// Publishing is fire-and-forget: failures are logged, never surfaced.
func (s *FraudService) publishAlertEvent(alert *models.FraudAlert) {
	if s.mqClient == nil {
		return
	}

	body, err := json.Marshal(map[string]any{
		"alertID":   alert.ID,
		"type":      alert.Type,
		"severity":  alert.Severity,
		"productID": alert.ProductID,
		"sellerID":  alert.SellerID,
	})
	if err != nil {
		log.Printf("Failed to marshal alert event: %v", err)
		return
	}
	if err := s.mqClient.Publish("marketplace", "fraud.alert.created", body); err != nil {
		log.Printf("Warning: Failed to publish alert event for alert %s: %v", alert.ID, err)
	}
}
