package models

import "time"

// AlertType classifies what triggered a fraud alert.
type AlertType string

const (
	AlertPriceAnomaly     AlertType = "price_anomaly"
	AlertSuspectVendor    AlertType = "suspect_vendor"
	AlertRapidPriceChange AlertType = "rapid_price_change"
	AlertUnusualActivity  AlertType = "unusual_activity"
)

// AlertSeverity ranks how urgently a moderator should look at an alert.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// FraudAlert is a rule-engine finding awaiting moderator review.
// Alerts are created by the fraud service, resolved by moderators,
// and never deleted or re-opened.
type FraudAlert struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Type        AlertType      `json:"type" gorm:"type:varchar(32)"`
	Severity    AlertSeverity  `json:"severity" gorm:"type:varchar(16)"`
	ProductID   string         `json:"product_id" gorm:"type:varchar(36);index"`
	SellerID    string         `json:"seller_id" gorm:"type:varchar(36);index"`
	Description string         `json:"description" gorm:"type:text"`
	Details     map[string]any `json:"details" gorm:"serializer:json"`
	IsResolved  bool           `json:"is_resolved" gorm:"index"`
	ResolvedBy  string         `json:"resolved_by" gorm:"type:varchar(36)"`
	CreatedAt   time.Time      `json:"created_at"`
}
