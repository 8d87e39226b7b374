package models

import "gorm.io/gorm"

// Roles recognized by the marketplace. Sellers manage their own listings;
// moderators work the moderation queue and fraud alerts.
const (
	RoleSeller    = "seller"
	RoleModerator = "moderator"
)

// User represents an account of the marketplace.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role       string `json:"role" gorm:"type:varchar(20)" validate:"omitempty,oneof=seller moderator"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
