package models

import "time"

// ProductStatus is the moderation state of a listing.
type ProductStatus string

const (
	StatusPending  ProductStatus = "pending"  // awaiting moderation
	StatusApproved ProductStatus = "approved" // publicly listed
	StatusRejected ProductStatus = "rejected" // declined by a moderator
	StatusSold     ProductStatus = "sold"     // set when the order subsystem reports a completed sale
)

// IsModerationStatus reports whether a status is one a moderator may set.
// SOLD is reserved for the order subsystem; PENDING is only ever set by edits.
func (s ProductStatus) IsModerationStatus() bool {
	return s == StatusApproved || s == StatusRejected
}

// PricePoint is a single entry of a product's price ledger.
type PricePoint struct {
	Price float64   `json:"price"`
	Date  time.Time `json:"date"`
}

// Product represents a listing published by a seller.
// PriceHistory is append-only: it is seeded with one entry at creation and
// grows by one entry per confirmed price change, so its last entry always
// matches Price.
type Product struct {
	ID           string        `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title        string        `json:"title" validate:"required,min=3,max=150"`
	Description  string        `json:"description" validate:"required,max=2000"`
	Price        float64       `json:"price" validate:"gte=0"`
	ShippingCost float64       `json:"shipping_cost" validate:"gte=0"`
	ImageURLs    []string      `json:"image_urls" gorm:"serializer:json" validate:"omitempty,max=5,dive,url"`
	Status       ProductStatus `json:"status" gorm:"type:varchar(16);index"`
	SellerID     string        `json:"seller_id" gorm:"type:varchar(36);index" validate:"required"`
	CategoryID   string        `json:"category_id" gorm:"type:varchar(36);index"`
	ShopID       string        `json:"shop_id" gorm:"type:varchar(36)"`
	Condition    string        `json:"condition"` // free-form: "neuf", "bon état", "usagé"...
	PriceHistory []PricePoint  `json:"price_history" gorm:"serializer:json"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ProductUpdate carries the fields of a partial listing edit. Nil pointers
// mean "leave unchanged"; a nil ImageURLs slice is likewise ignored.
type ProductUpdate struct {
	Title        *string  `json:"title" validate:"omitempty,min=3,max=150"`
	Description  *string  `json:"description" validate:"omitempty,max=2000"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	ShippingCost *float64 `json:"shipping_cost" validate:"omitempty,gte=0"`
	ImageURLs    []string `json:"image_urls" validate:"omitempty,max=5,dive,url"`
	CategoryID   *string  `json:"category_id"`
	Condition    *string  `json:"condition"`
}
