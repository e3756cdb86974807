package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is written only after a checkout session completes; no partial order
// ever exists for a pending or failed payment. VerificationStatus
// manual_check marks orders whose payment the user asserted themselves and
// which still need reconciliation against the provider.
type Order struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Reference          string         `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	UserID             uint           `gorm:"not null;index" json:"user_id"`
	RestaurantName     string         `gorm:"size:128" json:"restaurant_name"`
	Items              string         `gorm:"type:text" json:"items"` // cart JSON from the app
	Amount             int64          `gorm:"not null" json:"amount"` // minor currency units
	Currency           string         `gorm:"size:8;default:'CDF'" json:"currency"`
	DeliveryAddress    string         `gorm:"size:512" json:"delivery_address"`
	Operator           string         `gorm:"size:32" json:"operator"`
	PhoneNumber        string         `gorm:"size:32" json:"phone_number"`
	TransactionRef     string         `gorm:"size:128;index" json:"transaction_ref"`
	VerificationStatus string         `gorm:"size:20;not null;index" json:"verification_status"` // paid | manual_check
	Status             string         `gorm:"size:20;not null;index" json:"status"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}
