package models

import (
	"time"
)

// PaymentRecord is the audit trail of one gateway attempt, created when a
// checkout session starts and updated as it reaches a terminal state. It is
// what support works from when reconciling manual_check orders.
type PaymentRecord struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	SessionID          string    `gorm:"size:64;uniqueIndex;not null" json:"session_id"`
	UserID             uint      `gorm:"not null;index" json:"user_id"`
	TransactionID      string    `gorm:"size:128;index" json:"transaction_id"`
	Operator           string    `gorm:"size:32" json:"operator"`
	PhoneNumber        string    `gorm:"size:32" json:"phone_number"`
	Amount             int64     `gorm:"not null" json:"amount"`
	Country            string    `gorm:"size:8" json:"country"`
	Status             string    `gorm:"size:24;not null;index" json:"status"` // session state at last update
	FailureReason      string    `gorm:"size:255" json:"failure_reason"`
	VerificationStatus string    `gorm:"size:20" json:"verification_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}
