package gateway

import (
	"context"
	"math"
)

// Country identifies which of the provider's country-scoped endpoints a
// payment goes through.
type Country string

const (
	CountryDRC Country = "DRC"
	CountryKE  Country = "KE"
	CountryUG  Country = "UG"
)

func (c Country) Valid() bool {
	switch c {
	case CountryDRC, CountryKE, CountryUG:
		return true
	}
	return false
}

// DialPrefix returns the international prefix used to normalize local-format
// phone numbers for this country.
func (c Country) DialPrefix() string {
	switch c {
	case CountryDRC:
		return "+243"
	case CountryKE:
		return "+254"
	case CountryUG:
		return "+256"
	}
	return ""
}

type Status string

const (
	StatusPending        Status = "pending"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
	StatusAssumedSuccess Status = "assumed_success"
)

// PaymentRequest describes one charge attempt. Amount is in minor currency
// units; fractional input is tolerated and rounded before it reaches the
// provider (see NormalizeAmount).
type PaymentRequest struct {
	PhoneNumber string
	Amount      float64
	Country     Country
}

// TransactionStatus is the provider's view of a transaction. Every status
// check returns a fresh snapshot.
type TransactionStatus struct {
	ID            string `json:"id"`
	Status        Status `json:"status"`
	FailureReason string `json:"failureReason,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Provider is the boundary the checkout state machine drives. Client talks to
// the real gateway; Simulator stands in during development.
type Provider interface {
	Initiate(ctx context.Context, req PaymentRequest) (*TransactionStatus, error)
	CheckStatus(ctx context.Context, transactionID string) (*TransactionStatus, error)
}

// NormalizeAmount rounds to the nearest whole minor unit and floors at the
// provider's minimum of 100. This is applied to everything sent upstream, so
// an undersized or fractional amount can never leave the process.
func NormalizeAmount(amount float64) int64 {
	n := int64(math.Round(amount))
	if n < 100 {
		n = 100
	}
	return n
}
