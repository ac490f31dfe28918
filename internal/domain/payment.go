package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment types
const (
	PaymentEarning    = "earning"
	PaymentBonus      = "bonus"
	PaymentReferral   = "referral"
	PaymentWithdrawal = "withdrawal"
)

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// Payment backs the worker-facing earnings view and withdrawal requests.
// It is separate from the wallet ledger.
type Payment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"userId"`
	Type        string          `gorm:"size:20;not null;index" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(24,8);not null" json:"amount"`
	Status      string          `gorm:"size:20;not null;index" json:"status"`
	Description string          `gorm:"size:255" json:"description"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsCredit reports whether the payment type adds to a worker's earnings.
func IsCredit(paymentType string) bool {
	return paymentType == PaymentEarning || paymentType == PaymentBonus || paymentType == PaymentReferral
}
