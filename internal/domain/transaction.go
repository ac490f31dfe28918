package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TxTypeDeposit    = "deposit"
	TxTypeWithdrawal = "withdrawal"
)

// Transaction statuses
const (
	TxStatusProcessing = "processing" // withdrawal debited and held while the processor is called
	TxStatusPending    = "pending"
	TxStatusCompleted  = "completed"
	TxStatusFailed     = "failed" // withdrawal the processor rejected after the wallet was debited; refunded
)

// Settlement sources. Together with ExternalRef they identify a settlement exactly once.
const (
	SourcePayPalCapture          = "paypal_capture"
	SourcePayPalPayout           = "paypal_payout"
	SourceCoinPaymentsDeposit    = "coinpayments_deposit"
	SourceCoinPaymentsWithdrawal = "coinpayments_withdrawal"
	SourceManual                 = "manual"
)

// WalletTransaction is the append-only record of every balance change.
type WalletTransaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	WalletID    uint            `gorm:"not null;index" json:"walletId"`
	Type        string          `gorm:"size:20;not null;index" json:"type"`                                        // deposit | withdrawal
	Source      string          `gorm:"size:40;not null;uniqueIndex:idx_wallet_tx_source_ref" json:"source"`       // Which settlement path produced it
	ExternalRef string          `gorm:"size:128;not null;uniqueIndex:idx_wallet_tx_source_ref" json:"externalRef"` // Processor transaction / capture / batch id
	Amount      decimal.Decimal `gorm:"type:decimal(24,8);not null" json:"amount"`                                 // Signed: negative for withdrawals
	Gross       decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0" json:"gross"`
	Commission  decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0" json:"commission"`
	Fee         decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0" json:"fee"`
	Currency    string          `gorm:"size:20;not null" json:"currency"`
	Status      string          `gorm:"size:20;not null;index" json:"status"` // processing | pending | completed | failed
	Description string          `gorm:"size:255" json:"description"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
