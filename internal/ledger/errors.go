package ledger

import "taskinn/internal/apperr"

var (
	ErrInvalidAmount       = apperr.Validation("invalid_amount", "Amount must be greater than zero")
	ErrInvalidRate         = apperr.Validation("invalid_commission_rate", "Commission rate must be in [0, 1)")
	ErrInvalidCurrency     = apperr.Validation("invalid_currency", "Unsupported currency")
	ErrInsufficientBalance = apperr.Validation("insufficient_balance", "Insufficient balance")
	ErrWalletExists        = apperr.Conflict("wallet_exists", "Wallet already exists")
	ErrWalletNotFound      = apperr.NotFound("wallet_not_found", "Wallet not found")
	ErrDuplicateSettlement = apperr.Conflict("duplicate_settlement", "Settlement already recorded")
	ErrSettingsMissing     = apperr.NotFound("settings_not_found", "Admin settings not initialised")
)
