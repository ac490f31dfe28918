package settlement

import "taskinn/internal/apperr"

var (
	ErrUserNotFound     = apperr.NotFound("user_not_found", "User not found")
	ErrMissingOrderID   = apperr.Validation("missing_order_id", "orderId is required")
	ErrInvalidEmail     = apperr.Validation("invalid_paypal_email", "A valid PayPal email is required")
	ErrInvalidAddress   = apperr.Validation("invalid_wallet_address", "A valid TRC20 wallet address is required")
	ErrCaptureOwner     = apperr.Authorization("capture_owner_mismatch", "Order belongs to another user")
	ErrInvalidSignature = apperr.Authentication("invalid_ipn_signature", "Invalid IPN signature")
)
