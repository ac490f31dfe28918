package api

import (
	"io"       // Raw IPN body
	"net/http" // HTTP status codes

	"taskinn/internal/settlement" // Settlement handlers

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money amounts
	"github.com/sirupsen/logrus"    // Logging library
)

// maxIPNBody caps what we read from the processor callback
const maxIPNBody = 64 << 10

// CreateOrderRequest starts a PayPal deposit
type CreateOrderRequest struct {
	UserID uint            `json:"userId"` // Optional, defaults to the caller
	Amount decimal.Decimal `json:"amount"` // USD, must be positive
}

// CaptureOrderRequest finalises a PayPal deposit
type CaptureOrderRequest struct {
	OrderID string `json:"orderId" binding:"required"` // PayPal order id
	UserID  uint   `json:"userId"`                     // Optional, defaults to the caller
}

// PayoutRequest withdraws USD to a PayPal account
type PayoutRequest struct {
	UserID      uint            `json:"userId"`                         // Optional, defaults to the caller
	Amount      decimal.Decimal `json:"amount"`                         // Gross amount debited from the wallet
	PayPalEmail string          `json:"paypalEmail" binding:"required"` // Receiver
}

// CryptoWithdrawRequest withdraws USDT to a TRC20 address
type CryptoWithdrawRequest struct {
	UserID        uint            `json:"userId"`                           // Optional, defaults to the caller
	Amount        decimal.Decimal `json:"amount"`                           // Gross amount debited from the wallet
	WalletAddress string          `json:"walletAddress" binding:"required"` // Destination address
}

// UserRequest names the user an action applies to
type UserRequest struct {
	UserID uint `json:"userId"` // Optional, defaults to the caller
}

// CreatePayPalOrderHandler creates a PayPal order and returns its approval link
func CreatePayPalOrderHandler(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errInvalidRequest)
			return
		}
		userID, err := resolveUserID(c, req.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		order, err := svc.CreateDepositOrder(c.Request.Context(), userID, req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// CapturePayPalOrderHandler captures an approved order and credits the wallet
func CapturePayPalOrderHandler(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CaptureOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, settlement.ErrMissingOrderID)
			return
		}
		userID, err := resolveUserID(c, req.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		deposit, err := svc.CapturePayPalDeposit(c.Request.Context(), userID, req.OrderID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "deposit": deposit})
	}
}

// PayPalPayoutHandler sends a PayPal payout from the caller's USD wallet
func PayPalPayoutHandler(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PayoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errInvalidRequest)
			return
		}
		userID, err := resolveUserID(c, req.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		withdrawal, err := svc.PayPalPayout(c.Request.Context(), userID, req.Amount, req.PayPalEmail)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "withdrawal": withdrawal})
	}
}

// CreateDepositAddressHandler returns a USDT deposit address for the caller
func CreateDepositAddressHandler(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UserRequest
		if c.Request.ContentLength > 0 { // Body is optional
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, errInvalidRequest)
				return
			}
		}
		userID, err := resolveUserID(c, req.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		addr, err := svc.CreateDepositAddress(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, addr)
	}
}

// CryptoWithdrawHandler sends USDT from the caller's wallet to a TRC20 address
func CryptoWithdrawHandler(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CryptoWithdrawRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errInvalidRequest)
			return
		}
		userID, err := resolveUserID(c, req.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		withdrawal, err := svc.CryptoWithdraw(c.Request.Context(), userID, req.Amount, req.WalletAddress)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "withdrawal": withdrawal})
	}
}

// CoinPaymentsIPNHandler receives CoinPayments callbacks. It is public; the
// HMAC header over the raw body is the only credential.
func CoinPaymentsIPNHandler(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxIPNBody)) // Signature covers the exact bytes
		if err != nil {
			logrus.WithError(err).Warn("Unreadable IPN body")
			c.JSON(http.StatusOK, gin.H{"success": true}) // Retrying will not make it readable
			return
		}
		outcome, err := svc.HandleIPN(c.Request.Context(), body, c.GetHeader("HMAC"))
		if err != nil {
			respondError(c, err) // 401 on a bad signature, 5xx so the processor retries local failures
			return
		}
		logrus.WithFields(logrus.Fields{
			"txn_id": outcome.TxnID,  // Processor transaction
			"result": outcome.Result, // credited, pending, duplicate or ignored
			"reason": outcome.Reason, // Why it was ignored
		}).Info("IPN acknowledged")
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
