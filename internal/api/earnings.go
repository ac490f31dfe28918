package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing

	"taskinn/internal/earnings" // Payments view
	"taskinn/internal/ledger"   // Paging limits

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money amounts
)

// WithdrawRequest asks for a payout of earned money
type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount"` // Must not exceed what is requestable
}

// GrantPaymentRequest credits an earning, bonus or referral
type GrantPaymentRequest struct {
	UserID      uint            `json:"userId" binding:"required"` // Receiver
	Type        string          `json:"type" binding:"required"`   // earning, bonus or referral
	Amount      decimal.Decimal `json:"amount"`                    // Must be positive
	Description string          `json:"description"`               // Shown to the worker
}

// ListPaymentsHandler returns the caller's payments, newest first
func ListPaymentsHandler(svc *earnings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := resolveUserID(c, 0)
		if err != nil {
			respondError(c, err)
			return
		}
		payments, err := svc.List(c.Request.Context(), userID, queryInt(c, "limit", ledger.DefaultPageLimit), queryInt(c, "offset", 0))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, payments)
	}
}

// PaymentStatsHandler returns the caller's earnings summary
func PaymentStatsHandler(svc *earnings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := resolveUserID(c, 0)
		if err != nil {
			respondError(c, err)
			return
		}
		stats, err := svc.Stats(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// WithdrawRequestHandler files a pending withdrawal against earnings
func WithdrawRequestHandler(svc *earnings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WithdrawRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errInvalidRequest)
			return
		}
		userID, err := resolveUserID(c, 0)
		if err != nil {
			respondError(c, err)
			return
		}
		payment, err := svc.RequestWithdrawal(c.Request.Context(), userID, req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, payment)
	}
}

// GrantPaymentHandler records a completed credit for a worker (admin only)
func GrantPaymentHandler(svc *earnings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GrantPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errInvalidRequest)
			return
		}
		payment, err := svc.Grant(c.Request.Context(), req.UserID, req.Type, req.Amount, req.Description)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, payment)
	}
}

// CompletePaymentHandler marks a pending payment completed (admin only)
func CompletePaymentHandler(svc *earnings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			respondError(c, earnings.ErrPaymentNotFound)
			return
		}
		payment, err := svc.Complete(c.Request.Context(), uint(id))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, payment)
	}
}
