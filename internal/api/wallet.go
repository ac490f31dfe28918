package api

import (
	"net/http" // HTTP status codes
	"time"     // Time durations

	"taskinn/internal/domain"     // Importing domain models
	"taskinn/internal/ledger"     // Wallet store
	"taskinn/internal/settlement" // Manual top-up
	"taskinn/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Money amounts
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

const cacheTTL = 60 * time.Second // How long read models stay cached

// CreateWalletRequest represents a wallet creation request
type CreateWalletRequest struct {
	UserID       uint   `json:"userId"`                          // Optional, defaults to the caller
	CurrencyType string `json:"currencyType" binding:"required"` // USD or USDT_TRC20
}

// AddFundsRequest represents a manual top-up
type AddFundsRequest struct {
	UserID       uint            `json:"userId" binding:"required"`       // Wallet owner
	CurrencyType string          `json:"currencyType" binding:"required"` // USD or USDT_TRC20
	Amount       decimal.Decimal `json:"amount"`                          // Must be positive
}

// ListWalletsHandler returns every wallet of a user
func ListWalletsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		requested, err := queryUint(c, "userId") // Optional owner filter
		if err != nil {
			respondError(c, err)
			return
		}
		userID, err := resolveUserID(c, requested) // Callers may only read their own wallets
		if err != nil {
			respondError(c, err)
			return
		}
		ctx := c.Request.Context()
		cacheKey := utils.WalletsCacheKey(userID) // Invalidated by every settlement
		var wallets []domain.Wallet
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &wallets); err == nil && found {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, wallets)
			return
		}
		wallets, err = ledger.ListWallets(db.WithContext(ctx), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, wallets, cacheTTL) // Best effort
		c.Header("X-Cache", "MISS")
		c.JSON(http.StatusOK, wallets)
	}
}

// CreateWalletHandler opens a zero-balance wallet in a currency
func CreateWalletHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateWalletRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errInvalidRequest)
			return
		}
		userID, err := resolveUserID(c, req.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		ctx := c.Request.Context()
		wallet, err := ledger.CreateWallet(db.WithContext(ctx), userID, req.CurrencyType) // 409 when it already exists
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,          // Owner
			"wallet_id": wallet.ID,       // New wallet
			"currency":  wallet.Currency, // Currency
		}).Info("Wallet created")
		_ = utils.DeleteCache(ctx, rdb, utils.WalletsCacheKey(userID)) // Invalidate wallet list cache
		c.JSON(http.StatusCreated, wallet)
	}
}

// AddFundsHandler credits a wallet by hand (admin only, no commission)
func AddFundsHandler(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddFundsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errInvalidRequest)
			return
		}
		wallet, err := svc.AddFunds(c.Request.Context(), req.UserID, req.CurrencyType, req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, wallet)
	}
}

// ListWalletTransactionsHandler returns one page of a wallet's ledger, newest first
func ListWalletTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		walletID, err := queryUint(c, "walletId")
		if err != nil || walletID == 0 {
			respondError(c, errWalletIDRequired)
			return
		}
		ctx := c.Request.Context()
		wallet, err := ledger.FindWallet(db.WithContext(ctx), walletID)
		if err != nil {
			respondError(c, err)
			return
		}
		if _, err := resolveUserID(c, wallet.UserID); err != nil {
			respondError(c, ledger.ErrWalletNotFound) // Do not reveal other users' wallets
			return
		}
		limit, offset := ledger.ClampPage(queryInt(c, "limit", ledger.DefaultPageLimit), queryInt(c, "offset", 0))
		cacheKey := utils.TransactionsCacheKey(walletID, limit, offset) // Dropped with the wallet's prefix on settlement
		var txs []domain.WalletTransaction
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &txs); err == nil && found {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, txs)
			return
		}
		txs, err = ledger.ListTransactions(db.WithContext(ctx), walletID, limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, txs, cacheTTL)
		c.Header("X-Cache", "MISS")
		c.JSON(http.StatusOK, txs)
	}
}
