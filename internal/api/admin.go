package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation

	"taskinn/internal/domain" // Importing domain models
	"taskinn/internal/ledger" // Commission policy and admin wallets
	"taskinn/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Money amounts
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// CommissionRequest updates the global commission rate
type CommissionRequest struct {
	CommissionRate decimal.Decimal `json:"commissionRate"` // Fraction in [0, 1)
}

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID       uint            `json:"id"`       // User ID
	Username string          `json:"username"` // Username
	Role     string          `json:"role"`     // User role
	Wallets  []domain.Wallet `json:"wallets"`  // One wallet per currency
}

// pageParams reads the page and page_size query parameters
func pageParams(c *gin.Context) (page, pageSize int) {
	page = queryInt(c, "page", 1) // Default page number
	if page < 1 {
		page = 1
	}
	pageSize = queryInt(c, "page_size", ledger.DefaultPageLimit) // Default page size
	if pageSize < 1 || pageSize > ledger.MaxPageLimit {
		pageSize = ledger.DefaultPageLimit
	}
	return page, pageSize
}

// GetCommissionHandler returns the commission rate applied to new settlements
func GetCommissionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rate, err := ledger.CommissionRate(db.WithContext(c.Request.Context()))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"commissionRate": rate})
	}
}

// UpdateCommissionHandler changes the commission rate; the next settlement picks it up
func UpdateCommissionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CommissionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errInvalidRequest)
			return
		}
		if err := ledger.SetCommissionRate(db.WithContext(c.Request.Context()), req.CommissionRate); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithField("commission_rate", req.CommissionRate).Info("Commission rate updated")
		c.JSON(http.StatusOK, gin.H{"commissionRate": req.CommissionRate})
	}
}

// AdminWalletsHandler returns the platform commission wallets
func AdminWalletsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallets, err := ledger.AdminWallets(db.WithContext(c.Request.Context()))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, wallets)
	}
}

// ListUsersHandler returns all users with their wallets
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pageParams(c)
		cacheKey := "admin:users:page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize) // Short-lived listing cache
		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached["cached"] = true // Indicate response is from cache
			c.JSON(http.StatusOK, cached)
			return
		}
		var total int64 // Total user count
		if err := db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
			respondError(c, err)
			return
		}
		var users []domain.User // Slice to hold users
		// Preload wallets, apply offset and limit for pagination
		if err := db.WithContext(ctx).Preload("Wallets").Order("id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
			respondError(c, err)
			return
		}
		resp := make([]UserAdminResponse, len(users))
		for i, u := range users {
			resp[i] = UserAdminResponse{ID: u.ID, Username: u.Username, Role: u.Role, Wallets: u.Wallets}
		}
		respData := gin.H{
			"users":       resp,                                   // List of users
			"page":        page,                                   // Current page
			"page_size":   pageSize,                               // Page size
			"total":       total,                                  // Total number of users
			"total_pages": (int(total) + pageSize - 1) / pageSize, // Total pages
			"cached":      false,                                  // Indicate response is not from cache
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, cacheTTL)
		c.JSON(http.StatusOK, respData)
	}
}

// ListTransactionsHandler returns ledger entries across all wallets, with
// optional filtering by user, wallet, type, source, status or date
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pageParams(c)
		filters := []string{"user_id", "wallet_id", "type", "source", "status", "from", "to"}
		keyParts := []string{"page=" + strconv.Itoa(page), "size=" + strconv.Itoa(pageSize)}
		for _, k := range filters {
			keyParts = append(keyParts, k+"="+c.Query(k)) // Every filter is part of the key
		}
		cacheKey := "admin:txs:" + strings.Join(keyParts, ":")
		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached["cached"] = true
			c.JSON(http.StatusOK, cached)
			return
		}

		query := db.WithContext(ctx).Model(&domain.WalletTransaction{}) // Start building the query
		if userID := c.Query("user_id"); userID != "" {
			query = query.Where("wallet_id IN (?)", db.Model(&domain.Wallet{}).Select("id").Where("user_id = ?", userID))
		}
		if walletID := c.Query("wallet_id"); walletID != "" {
			query = query.Where("wallet_id = ?", walletID)
		}
		for _, col := range []string{"type", "source", "status"} {
			if v := c.Query(col); v != "" {
				query = query.Where(col+" = ?", v) // Column names come from the fixed list above
			}
		}
		if from := c.Query("from"); from != "" {
			query = query.Where("created_at >= ?", from) // Filter by start date
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("created_at <= ?", to) // Filter by end date
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			respondError(c, err)
			return
		}
		var txs []domain.WalletTransaction
		if err := query.Order("created_at desc, id desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&txs).Error; err != nil {
			respondError(c, err)
			return
		}
		respData := gin.H{
			"transactions": txs,                                    // List of transactions
			"page":         page,                                   // Current page
			"page_size":    pageSize,                               // Page size
			"total":        total,                                  // Total matching transactions
			"total_pages":  (int(total) + pageSize - 1) / pageSize, // Total pages
			"cached":       false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, cacheTTL)
		c.JSON(http.StatusOK, respData)
	}
}
