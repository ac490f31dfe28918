package api

import (
	"taskinn/internal/earnings"   // Payments view
	"taskinn/internal/middleware" // Auth middleware
	"taskinn/internal/settlement" // Settlement handlers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the collaborators the HTTP layer needs
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client // May be nil, caching is then skipped
	Settlement *settlement.Service
	Earnings   *earnings.Service
	JWTSecret  string
}

// RegisterRoutes mounts every endpoint on r
func RegisterRoutes(r *gin.Engine, d Deps) {
	auth := middleware.JWTAuthMiddleware(d.JWTSecret) // Protects everything except login and the IPN
	adminOnly := middleware.AdminOnlyMiddleware()

	r.POST("/api/auth/register", RegisterHandler(d.DB))
	r.POST("/api/auth/login", LoginHandler(d.DB, d.JWTSecret))
	r.POST("/api/admin/login", AdminLoginHandler(d.DB, d.JWTSecret))

	// Processor callback, authenticated by its HMAC signature
	r.POST("/api/payments/coinpayments/ipn", CoinPaymentsIPNHandler(d.Settlement))

	payments := r.Group("/api/payments", auth)
	payments.GET("", ListPaymentsHandler(d.Earnings))
	payments.GET("/stats", PaymentStatsHandler(d.Earnings))
	payments.POST("/withdraw-request", WithdrawRequestHandler(d.Earnings))
	payments.POST("/paypal/create-order", CreatePayPalOrderHandler(d.Settlement))
	payments.POST("/paypal/capture-order", CapturePayPalOrderHandler(d.Settlement))
	payments.POST("/paypal/payout", PayPalPayoutHandler(d.Settlement))
	payments.POST("/coinpayments/create-address", CreateDepositAddressHandler(d.Settlement))
	payments.POST("/coinpayments/withdraw", CryptoWithdrawHandler(d.Settlement))

	wallets := r.Group("/api/wallets", auth)
	wallets.GET("", ListWalletsHandler(d.DB, d.Redis))
	wallets.POST("", CreateWalletHandler(d.DB, d.Redis))
	wallets.GET("/transactions", ListWalletTransactionsHandler(d.DB, d.Redis))
	wallets.POST("/add-funds", adminOnly, AddFundsHandler(d.Settlement))

	admin := r.Group("/api/admin", auth, adminOnly)
	admin.GET("/settings/commission", GetCommissionHandler(d.DB))
	admin.PUT("/settings/commission", UpdateCommissionHandler(d.DB))
	admin.GET("/wallets", AdminWalletsHandler(d.DB))
	admin.GET("/users", ListUsersHandler(d.DB, d.Redis))
	admin.GET("/transactions", ListTransactionsHandler(d.DB, d.Redis))
	admin.POST("/payments", GrantPaymentHandler(d.Earnings))
	admin.POST("/payments/:id/complete", CompletePaymentHandler(d.Earnings))
}
