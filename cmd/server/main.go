package main

import (
	"context"   // context package is needed for Redis operations and shutdown
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Signal handling
	"syscall"   // SIGTERM
	"time"      // Shutdown timeout

	"taskinn/internal/api"          // Custom package for API handlers
	"taskinn/internal/coinpayments" // CoinPayments client
	"taskinn/internal/config"       // Custom package for configuration
	"taskinn/internal/db"           // Database connection
	"taskinn/internal/earnings"     // Payments view
	"taskinn/internal/middleware"   // Custom package for middleware
	"taskinn/internal/paypal"       // PayPal client
	"taskinn/internal/settlement"   // Settlement service
	"taskinn/internal/workers"      // Background reconciler

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine-readable logs in production
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}

	gdb, err := db.Open(cfg) // Connect to MySQL or Postgres
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Payment processors
	paypalClient := paypal.NewClient(paypal.Config{
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		BaseURL:      paypal.BaseURLForMode(cfg.PayPalMode),
		ReturnURL:    cfg.PayPalReturnURL,
		CancelURL:    cfg.PayPalCancelURL,
		Timeout:      cfg.ProcessorTimeout,
	})
	coinClient := coinpayments.NewClient(coinpayments.Config{
		PublicKey:  cfg.CoinPaymentsPublicKey,
		PrivateKey: cfg.CoinPaymentsPrivateKey,
		Timeout:    cfg.ProcessorTimeout,
	})

	settlementSvc := settlement.NewService(gdb, redisClient, paypalClient, coinClient, settlement.Config{
		CoinCurrency: cfg.CoinPaymentsCurrency,
		IPNSecret:    cfg.CoinPaymentsIPNSecret,
		MerchantID:   cfg.CoinPaymentsMerchantID,
		IPNURL:       cfg.CoinPaymentsIPNURL,
	})

	// Pending withdrawals are re-checked in the background
	reconciler, err := workers.NewReconciler(settlementSvc, cfg.ReconcileInterval)
	if err != nil {
		logrus.Fatalf("failed to create reconciler: %v", err)
	}
	reconciler.Start()

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.New()                                    // Gin router instance
	r.Use(middleware.RequestLogger(), gin.Recovery()) // Access logs through logrus

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.RegisterRoutes(r, api.Deps{
		DB:         gdb,
		Redis:      redisClient,
		Settlement: settlementSvc,
		Earnings:   earnings.NewService(gdb),
		JWTSecret:  cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.Infof("Server running on %s", cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	// Wait for interrupt, then drain in-flight settlements
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ProcessorTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("server shutdown: %v", err)
	}
	if err := reconciler.Stop(); err != nil {
		logrus.Errorf("reconciler shutdown: %v", err)
	}
	_ = redisClient.Close()
}
