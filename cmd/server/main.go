package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"bakeshop/internal/api"        // API handlers
	"bakeshop/internal/checkout"   // Checkout engine
	"bakeshop/internal/config"     // Configuration
	"bakeshop/internal/domain"     // Domain models and permissions
	"bakeshop/internal/middleware" // Session and permission middleware
	"bakeshop/internal/session"    // Server-side sessions
	"bakeshop/internal/store"      // Persistence gateway
	"bakeshop/internal/wallet"     // Wallet funding service

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client (sessions and read-through caches)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	sessions := session.NewManager(cfg.SessionSecret, redisClient, cfg.SessionTTL) // Session manager
	gateway := store.NewGorm(db)                                                   // Persistence gateway
	engine := checkout.NewEngine(gateway)                                          // Checkout engine
	funding := wallet.NewService(gateway, cfg.WalletCap)                           // Wallet funding

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/register", api.RegisterHandler(db))
	r.POST("/login", api.LoginHandler(db, sessions, cfg.IsProd))
	r.GET("/session", api.SessionCheckHandler(db, sessions))
	r.POST("/logout", middleware.Authenticated(sessions), api.LogoutHandler(db, sessions))

	// Profile routes (any authenticated user)
	profile := r.Group("/profile", middleware.Authenticated(sessions))
	profile.GET("", api.GetProfileHandler(db))
	profile.POST("", api.UpdateProfileHandler(db))
	profile.GET("/photo", api.ProfilePhotoHandler(db))

	// Public storefront routes
	r.GET("/products", api.ListProductsHandler(db, redisClient))
	r.GET("/products/active-season", api.ActiveSeasonProductsHandler(db, redisClient))
	r.GET("/products/year-round", api.YearRoundProductsHandler(db, redisClient))
	r.GET("/products/:id/image", api.ProductImageHandler(db))
	r.GET("/seasons", api.ListSeasonsHandler(db))
	r.GET("/seasons/active", api.ActiveSeasonHandler(db))

	// Inventory management (admin only)
	inventory := r.Group("/products", middleware.Authenticated(sessions), middleware.Require(domain.PermManageInventory))
	inventory.POST("", api.CreateProductHandler(db, redisClient))
	inventory.PUT("/:id", api.UpdateProductHandler(db, redisClient))
	inventory.DELETE("/:id", api.DeleteProductHandler(db, redisClient))

	// Season management (admin only)
	seasons := r.Group("/seasons", middleware.Authenticated(sessions), middleware.Require(domain.PermManageSeasons))
	seasons.POST("/:id/activate", api.ActivateSeasonHandler(db, redisClient))
	seasons.POST("/deactivate", api.DeactivateSeasonsHandler(db, redisClient))

	// Wallet routes (any authenticated user)
	walletGroup := r.Group("/wallet", middleware.Authenticated(sessions))
	walletGroup.GET("", api.GetWalletHandler(db, redisClient))
	walletGroup.POST("/funds", api.AddFundsHandler(funding, redisClient))

	// Purchasing (customers)
	r.POST("/checkout", middleware.Authenticated(sessions), middleware.Require(domain.PermPurchase), api.CheckoutHandler(engine, redisClient))
	r.GET("/purchases", middleware.Authenticated(sessions), api.PurchaseHistoryHandler(db))
	r.GET("/receipts/:id", middleware.Authenticated(sessions), api.ReceiptHandler(db, cfg.StoreName))

	// Sales reports (admin only)
	reports := r.Group("/admin/purchases", middleware.Authenticated(sessions), middleware.Require(domain.PermViewAllSales))
	reports.GET("/day", api.AdminHistoryByDayHandler(db))
	reports.GET("/range", api.AdminHistoryByRangeHandler(db))

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
