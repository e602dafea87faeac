package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bakeshop/internal/domain"
	"bakeshop/internal/middleware"
	"bakeshop/internal/store"
	"bakeshop/internal/utils"
	"bakeshop/internal/validate"
	"bakeshop/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const walletCacheTTL = 60 * time.Second

// AddFundsRequest is the wallet funding payload
type AddFundsRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"` // Must be positive
}

// GetWalletHandler returns the caller's wallet balance, read-through cached.
func GetWalletHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(middleware.CtxUserID).(uint)
		ctx := context.Background()
		cacheKey := utils.WalletKey(userID)
		var w domain.Wallet
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &w); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"wallet": w, "cached": true})
			return
		}
		if err := db.Where("user_id = ?", userID).First(&w).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, w, walletCacheTTL)
		c.JSON(http.StatusOK, gin.H{"wallet": w, "cached": false})
	}
}

// AddFundsHandler credits the caller's wallet. The balance saturates at the
// configured cap instead of erroring when the cap would be exceeded.
func AddFundsHandler(funding *wallet.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(middleware.CtxUserID).(uint)
		var req AddFundsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := validate.Funds(req.Amount); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !req.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be greater than 0"})
			return
		}
		funded, err := funding.Fund(c.Request.Context(), userID, req.Amount)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"amount":  req.Amount,
				"error":   err.Error(),
			}).Error("Funding failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add funds"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": userID,         // Funded wallet owner
			"amount":  req.Amount,     // Requested credit
			"balance": funded.Balance, // Post-credit balance (possibly capped)
		}).Info("Wallet funded")
		_ = utils.DeleteCache(c.Request.Context(), rdb, utils.WalletKey(userID)) // Balance changed
		c.JSON(http.StatusOK, gin.H{"wallet": funded})
	}
}
