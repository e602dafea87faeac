package api

import (
	"net/http"

	"bakeshop/internal/domain"
	"bakeshop/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ListSeasonsHandler returns every season.
func ListSeasonsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var seasons []domain.Season
		if err := db.Find(&seasons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch seasons"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"seasons": seasons})
	}
}

// ActiveSeasonHandler returns the live season, if any.
func ActiveSeasonHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var season domain.Season
		if err := db.Where("active = ?", true).First(&season).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No active season"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"season": season})
	}
}

// ActivateSeasonHandler makes one season the active one. Deactivating the
// rest and activating the target happen in a single transaction, so readers
// never observe zero or two active seasons.
func ActivateSeasonHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c, "id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&domain.Season{}).Where("active = ?", true).Update("active", false).Error; err != nil {
				return err
			}
			result := tx.Model(&domain.Season{}).Where("id = ?", id).Update("active", true)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound // Roll everything back
			}
			return nil
		})
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Season not found"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{"season_id": id, "error": err.Error()}).Error("Season activation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate season"})
			return
		}
		_ = utils.InvalidateListings(c.Request.Context(), rdb) // Active-season listing changed
		c.JSON(http.StatusOK, gin.H{"message": "Season activated"})
	}
}

// DeactivateSeasonsHandler turns every season off.
func DeactivateSeasonsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Model(&domain.Season{}).Where("active = ?", true).Update("active", false).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate seasons"})
			return
		}
		_ = utils.InvalidateListings(c.Request.Context(), rdb)
		c.JSON(http.StatusOK, gin.H{"message": "All seasons deactivated"})
	}
}
