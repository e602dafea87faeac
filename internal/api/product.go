package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bakeshop/internal/domain"
	"bakeshop/internal/utils"
	"bakeshop/internal/validate"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const listingCacheTTL = 60 * time.Second

// productForm parses and validates the shared multipart fields of the create
// and update endpoints. Free text is stripped of markup before validation.
func productForm(c *gin.Context) (*domain.Product, error) {
	name := strings.TrimSpace(validate.StripTags(c.PostForm("name")))
	description := strings.TrimSpace(validate.StripTags(c.PostForm("description")))
	if err := validate.Name(name); err != nil {
		return nil, err
	}
	if err := validate.Description(description); err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil {
		return nil, validate.Price(decimal.Zero) // Non-numeric price reported as invalid
	}
	if err := validate.Price(price); err != nil {
		return nil, err
	}
	stock, err := strconv.Atoi(c.PostForm("quantity"))
	if err != nil {
		return nil, validate.Quantity(-1) // Non-numeric quantity reported as invalid
	}
	if err := validate.Quantity(stock); err != nil {
		return nil, err
	}
	seasonID, err := strconv.ParseUint(c.PostForm("season_id"), 10, 64)
	if err != nil {
		return nil, validate.ID(0) // Non-numeric season reported as invalid
	}
	if err := validate.ID(uint(seasonID)); err != nil {
		return nil, err
	}
	return &domain.Product{
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		SeasonID:    uint(seasonID),
	}, nil
}

// CreateProductHandler adds a product to the catalog (admin only).
func CreateProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := productForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if file, err := c.FormFile("image"); err == nil {
			image, err := readUpload(file.Open())
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read image"})
				return
			}
			product.Image = image
		}
		if err := db.Create(product).Error; err != nil {
			logrus.WithFields(logrus.Fields{"name": product.Name, "error": err.Error()}).Error("Failed to create product")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		_ = utils.InvalidateListings(c.Request.Context(), rdb) // Catalog changed
		c.JSON(http.StatusCreated, gin.H{"message": "Product created", "id": product.ID})
	}
}

// UpdateProductHandler edits an existing product (admin only).
func UpdateProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c, "id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		product, err := productForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates := map[string]any{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"stock":       product.Stock,
			"season_id":   product.SeasonID,
		}
		if file, err := c.FormFile("image"); err == nil {
			image, err := readUpload(file.Open())
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read image"})
				return
			}
			updates["image"] = image
		}
		result := db.Model(&domain.Product{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		_ = utils.InvalidateListings(c.Request.Context(), rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
	}
}

// DeleteProductHandler removes a product from the catalog (admin only).
func DeleteProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c, "id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result := db.Delete(&domain.Product{}, id)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		_ = utils.InvalidateListings(c.Request.Context(), rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}

// ListProductsHandler returns the whole catalog with season names.
func ListProductsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		listProducts(c, db, rdb, utils.KeyProductsAll, func(q *gorm.DB) *gorm.DB {
			return q.Preload("Season")
		})
	}
}

// ActiveSeasonProductsHandler returns in-stock products of the live season.
func ActiveSeasonProductsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		listProducts(c, db, rdb, utils.KeyProductsActiveSeason, func(q *gorm.DB) *gorm.DB {
			return q.Preload("Season").
				Joins("JOIN seasons ON seasons.id = products.season_id").
				Where("seasons.active = ? AND products.stock > 0", true)
		})
	}
}

// YearRoundProductsHandler returns in-stock always-available products.
func YearRoundProductsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		listProducts(c, db, rdb, utils.KeyProductsYearRound, func(q *gorm.DB) *gorm.DB {
			return q.Where("season_id = ? AND stock > 0", domain.YearRoundSeasonID)
		})
	}
}

// listProducts serves a product listing through the read-through cache.
func listProducts(c *gin.Context, db *gorm.DB, rdb *redis.Client, cacheKey string, scope func(*gorm.DB) *gorm.DB) {
	ctx := context.Background()
	var cached []domain.Product
	if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
		c.JSON(http.StatusOK, gin.H{"products": cached, "cached": true})
		return
	}
	var products []domain.Product
	if err := scope(db.Model(&domain.Product{})).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	_ = utils.SetCache(ctx, rdb, cacheKey, products, listingCacheTTL)
	c.JSON(http.StatusOK, gin.H{"products": products, "cached": false})
}

// ProductImageHandler serves a product's stored image.
func ProductImageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseIDParam(c, "id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var product domain.Product
		if err := db.Select("image").First(&product, id).Error; err != nil || len(product.Image) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		c.Data(http.StatusOK, "image/jpeg", product.Image)
	}
}

// parseIDParam reads a numeric route parameter; zero is invalid.
func parseIDParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, validate.ID(0)
	}
	if err := validate.ID(uint(v)); err != nil {
		return 0, err
	}
	return uint(v), nil
}
