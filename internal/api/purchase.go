package api

import (
	"errors"
	"net/http"
	"time"

	"bakeshop/internal/checkout"
	"bakeshop/internal/domain"
	"bakeshop/internal/middleware"
	"bakeshop/internal/utils"
	"bakeshop/internal/validate"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CheckoutRequest is the cart submitted for purchase. Line validation is the
// engine's job; binding only has to parse the JSON.
type CheckoutRequest struct {
	Cart []checkout.CartLine `json:"cart"`
}

// CheckoutHandler runs the atomic cart purchase for the authenticated
// customer and maps the engine's failure taxonomy onto HTTP responses.
func CheckoutHandler(engine *checkout.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(middleware.CtxUserID).(uint)
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		saleID, err := engine.Checkout(c.Request.Context(), userID, req.Cart)
		if err != nil {
			var funds *checkout.InsufficientFundsError
			var stock *checkout.InsufficientStockError
			var missing *checkout.ProductNotFoundError
			switch {
			case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, validate.ErrInvalidInput):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, checkout.ErrWalletNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.As(err, &funds):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "shortfall": funds.Shortfall})
			case errors.As(err, &stock):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "product": stock.Name, "available": stock.Available})
			case errors.As(err, &missing):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			default:
				// Persistence failures are logged, never leaked.
				logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Checkout failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Checkout failed"})
			}
			return
		}

		// Stock and balance changed; drop the affected caches.
		_ = utils.DeleteCache(c.Request.Context(), rdb, utils.WalletKey(userID))
		_ = utils.InvalidateListings(c.Request.Context(), rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Purchase completed", "sale_id": saleID})
	}
}

// purchaseLineView is one line of a grouped purchase history entry
type purchaseLineView struct {
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// purchaseView is one grouped purchase history entry
type purchaseView struct {
	SaleID uint               `json:"sale_id"`
	Date   string             `json:"date"`
	Total  decimal.Decimal    `json:"total"`
	Lines  []purchaseLineView `json:"lines"`
}

// PurchaseHistoryHandler returns the caller's purchases, newest first, each
// sale grouped with its line items and product names.
func PurchaseHistoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(middleware.CtxUserID).(uint)
		var sales []domain.Sale
		if err := db.Preload("Lines").
			Where("user_id = ?", userID).
			Order("created_at desc").
			Find(&sales).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
			return
		}

		// Resolve product names for every line in one query.
		productIDs := make([]uint, 0)
		for _, s := range sales {
			for _, l := range s.Lines {
				productIDs = append(productIDs, l.ProductID)
			}
		}
		names := make(map[uint]string)
		if len(productIDs) > 0 {
			var products []domain.Product
			if err := db.Select("id", "name").Where("id IN ?", productIDs).Find(&products).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
				return
			}
			for _, p := range products {
				names[p.ID] = p.Name
			}
		}

		history := make([]purchaseView, 0, len(sales))
		for _, s := range sales {
			view := purchaseView{
				SaleID: s.ID,
				Date:   s.CreatedAt.Format("2006-01-02 15:04:05"),
				Total:  s.Total,
				Lines:  make([]purchaseLineView, 0, len(s.Lines)),
			}
			for _, l := range s.Lines {
				view.Lines = append(view.Lines, purchaseLineView{
					Product:   names[l.ProductID],
					Quantity:  l.Quantity,
					UnitPrice: l.UnitPrice,
					Subtotal:  l.Subtotal,
				})
			}
			history = append(history, view)
		}
		c.JSON(http.StatusOK, gin.H{"history": history})
	}
}

// adminHistoryRow is one flat row of the admin sales report
type adminHistoryRow struct {
	SaleID    uint            `json:"sale_id"`
	Date      time.Time       `json:"date"`
	User      string          `json:"user"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func adminHistoryQuery(db *gorm.DB) *gorm.DB {
	return db.Table("sales").
		Select("sales.id AS sale_id, sales.created_at AS date, users.name AS user, products.name AS product, sale_lines.quantity, sale_lines.unit_price, sale_lines.subtotal").
		Joins("JOIN users ON users.id = sales.user_id").
		Joins("JOIN sale_lines ON sale_lines.sale_id = sales.id").
		Joins("JOIN products ON products.id = sale_lines.product_id").
		Order("sales.created_at desc")
}

// AdminHistoryByDayHandler reports every sale of one calendar day.
func AdminHistoryByDayHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Query("date")
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or malformed date"})
			return
		}
		var rows []adminHistoryRow
		if err := adminHistoryQuery(db).Where("DATE(sales.created_at) = ?", date).Scan(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": rows})
	}
}

// AdminHistoryByRangeHandler reports every sale in an inclusive date range.
func AdminHistoryByRangeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to := c.Query("from"), c.Query("to")
		if _, err := time.Parse("2006-01-02", from); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or malformed date range"})
			return
		}
		if _, err := time.Parse("2006-01-02", to); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or malformed date range"})
			return
		}
		var rows []adminHistoryRow
		if err := adminHistoryQuery(db).Where("DATE(sales.created_at) BETWEEN ? AND ?", from, to).Scan(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": rows})
	}
}
