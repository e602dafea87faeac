package api

import (
	"net/http"
	"strconv"

	"bakeshop/internal/domain"
	"bakeshop/internal/middleware"
	"bakeshop/internal/receipt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReceiptHandler renders the PDF receipt of one of the caller's own sales.
// The lookup is constrained to the requesting user, so no one can pull
// another customer's receipt.
func ReceiptHandler(db *gorm.DB, storeName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(middleware.CtxUserID).(uint)
		saleID, err := parseIDParam(c, "id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var sale domain.Sale
		if err := db.Preload("Lines").
			Where("id = ? AND user_id = ?", saleID, userID).
			First(&sale).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
			return
		}

		names := make(map[uint]string)
		productIDs := make([]uint, 0, len(sale.Lines))
		for _, l := range sale.Lines {
			productIDs = append(productIDs, l.ProductID)
		}
		if len(productIDs) > 0 {
			var products []domain.Product
			if err := db.Select("id", "name").Where("id IN ?", productIDs).Find(&products).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build receipt"})
				return
			}
			for _, p := range products {
				names[p.ID] = p.Name
			}
		}

		view := receipt.Sale{
			ID:        sale.ID,
			UserID:    sale.UserID,
			CreatedAt: sale.CreatedAt,
			Total:     sale.Total,
		}
		for _, l := range sale.Lines {
			view.Lines = append(view.Lines, receipt.Line{
				Name:      names[l.ProductID],
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				Subtotal:  l.Subtotal,
			})
		}

		data, err := receipt.Render(storeName, view)
		if err != nil {
			logrus.WithFields(logrus.Fields{"sale_id": saleID, "error": err.Error()}).Error("Receipt rendering failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build receipt"})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=receipt_"+strconv.FormatUint(uint64(saleID), 10)+".pdf")
		c.Data(http.StatusOK, "application/pdf", data)
	}
}
