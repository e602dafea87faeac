// Package receipt renders a completed sale as a PDF document.
package receipt

import (
	"bytes"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Line is one purchased item as shown on the receipt.
type Line struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Sale is the completed purchase being printed.
type Sale struct {
	ID        uint
	UserID    uint
	CreatedAt time.Time
	Total     decimal.Decimal
	Lines     []Line
}

// Render produces the PDF bytes for a sale.
func Render(storeName string, sale Sale) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, storeName, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "Receipt #"+uintString(sale.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Date: "+sale.CreatedAt.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Customer ID: "+uintString(sale.UserID), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.CellFormat(0, 7, "Items:", "", 1, "L", false, 0, "")
	for _, l := range sale.Lines {
		row := l.Name + "  x" + intString(l.Quantity) +
			"  -  $" + l.UnitPrice.StringFixed(2) +
			"  =  $" + l.Subtotal.StringFixed(2)
		pdf.CellFormat(0, 7, row, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, "TOTAL PAID: $"+sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func intString(v int) string {
	return strconv.Itoa(v)
}
