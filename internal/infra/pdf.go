package infra

// pdf.go: thermal-style PDF receipts rendered with go-pdf/fpdf.
// Layout: shop header, order id + timestamp, line item table (name, qty,
// subtotal), delivery fee when present, bold total, payment method, and a
// VOIDED watermark line for voided orders.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"brewpos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateReceiptPDF renders a receipt for one order. storagePath is the
// directory where the PDF is written (created if needed). Returns the absolute
// path of the generated file.
func GenerateReceiptPDF(order *model.Order, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", order.ID)
	filePath := filepath.Join(storagePath, fileName)

	// 74mm × 105mm, close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "brewpos", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Order Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Order "+shortID(order.ID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, order.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, line := range order.Lines {
		name := truncateName(line.Name, 22)
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+line.Subtotal().StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	if order.Channel == model.ChannelDelivery && !order.DeliveryFee.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Delivery fee:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+order.DeliveryFee.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+order.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Payment ("+order.Payment+"):", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "$"+order.Total.StringFixed(2), "", 1, "R", false, 0, "")

	if order.Voided {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, "*** VOIDED ***", "", 1, "C", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

// GenerateReceiptSummaryPDF renders a reduced receipt from the fields kept on
// the receipts row. Used by the retry cron, which no longer has the original
// order line items.
func GenerateReceiptSummaryPDF(orderID string, total decimal.Decimal, issuedAt time.Time, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%s.pdf", orderID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "mm",
		Size:    fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(5, 5, 5)
	pdf.AddPage()
	contentW := 64.0

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, "brewpos", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Order: "+shortID(orderID), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 4, issuedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW/2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 6, "$"+total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncateName shortens a product name to max runes, never splitting a
// multi-byte character.
func truncateName(name string, max int) string {
	r := []rune(name)
	if len(r) <= max {
		return name
	}
	return string(r[:max-1]) + "…"
}
