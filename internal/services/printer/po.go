package printer

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/warehub-io/warehub/internal/models"
)

// GeneratePurchaseOrderPDF renders an A4 purchase order document for an
// order: header, customer block, line-item table, totals and a QR code
// carrying the order number for scanning at the dock.
func GeneratePurchaseOrderPDF(order *models.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(120, 10, "PURCHASE ORDER")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 10, order.OrderNumber, "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, "Date: "+order.CreatedAt.Format("2006-01-02"), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, "Status: "+string(order.Status), "", 1, "R", false, 0, "")
	if order.ApprovalStatus != models.ApprovalNone {
		pdf.CellFormat(0, 5, "Approval: "+string(order.ApprovalStatus), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// QR code of the order number
	png, err := qrcode.Encode(order.OrderNumber, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("po-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("po-qr", 165, 15, 28, 28, false, opts, 0, "")

	// Customer block
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "Bill To")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, order.CustomerName)
	pdf.Ln(5)
	if order.CustomerAddress != "" {
		pdf.Cell(0, 5, order.CustomerAddress)
		pdf.Ln(5)
	}
	pdf.Cell(0, 5, order.CustomerEmail+"  "+order.CustomerPhone)
	pdf.Ln(5)
	if order.JobOrder != "" || order.ContainerNumber != "" {
		pdf.Cell(0, 5, fmt.Sprintf("Job Order: %s   Container: %s", order.JobOrder, order.ContainerNumber))
		pdf.Ln(5)
	}
	pdf.Ln(5)

	// Line-item table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(20, 8, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(80, 8, "Product", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(27, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(28, 8, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i, item := range order.Items {
		name := item.Product.Name
		if name == "" {
			name = fmt.Sprintf("Product #%d", item.ProductID)
		}
		if len(name) > 45 {
			name = name[:45]
		}
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(80, 7, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(27, 7, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 7, item.TotalPrice.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	// Totals
	pdf.Ln(2)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(125, 6, "", "", 0, "", false, 0, "")
	pdf.CellFormat(27, 6, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(28, 6, order.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(125, 6, "", "", 0, "", false, 0, "")
	pdf.CellFormat(27, 6, "Tax (10%)", "", 0, "R", false, 0, "")
	pdf.CellFormat(28, 6, order.Tax.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(125, 7, "", "", 0, "", false, 0, "")
	pdf.CellFormat(27, 7, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(28, 7, order.Total.StringFixed(2), "T", 1, "R", false, 0, "")

	if order.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, "Notes: "+order.Notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
