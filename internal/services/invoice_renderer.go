// internal/services/invoice_renderer.go
package services

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// InvoiceDocument is the content of one rendered invoice.
type InvoiceDocument struct {
	View          *OrderView
	InvoiceNum    string
	IssuedAt      time.Time
	PaymentMethod string
	PaymentStatus string
}

// InvoiceRenderer lays out invoices as A4 PDFs.
type InvoiceRenderer struct {
	companyName    string
	currencySymbol string
}

func NewInvoiceRenderer(companyName, currencySymbol string) *InvoiceRenderer {
	if companyName == "" {
		companyName = "Readify"
	}
	return &InvoiceRenderer{companyName: companyName, currencySymbol: currencySymbol}
}

func (r *InvoiceRenderer) money(amount float64) string {
	if r.currencySymbol == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%s %.2f", r.currencySymbol, amount)
}

func (r *InvoiceRenderer) Render(w io.Writer, doc *InvoiceDocument) error {
	if doc == nil || doc.View == nil {
		return fmt.Errorf("nothing to render")
	}
	view := doc.View

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+doc.InvoiceNum, true)
	pdf.SetCreator(r.companyName, true)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, tr(r.companyName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "INVOICE", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	if doc.InvoiceNum != "" {
		pdf.CellFormat(0, 6, tr("Invoice No: "+doc.InvoiceNum), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, "Issued: "+doc.IssuedAt.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, "Order ID: "+view.OrderID.String(), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Order Date: "+view.DateOfOrder.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Status: "+string(view.OrderStatus), "", 1, "L", false, 0, "")
	if doc.PaymentMethod != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Payment: %s (%s)", doc.PaymentMethod, doc.PaymentStatus), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Bill to
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if view.Client != nil {
		pdf.CellFormat(0, 6, tr(view.Client.Name), "", 1, "L", false, 0, "")
		pdf.MultiCell(0, 6, tr(view.Client.Address), "", "L", false)
		pdf.CellFormat(0, 6, tr("Phone: "+view.Client.PhoneNo), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, "Client no longer on record", "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Line items
	widths := []float64{80, 25, 40, 45}
	headers := []string{"Product", "Qty", "Unit Price", "Total"}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range view.Products {
		pdf.CellFormat(widths[0], 7, tr(line.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", line.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(r.money(line.UnitPrice)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, tr(r.money(line.LineTotal)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total Amount", "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[3], 8, tr(r.money(view.TotalAmount)), "1", 1, "R", true, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, tr("Thank you for your business. - "+r.companyName), "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
