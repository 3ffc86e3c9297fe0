package invoices

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Layout constants in millimetres on portrait A4.
const (
	pageMargin     = 15.0
	breakThreshold = 270.0
	lineHeight     = 5.0
	rowHeight      = 7.0
	contentWidth   = 180.0
	pageNumAlias   = "{nb}"
)

var tableColumns = []struct {
	title string
	width float64
	align string
}{
	{title: "#", width: 10, align: "C"},
	{title: "Product", width: 85, align: "L"},
	{title: "Qty", width: 20, align: "R"},
	{title: "Unit price", width: 32, align: "R"},
	{title: "Subtotal", width: 33, align: "R"},
}

// Renderer turns a document into printable bytes.
type Renderer interface {
	Render(doc Document) ([]byte, error)
}

// PDFRenderer draws documents as A4 PDFs.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(doc Document) ([]byte, error) {
	pdf := draw(doc)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("draw invoice: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// draw lays out the whole document. Output is deterministic: document dates
// are pinned to the order date and catalog entries are sorted.
func draw(doc Document) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pinned := doc.IssuedAt.UTC()
	if doc.IssuedAt.IsZero() {
		pinned = time.Unix(0, 0).UTC()
	}
	pdf.SetCreationDate(pinned)
	pdf.SetModificationDate(pinned)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(true)

	registerFonts(pdf)
	pdf.SetTitle(doc.InvoiceNumber, true)
	pdf.SetAuthor(doc.Header.StoreName, true)
	pdf.SetCreator("antique-store invoices", true)

	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages(pageNumAlias)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(contentWidth, 4, doc.Footer, "", 1, "C", false, 0, "")
		pdf.CellFormat(contentWidth, 4, fmt.Sprintf("Page %d of %s", pdf.PageNo(), pageNumAlias), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	drawHeader(pdf, doc)
	drawParties(pdf, doc)
	drawItems(pdf, doc)
	drawSummary(pdf, doc)
	drawPayment(pdf, doc)
	return pdf
}

func drawHeader(pdf *fpdf.Fpdf, doc Document) {
	h := doc.Header
	pdf.SetFont(fontFamily, "B", 18)
	pdf.CellFormat(110, 9, h.StoreName, "", 0, "L", false, 0, "")
	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(70, 9, h.Title, "", 1, "R", false, 0, "")

	pdf.SetFont(fontFamily, "", 9)
	pdf.CellFormat(110, lineHeight, h.StoreAddress, "", 0, "L", false, 0, "")
	pdf.CellFormat(70, lineHeight, "No. "+doc.InvoiceNumber, "", 1, "R", false, 0, "")
	pdf.CellFormat(110, lineHeight, "Phone: "+h.StorePhone, "", 0, "L", false, 0, "")
	pdf.CellFormat(70, lineHeight, "Date: "+h.IssuedOn, "", 1, "R", false, 0, "")
	pdf.CellFormat(110, lineHeight, "Email: "+h.StoreEmail, "", 1, "L", false, 0, "")

	pdf.Ln(2)
	y := pdf.GetY()
	pdf.SetDrawColor(160, 160, 160)
	pdf.Line(pageMargin, y, pageMargin+contentWidth, y)
	pdf.Ln(4)
}

func drawParties(pdf *fpdf.Fpdf, doc Document) {
	c := doc.Customer
	o := doc.Order

	pdf.SetFont(fontFamily, "B", 10)
	pdf.CellFormat(90, 6, "Bill to", "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 6, "Order", "", 1, "L", false, 0, "")

	left := []string{c.Name, "Email: " + c.Email, "Phone: " + c.Phone, "Address: " + c.Address}
	right := []string{
		"Order no.: " + o.Number,
		"Order date: " + o.Date,
		"Status: " + o.Status,
		"Ship to: " + o.ShippingName + ", " + o.ShippingPhone,
		"Shipping address: " + o.ShippingAddress,
	}
	pdf.SetFont(fontFamily, "", 9)
	for i := 0; i < len(left) || i < len(right); i++ {
		l, r := "", ""
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		pdf.CellFormat(90, lineHeight, fitText(pdf, l, 88), "", 0, "L", false, 0, "")
		pdf.CellFormat(90, lineHeight, fitText(pdf, r, 88), "", 1, "L", false, 0, "")
	}
	if o.Notes != Placeholder {
		pdf.MultiCell(contentWidth, lineHeight, "Notes: "+o.Notes, "", "L", false)
	}
	pdf.Ln(4)
}

func drawTableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetFillColor(235, 228, 215)
	for _, col := range tableColumns {
		pdf.CellFormat(col.width, rowHeight, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(fontFamily, "", 9)
}

// ensureRoom starts a new page when the next block would cross the break
// threshold. Continuation pages repeat the table header when asked to.
func ensureRoom(pdf *fpdf.Fpdf, height float64, doc Document, repeatTableHeader bool) {
	if pdf.GetY()+height <= breakThreshold {
		return
	}
	pdf.AddPage()
	pdf.SetFont(fontFamily, "I", 9)
	pdf.CellFormat(contentWidth, lineHeight, doc.InvoiceNumber+" (continued)", "", 1, "R", false, 0, "")
	pdf.Ln(2)
	if repeatTableHeader {
		drawTableHeader(pdf)
	}
}

func drawItems(pdf *fpdf.Fpdf, doc Document) {
	ensureRoom(pdf, 2*rowHeight, doc, false)
	drawTableHeader(pdf)

	if len(doc.Rows) == 0 {
		pdf.CellFormat(contentWidth, rowHeight, "No items", "1", 1, "C", false, 0, "")
		return
	}
	for _, row := range doc.Rows {
		ensureRoom(pdf, rowHeight, doc, true)
		values := []string{
			fmt.Sprintf("%d", row.Position),
			fitText(pdf, row.Product, tableColumns[1].width-2),
			row.QuantityText,
			row.UnitPriceText,
			row.SubtotalText,
		}
		for i, col := range tableColumns {
			pdf.CellFormat(col.width, rowHeight, values[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func drawSummary(pdf *fpdf.Fpdf, doc Document) {
	s := doc.Summary
	lines := []struct {
		label, value string
		bold         bool
	}{
		{label: "Subtotal", value: s.SubtotalText},
		{label: "Shipping", value: s.ShippingText},
		{label: "Discount", value: s.DiscountText},
		{label: "Tax", value: s.TaxText},
		{label: "Grand total", value: s.TotalText, bold: true},
	}
	ensureRoom(pdf, float64(len(lines))*6+4, doc, false)
	pdf.Ln(3)
	for _, line := range lines {
		style := ""
		if line.bold {
			style = "B"
		}
		pdf.SetFont(fontFamily, style, 10)
		pdf.CellFormat(130, 6, line.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, line.value, "", 1, "R", false, 0, "")
	}
}

func drawPayment(pdf *fpdf.Fpdf, doc Document) {
	p := doc.Payment
	ensureRoom(pdf, 6+5*lineHeight+4, doc, false)
	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 10)
	pdf.CellFormat(contentWidth, 6, "Payment", "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 9)
	for _, line := range []string{
		"Method: " + p.Method,
		"Status: " + p.Status,
		"Transaction: " + p.TransactionID,
		"Paid on: " + p.PaidAt,
		"Amount: " + p.Amount,
	} {
		pdf.CellFormat(contentWidth, lineHeight, line, "", 1, "L", false, 0, "")
	}
}

// fitText truncates s with an ellipsis so it fits width millimetres in the
// current font.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
