package invoices

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/shopspring/decimal"
)

func TestRenderProducesPDF(t *testing.T) {
	out, err := NewPDFRenderer().Render(BuildDocument(sampleOrder(3), testSettings))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", out[:8])
	}
}

func TestRenderBreaksLongOrdersAcrossPages(t *testing.T) {
	short := draw(BuildDocument(sampleOrder(3), testSettings))
	if got := short.PageCount(); got != 1 {
		t.Fatalf("expected a single page for 3 items, got %d", got)
	}

	long := draw(BuildDocument(sampleOrder(60), testSettings))
	if err := long.Error(); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if got := long.PageCount(); got < 3 {
		t.Fatalf("expected at least 3 pages for 60 items, got %d", got)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	doc := BuildDocument(sampleOrder(5), testSettings)
	renderer := NewPDFRenderer()

	first, err := renderer.Render(doc)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := renderer.Render(doc)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("identical documents should render identical bytes")
	}
}

func TestRenderKeepsNonLatinTextAndCurrency(t *testing.T) {
	settings := testSettings
	settings.Locale = "vi-VN"
	settings.Currency = "VND"

	order := sampleOrder(1)
	order.Items[0].Product.Name = "Bình gốm Chu Đậu"
	order.Items[0].Quantity = 1
	order.Items[0].UnitPrice = decimal.NewFromInt(1500000)
	order.User.FullName = "Nguyễn Văn An"

	doc := BuildDocument(order, settings)
	if !strings.ContainsRune(doc.Rows[0].UnitPriceText, '₫') {
		t.Fatalf("expected dong sign in %q", doc.Rows[0].UnitPriceText)
	}

	pdf := draw(doc)
	pdf.SetCompression(false)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}
	raw := buf.Bytes()

	for _, text := range []string{doc.Rows[0].Product, doc.Rows[0].UnitPriceText, doc.Customer.Name} {
		if !bytes.Contains(raw, utf16BE(text)) {
			t.Fatalf("expected %q to be written as unicode text", text)
		}
	}
	if bytes.Contains(raw, []byte("/Helvetica")) {
		t.Fatal("expected only the embedded unicode font")
	}
}

func TestFitTextMeasuresUnicodeRunes(t *testing.T) {
	pdf := draw(BuildDocument(sampleOrder(1), testSettings))
	pdf.SetFont(fontFamily, "", 9)

	name := strings.Repeat("Đồng hồ quả lắc ", 10)
	got := fitText(pdf, name, 40)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation, got %q", got)
	}
	if w := pdf.GetStringWidth(got); w > 40 {
		t.Fatalf("truncated text is %.2fmm wide, want <= 40", w)
	}
	if !strings.HasPrefix(name, strings.TrimSuffix(got, "...")) {
		t.Fatalf("truncation split a rune: %q", got)
	}
}

// utf16BE mirrors how the PDF writer encodes cell text for unicode fonts.
func utf16BE(s string) []byte {
	var out []byte
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u>>8), byte(u))
	}
	out = bytes.ReplaceAll(out, []byte(`\`), []byte(`\\`))
	out = bytes.ReplaceAll(out, []byte("("), []byte(`\(`))
	out = bytes.ReplaceAll(out, []byte(")"), []byte(`\)`))
	return bytes.ReplaceAll(out, []byte("\r"), []byte(`\r`))
}
