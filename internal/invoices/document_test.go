package invoices

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/antiquestore/antique-store-backend/pkg/db/models"
	"github.com/antiquestore/antique-store-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testSettings = Settings{
	StoreName:    "Antique Store",
	StoreAddress: "12 Market Lane",
	StorePhone:   "+1 555 0100",
	StoreEmail:   "hello@antique.example",
	Locale:       "en-US",
	Currency:     "USD",
	DateLayout:   "02/01/2006",
}

func sampleOrder(itemCount int) *models.Order {
	phone := "+1 555 0199"
	txn := "txn_9f8e7d"
	paidAt := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-1001",
		UserID:          uuid.New(),
		Status:          enums.OrderStatusDelivered,
		ShippingName:    "Ada Collector",
		ShippingPhone:   phone,
		ShippingAddress: "4 Harbour Road",
		ShippingFee:     decimal.RequireFromString("15.00"),
		DiscountAmount:  decimal.RequireFromString("10.00"),
		TaxAmount:       decimal.RequireFromString("0"),
		TotalAmount:     decimal.RequireFromString("1434.00"),
		CreatedAt:       time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		User:            &models.User{FullName: "Ada Collector", Email: "ada@example.com", Phone: &phone},
		Payment: &models.Payment{
			Method:        enums.PaymentMethodCard,
			Status:        enums.PaymentStatusPaid,
			TransactionID: &txn,
			Amount:        decimal.RequireFromString("1434.00"),
			PaidAt:        &paidAt,
		},
	}
	for i := 0; i < itemCount; i++ {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: uuid.New(),
			Quantity:  i%3 + 1,
			UnitPrice: decimal.New(int64(1000+i*250), -2),
			Product:   &models.Product{Name: fmt.Sprintf("Item %02d", i+1)},
		})
	}
	return order
}

func TestBuildDocumentRowsFollowItems(t *testing.T) {
	order := sampleOrder(4)

	doc := BuildDocument(order, testSettings)

	if len(doc.Rows) != len(order.Items) {
		t.Fatalf("expected %d rows, got %d", len(order.Items), len(doc.Rows))
	}
	for i, row := range doc.Rows {
		item := order.Items[i]
		if row.Position != i+1 {
			t.Fatalf("row %d has position %d", i, row.Position)
		}
		if row.Product != item.Product.Name {
			t.Fatalf("row %d product %q, want %q", i, row.Product, item.Product.Name)
		}
		want := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if !row.Subtotal.Equal(want) {
			t.Fatalf("row %d subtotal %s, want %s", i, row.Subtotal, want)
		}
	}
	if !doc.Summary.GrandTotal.Equal(order.TotalAmount) {
		t.Fatalf("grand total %s, want %s", doc.Summary.GrandTotal, order.TotalAmount)
	}
}

func TestBuildDocumentSubtotalFallsBackToItems(t *testing.T) {
	order := sampleOrder(2)
	// items: 1 x 10.00 and 2 x 12.50
	doc := BuildDocument(order, testSettings)
	if !doc.Summary.Subtotal.Equal(decimal.RequireFromString("35.00")) {
		t.Fatalf("expected computed subtotal 35.00, got %s", doc.Summary.Subtotal)
	}

	order.SubtotalAmount = decimal.RequireFromString("40.00")
	doc = BuildDocument(order, testSettings)
	if !doc.Summary.Subtotal.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("expected stored subtotal, got %s", doc.Summary.Subtotal)
	}
}

func TestBuildDocumentFormatsBlocks(t *testing.T) {
	doc := BuildDocument(sampleOrder(1), testSettings)

	if doc.InvoiceNumber != "INV-ORD-1001" {
		t.Fatalf("unexpected invoice number %q", doc.InvoiceNumber)
	}
	if doc.Order.Date != "01/03/2026" {
		t.Fatalf("unexpected order date %q", doc.Order.Date)
	}
	if doc.Payment.Method != "Card" || doc.Payment.Status != "PAID" || doc.Payment.PaidAt != "02/03/2026" {
		t.Fatalf("unexpected payment block %+v", doc.Payment)
	}
	if !strings.Contains(doc.Summary.TotalText, "1,434.00") || !strings.HasPrefix(doc.Summary.TotalText, "$") {
		t.Fatalf("unexpected total text %q", doc.Summary.TotalText)
	}
	if !strings.HasPrefix(doc.Summary.DiscountText, "-") {
		t.Fatalf("discount should print negative, got %q", doc.Summary.DiscountText)
	}
	if doc.Customer.Address != Placeholder {
		t.Fatalf("missing address should be placeholder, got %q", doc.Customer.Address)
	}
	if doc.Footer != "Thank you for shopping with Antique Store." {
		t.Fatalf("unexpected footer %q", doc.Footer)
	}
}

func TestBuildDocumentPlaceholdersForMissingData(t *testing.T) {
	order := &models.Order{
		Items: []models.OrderItem{{Quantity: 0, UnitPrice: decimal.Zero}},
	}

	doc := BuildDocument(order, Settings{})

	if doc.InvoiceNumber != Placeholder || doc.Order.Number != Placeholder || doc.Order.Date != Placeholder {
		t.Fatalf("expected placeholders in order block, got %+v", doc.Order)
	}
	if doc.Customer.Name != Placeholder || doc.Payment.Method != Placeholder || doc.Payment.Amount != Placeholder {
		t.Fatal("expected placeholders for missing customer and payment")
	}
	if doc.Rows[0].Product != Placeholder || doc.Rows[0].QuantityText != Placeholder {
		t.Fatalf("expected placeholder row, got %+v", doc.Rows[0])
	}
	if doc.Header.StoreName != Placeholder {
		t.Fatalf("expected placeholder store name, got %q", doc.Header.StoreName)
	}

	nilDoc := BuildDocument(nil, testSettings)
	if len(nilDoc.Rows) != 0 || nilDoc.InvoiceNumber != Placeholder {
		t.Fatalf("nil order should produce an empty document, got %+v", nilDoc)
	}
}

func TestFormatterMoney(t *testing.T) {
	usd := NewFormatter("en-US", "USD", "")
	if got := usd.Money(decimal.RequireFromString("1250.5")); got != "$1,250.50" {
		t.Fatalf("unexpected usd amount %q", got)
	}
	if got := usd.Money(decimal.RequireFromString("-3.456")); got != "-$3.46" {
		t.Fatalf("unexpected negative amount %q", got)
	}

	fallback := NewFormatter("not a locale", "???", "")
	if got := fallback.Money(decimal.NewFromInt(2)); !strings.HasSuffix(got, "2.00") {
		t.Fatalf("unexpected fallback amount %q", got)
	}
	if got := fallback.Date(time.Time{}); got != Placeholder {
		t.Fatalf("zero date should be placeholder, got %q", got)
	}
}
