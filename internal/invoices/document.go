package invoices

import (
	"fmt"
	"strings"
	"time"

	"github.com/antiquestore/antique-store-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Settings carries the store identity and locale printed on every invoice.
type Settings struct {
	StoreName    string
	StoreAddress string
	StorePhone   string
	StoreEmail   string
	Locale       string
	Currency     string
	DateLayout   string
}

// Document is the fully formatted invoice content. Rendering draws it
// without further lookups or arithmetic.
type Document struct {
	InvoiceNumber string
	IssuedAt      time.Time
	Header        HeaderBlock
	Customer      CustomerBlock
	Order         OrderBlock
	Rows          []Row
	Summary       Summary
	Payment       PaymentBlock
	Footer        string
}

type HeaderBlock struct {
	StoreName    string
	StoreAddress string
	StorePhone   string
	StoreEmail   string
	Title        string
	IssuedOn     string
}

type CustomerBlock struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type OrderBlock struct {
	Number          string
	Date            string
	Status          string
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	Notes           string
}

// Row is one itemized line. Amounts are kept alongside their display text.
type Row struct {
	Position      int
	Product       string
	Quantity      int
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
	QuantityText  string
	UnitPriceText string
	SubtotalText  string
}

type Summary struct {
	Subtotal     decimal.Decimal
	Shipping     decimal.Decimal
	Discount     decimal.Decimal
	Tax          decimal.Decimal
	GrandTotal   decimal.Decimal
	SubtotalText string
	ShippingText string
	DiscountText string
	TaxText      string
	TotalText    string
}

type PaymentBlock struct {
	Method        string
	Status        string
	TransactionID string
	PaidAt        string
	Amount        string
}

// InvoiceNumber derives the printed invoice number from the order number.
func InvoiceNumber(order *models.Order) string {
	if order == nil || strings.TrimSpace(order.OrderNumber) == "" {
		return Placeholder
	}
	return "INV-" + strings.TrimSpace(order.OrderNumber)
}

// BuildDocument maps an order aggregate to invoice content. It never fails:
// missing relations and blank fields print as the placeholder.
func BuildDocument(order *models.Order, settings Settings) Document {
	f := NewFormatter(settings.Locale, settings.Currency, settings.DateLayout)
	if order == nil {
		order = &models.Order{}
	}

	doc := Document{
		InvoiceNumber: InvoiceNumber(order),
		IssuedAt:      order.CreatedAt,
		Header: HeaderBlock{
			StoreName:    orPlaceholder(settings.StoreName),
			StoreAddress: orPlaceholder(settings.StoreAddress),
			StorePhone:   orPlaceholder(settings.StorePhone),
			StoreEmail:   orPlaceholder(settings.StoreEmail),
			Title:        "INVOICE",
			IssuedOn:     f.Date(order.CreatedAt),
		},
		Order: OrderBlock{
			Number:          orPlaceholder(order.OrderNumber),
			Date:            f.Date(order.CreatedAt),
			Status:          orPlaceholder(strings.ToUpper(string(order.Status))),
			ShippingName:    orPlaceholder(order.ShippingName),
			ShippingPhone:   orPlaceholder(order.ShippingPhone),
			ShippingAddress: orPlaceholder(order.ShippingAddress),
			Notes:           ptrOrPlaceholder(order.Notes),
		},
		Customer: customerBlock(order.User),
		Payment:  paymentBlock(order.Payment, f),
		Footer:   footerText(settings.StoreName),
	}

	rows := make([]Row, 0, len(order.Items))
	itemsTotal := decimal.Zero
	for i, item := range order.Items {
		row := buildRow(i+1, item, f)
		itemsTotal = itemsTotal.Add(row.Subtotal)
		rows = append(rows, row)
	}
	doc.Rows = rows

	subtotal := order.SubtotalAmount
	if subtotal.IsZero() {
		subtotal = itemsTotal
	}
	doc.Summary = Summary{
		Subtotal:     subtotal,
		Shipping:     order.ShippingFee,
		Discount:     order.DiscountAmount,
		Tax:          order.TaxAmount,
		GrandTotal:   order.TotalAmount,
		SubtotalText: f.Money(subtotal),
		ShippingText: f.Money(order.ShippingFee),
		DiscountText: f.Money(order.DiscountAmount.Neg()),
		TaxText:      f.Money(order.TaxAmount),
		TotalText:    f.Money(order.TotalAmount),
	}
	return doc
}

func buildRow(position int, item models.OrderItem, f *Formatter) Row {
	name := Placeholder
	if item.Product != nil {
		name = orPlaceholder(item.Product.Name)
	}
	row := Row{
		Position:      position,
		Product:       name,
		Quantity:      item.Quantity,
		UnitPrice:     item.UnitPrice,
		Subtotal:      item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		QuantityText:  Placeholder,
		UnitPriceText: f.Money(item.UnitPrice),
	}
	if item.Quantity > 0 {
		row.QuantityText = f.Integer(item.Quantity)
	}
	row.SubtotalText = f.Money(row.Subtotal)
	return row
}

func customerBlock(user *models.User) CustomerBlock {
	if user == nil {
		return CustomerBlock{Name: Placeholder, Email: Placeholder, Phone: Placeholder, Address: Placeholder}
	}
	return CustomerBlock{
		Name:    orPlaceholder(user.FullName),
		Email:   orPlaceholder(user.Email),
		Phone:   ptrOrPlaceholder(user.Phone),
		Address: ptrOrPlaceholder(user.Address),
	}
}

func paymentBlock(payment *models.Payment, f *Formatter) PaymentBlock {
	if payment == nil {
		return PaymentBlock{Method: Placeholder, Status: Placeholder, TransactionID: Placeholder, PaidAt: Placeholder, Amount: Placeholder}
	}
	method := Placeholder
	if payment.Method.IsValid() {
		method = payment.Method.Label()
	}
	status := Placeholder
	if payment.Status.IsValid() {
		status = strings.ToUpper(string(payment.Status))
	}
	return PaymentBlock{
		Method:        method,
		Status:        status,
		TransactionID: ptrOrPlaceholder(payment.TransactionID),
		PaidAt:        f.DatePtr(payment.PaidAt),
		Amount:        f.Money(payment.Amount),
	}
}

func footerText(storeName string) string {
	name := strings.TrimSpace(storeName)
	if name == "" {
		return "Thank you for your purchase."
	}
	return fmt.Sprintf("Thank you for shopping with %s.", name)
}
