package invoices

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder stands in for any missing or unusable field.
const Placeholder = "N/A"

// Formatter renders money and dates for one locale and currency.
type Formatter struct {
	printer    *message.Printer
	symbol     string
	scale      int
	numberFmt  string
	dateLayout string
}

// NewFormatter builds a formatter. Unknown locales fall back to en-US and
// unknown currencies to USD.
func NewFormatter(locale, currencyCode, dateLayout string) *Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.AmericanEnglish
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(currencyCode)))
	if err != nil {
		unit = currency.USD
	}
	if strings.TrimSpace(dateLayout) == "" {
		dateLayout = "02/01/2006"
	}

	printer := message.NewPrinter(tag)
	scale, _ := currency.Standard.Rounding(unit)
	return &Formatter{
		printer:    printer,
		symbol:     printer.Sprint(currency.Symbol(unit)),
		scale:      scale,
		numberFmt:  fmt.Sprintf("%%.%df", scale),
		dateLayout: dateLayout,
	}
}

// Money formats an amount with the currency symbol and locale grouping.
func (f *Formatter) Money(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	value, _ := amount.Round(int32(f.scale)).Float64()
	number := f.printer.Sprintf(f.numberFmt, value)

	sep := ""
	if last := []rune(f.symbol); len(last) > 0 && unicode.IsLetter(last[len(last)-1]) {
		sep = " "
	}
	return fmt.Sprintf("%s%s%s%s", sign, f.symbol, sep, number)
}

func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format(f.dateLayout)
}

func (f *Formatter) DatePtr(t *time.Time) string {
	if t == nil {
		return Placeholder
	}
	return f.Date(*t)
}

func (f *Formatter) Integer(n int) string {
	return f.printer.Sprintf("%d", n)
}

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return Placeholder
	}
	return strings.TrimSpace(value)
}

func ptrOrPlaceholder(value *string) string {
	if value == nil {
		return Placeholder
	}
	return orPlaceholder(*value)
}
