package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// The PDF core fonts are cp1252, so symbols outside it are spelled out.
var pdfSymbols = map[currency.Unit]string{
	currency.USD: "$",
	currency.INR: "Rs. ",
	currency.GBP: "GBP ",
	currency.EUR: "EUR ",
	currency.JPY: "JPY ",
}

// Money formats amounts with the grouping rules of a locale (en-IN groups
// by lakh, en-US by thousand) and the locale's currency.
type Money struct {
	tag     language.Tag
	unit    currency.Unit
	printer *message.Printer
}

func NewMoney(locale string) (*Money, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse currency locale %q: %w", locale, err)
	}
	unit, confidence := currency.FromTag(tag)
	if confidence == language.No {
		unit = currency.USD
	}
	return &Money{tag: tag, unit: unit, printer: message.NewPrinter(tag)}, nil
}

func (m *Money) Locale() string {
	return m.tag.String()
}

func (m *Money) Currency() string {
	return m.unit.String()
}

func (m *Money) Format(amount decimal.Decimal) string {
	amount = amount.Round(2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	digits := m.printer.Sprint(number.Decimal(amount.InexactFloat64(), number.Scale(2)))
	return sign + m.symbol() + digits
}

func (m *Money) symbol() string {
	if s, ok := pdfSymbols[m.unit]; ok {
		return s
	}
	return m.unit.String() + " "
}
