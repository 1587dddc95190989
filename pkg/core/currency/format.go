// Package currency renders monetary amounts for display. It never converts
// between currencies.
package currency

import (
	"math"
	"strconv"
	"strings"

	"amplify_roi/pkg/models"

	"github.com/shopspring/decimal"
)

const defaultDecimalPlaces = 2

// DefaultCurrencies covers every currency used by the bundled country data.
var DefaultCurrencies = []models.Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar", DecimalPlaces: 2},
	{Code: "GBP", Symbol: "£", Name: "British Pound", DecimalPlaces: 2},
	{Code: "EUR", Symbol: "€", Name: "Euro", DecimalPlaces: 2},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", DecimalPlaces: 2},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar", DecimalPlaces: 2},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen", DecimalPlaces: 0},
	{Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", DecimalPlaces: 2},
	{Code: "BRL", Symbol: "R$", Name: "Brazilian Real", DecimalPlaces: 2},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee", DecimalPlaces: 2},
	{Code: "MXN", Symbol: "MX$", Name: "Mexican Peso", DecimalPlaces: 2},
	{Code: "ZAR", Symbol: "R", Name: "South African Rand", DecimalPlaces: 2},
	{Code: "KRW", Symbol: "₩", Name: "South Korean Won", DecimalPlaces: 0},
}

// Formatter formats amounts by ISO currency code. It is read-only after
// construction and safe for concurrent use.
type Formatter struct {
	currencies map[string]models.Currency
}

// NewFormatter builds a formatter from DefaultCurrencies plus any extra
// currencies; later entries win on duplicate codes.
func NewFormatter(extra ...models.Currency) *Formatter {
	f := &Formatter{currencies: make(map[string]models.Currency, len(DefaultCurrencies)+len(extra))}
	for _, c := range DefaultCurrencies {
		f.currencies[c.Code] = c
	}
	for _, c := range extra {
		if c.Code == "" {
			continue
		}
		c.Code = strings.ToUpper(c.Code)
		if c.Symbol == "" {
			if known, ok := f.currencies[c.Code]; ok {
				c.Symbol = known.Symbol
			}
		}
		f.currencies[c.Code] = c
	}
	return f
}

// Lookup returns the currency definition for code.
func (f *Formatter) Lookup(code string) (models.Currency, bool) {
	c, ok := f.currencies[strings.ToUpper(code)]
	return c, ok
}

// Format renders amount in the currency's conventions, e.g. "$1,234.57",
// "-€12.00" or "¥1,235". Unknown codes render as "XYZ 1,234.57".
func (f *Formatter) Format(amount float64, code string) string {
	c, ok := f.Lookup(code)
	if !ok {
		return strings.ToUpper(code) + " " + formatNumber(amount, defaultDecimalPlaces)
	}

	body := formatNumber(amount, c.DecimalPlaces)
	if strings.HasPrefix(body, "-") {
		return "-" + c.Symbol + body[1:]
	}
	return c.Symbol + body
}

// formatNumber rounds half away from zero to places and groups thousands.
// NaN and infinities are rendered as strconv spells them.
func formatNumber(amount float64, places int) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return strconv.FormatFloat(amount, 'f', -1, 64)
	}
	d := decimal.NewFromFloat(amount).Round(int32(places))
	negative := d.IsNegative()

	fixed := d.Abs().StringFixed(int32(places))
	intPart, frac := fixed, ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, frac = fixed[:i], fixed[i:]
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}
