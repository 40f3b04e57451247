package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is the admin's locale for number grouping and dates.
const DefaultLocale = "es"

// Formatter renders KPI values with K/M suffixes and locale-grouped digits.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter builds a formatter for the BCP 47 locale, falling back to Spanish.
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || locale == "" {
		tag = language.Spanish
	}
	return Formatter{printer: message.NewPrinter(tag)}
}

var defaultFormatter = NewFormatter(DefaultLocale)

// FormatValue formats numbers with the default locale and returns other values untouched.
func FormatValue(value any) string {
	return defaultFormatter.Value(value)
}

// Value formats numeric inputs via Number; strings pass through.
func (f Formatter) Value(value any) string {
	if n, ok := toFloat(value); ok {
		return f.Number(n)
	}
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Number applies the K/M thresholds, otherwise locale grouping.
func (f Formatter) Number(value float64) string {
	switch {
	case value >= 1_000_000:
		return strconv.FormatFloat(value/1_000_000, 'f', 1, 64) + "M"
	case value >= 1_000:
		return strconv.FormatFloat(value/1_000, 'f', 1, 64) + "K"
	}
	if f.printer == nil {
		f = defaultFormatter
	}
	return f.printer.Sprint(number.Decimal(value, number.MaxFractionDigits(3)))
}

// Percent renders "<value>%" using the plain number form.
func (f Formatter) Percent(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + "%"
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	default:
		return 0, false
	}
}
