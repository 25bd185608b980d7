package listing

import (
	"log/slog"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used for market cap text when no locale is configured.
const DefaultLocale = "en"

type formatter struct {
	p *message.Printer
}

var defaultFormatter = formatter{p: message.NewPrinter(language.English)}

// newFormatter returns a formatter for locale, falling back to English when
// the tag does not parse.
func newFormatter(locale string) formatter {
	if locale == "" {
		return defaultFormatter
	}
	tag, err := language.Parse(locale)
	if err != nil {
		slog.Warn("invalid locale, using default", "locale", locale, "error", err)
		return defaultFormatter
	}
	return formatter{p: message.NewPrinter(tag)}
}

// marketCap formats amount with grouping. Amounts in an ISO 4217 currency
// carry its symbol.
func (f formatter) marketCap(amount float64, code string) string {
	if code != "" {
		if cur, err := currency.ParseISO(code); err == nil {
			return f.p.Sprintf("%v", currency.Symbol(cur.Amount(amount)))
		}
	}
	return f.p.Sprintf("%v", number.Decimal(amount))
}

// ValidLocale reports whether locale is a parseable BCP 47 tag.
func ValidLocale(locale string) bool {
	_, err := language.Parse(locale)
	return err == nil
}
