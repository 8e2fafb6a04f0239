package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// inverseScale is the precision used for reciprocal rates. Bank documents
// quote rates with up to six fractional digits; ten digits keep the
// round-trip error below one minor unit for realistic amounts.
const inverseScale = 10

// ExchangeRate is a directed conversion rate: one unit of the base
// currency buys Rate units of the term currency. It is attached once to a
// document context and read by every section that needs a conversion.
type ExchangeRate struct {
	rate decimal.Decimal
	base string
	term string
}

// NewExchangeRate creates a rate quoted as base/term.
func NewExchangeRate(rate decimal.Decimal, baseCurrency, termCurrency string) ExchangeRate {
	return ExchangeRate{rate: rate, base: baseCurrency, term: termCurrency}
}

// Rate returns the quoted base/term rate.
func (r ExchangeRate) Rate() decimal.Decimal {
	return r.rate
}

// BaseCurrency returns the base (source) currency code.
func (r ExchangeRate) BaseCurrency() string {
	return r.base
}

// TermCurrency returns the term (quote) currency code.
func (r ExchangeRate) TermCurrency() string {
	return r.term
}

// RateFor returns the rate that converts *into* the given currency: the
// quoted rate for the term currency, its reciprocal (half-up, 10 digits)
// for the base currency.
func (r ExchangeRate) RateFor(currencyCode string) (decimal.Decimal, error) {
	switch currencyCode {
	case r.term:
		return r.rate, nil
	case r.base:
		return decimal.NewFromInt(1).DivRound(r.rate, inverseScale), nil
	default:
		return decimal.Zero, fmt.Errorf("exchange rate %s/%s does not involve %s", r.base, r.term, currencyCode)
	}
}

// Convert converts amount into targetCurrency, multiplying or dividing by
// the quoted rate depending on direction, rounding half away from zero to
// the target currency's minor unit.
func (r ExchangeRate) Convert(targetCurrency string, amount *Money) (*Money, error) {
	switch {
	case amount.Currency() == r.base && targetCurrency == r.term:
		return NewFromDecimal(amount.Decimal().Mul(r.rate), targetCurrency), nil
	case amount.Currency() == r.term && targetCurrency == r.base:
		return NewFromDecimal(amount.Decimal().DivRound(r.rate, inverseScale), targetCurrency), nil
	case amount.Currency() == targetCurrency:
		return amount, nil
	default:
		return nil, fmt.Errorf("cannot convert %s to %s with rate %s/%s",
			amount.Currency(), targetCurrency, r.base, r.term)
	}
}

func (r ExchangeRate) String() string {
	return fmt.Sprintf("%s/%s %s", r.base, r.term, r.rate.String())
}
