// Package money provides currency-safe financial arithmetic using integer
// minor units and ISO-4217 currency codes. It wraps go-money for checked
// arithmetic and shopspring/decimal for exact conversions; no amount is
// ever represented as a float.
package money

import (
	"encoding/json"
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	EUR = "EUR"
	CHF = "CHF"
	USD = "USD"
	GBP = "GBP"
)

// Money represents a monetary value with currency. The zero-value-adjacent
// nil pointer is safe to query and reports a zero amount with no currency.
type Money struct {
	m *gomoney.Money
}

// New creates a Money value from minor units (cents) and a currency code.
func New(amount int64, currencyCode string) *Money {
	return &Money{m: gomoney.New(amount, currencyCode)}
}

// NewFromDecimal creates Money from an exact decimal value, scaled by the
// currency's minor-unit fraction and rounded half away from zero.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := gomoney.GetCurrency(currencyCode)
	fraction := 2
	if currency != nil {
		fraction = currency.Fraction
	}
	cents := amount.Shift(int32(fraction)).Round(0).IntPart()
	return New(cents, currencyCode)
}

// Zero returns a zero Money value for the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the amount in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code, or "" for a nil value.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero reports whether the amount is exactly zero.
func (m *Money) IsZero() bool {
	return m.Amount() == 0
}

// Decimal returns the amount as an exact decimal in major units.
func (m *Money) Decimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.New(m.m.Amount(), -int32(m.m.Currency().Fraction))
}

// Add returns m + other. Both operands must carry the same currency.
func (m *Money) Add(other *Money) (*Money, error) {
	if m.Currency() != other.Currency() {
		return nil, fmt.Errorf("currency mismatch: %s vs %s", m.Currency(), other.Currency())
	}
	return New(m.Amount()+other.Amount(), m.Currency()), nil
}

// Subtract returns m - other. Both operands must carry the same currency.
func (m *Money) Subtract(other *Money) (*Money, error) {
	if m.Currency() != other.Currency() {
		return nil, fmt.Errorf("currency mismatch: %s vs %s", m.Currency(), other.Currency())
	}
	return New(m.Amount()-other.Amount(), m.Currency()), nil
}

// Equal reports whether both values carry the same currency and amount.
func (m *Money) Equal(other *Money) bool {
	return m.Currency() == other.Currency() && m.Amount() == other.Amount()
}

type moneyJSON struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// MarshalJSON renders the value as minor units plus currency code.
func (m *Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.Amount(), Currency: m.Currency()})
}

// UnmarshalJSON restores a value marshalled by MarshalJSON.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v moneyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.m = gomoney.New(v.Amount, v.Currency)
	return nil
}

// String renders the value for notes and logs, e.g. "EUR 1234.56".
func (m *Money) String() string {
	if m == nil || m.m == nil {
		return "0"
	}
	return fmt.Sprintf("%s %s", m.Currency(), m.Decimal().StringFixed(int32(m.m.Currency().Fraction)))
}
