// Package model holds the domain objects populated by the parsing engine:
// transactions, securities, units and the wrapped Item results handed to
// the import layer.
package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fbruell/wpx/money"
)

// SharesFactor is the fixed-point factor for share counts: a count of
// 10.5 shares is stored as 1_050_000_000.
const SharesFactor = 100_000_000

// Type classifies a transaction.
type Type string

const (
	Buy            Type = "BUY"
	Sell           Type = "SELL"
	Dividend       Type = "DIVIDEND"
	Taxes          Type = "TAXES"
	TaxRefund      Type = "TAX_REFUND"
	Fees           Type = "FEES"
	FeesRefund     Type = "FEES_REFUND"
	Interest       Type = "INTEREST"
	InterestCharge Type = "INTEREST_CHARGE"
	Deposit        Type = "DEPOSIT"
	Removal        Type = "REMOVAL"
)

// IsLiquidation reports whether the type reduces a position or pays out
// (sell, dividend, refunds) as opposed to acquiring or charging.
func (t Type) IsLiquidation() bool {
	switch t {
	case Sell, Dividend, TaxRefund, FeesRefund, Interest, Removal:
		return true
	}
	return false
}

// UnitType classifies a sub-amount attached to a transaction.
type UnitType string

const (
	GrossValueUnit UnitType = "GROSS_VALUE"
	TaxUnit        UnitType = "TAX"
	FeeUnit        UnitType = "FEE"
)

// Unit is a sub-amount of a transaction. For cross-currency units, Forex
// holds the amount in the foreign currency and Rate the conversion rate
// used; both are unset for same-currency taxes and fees.
type Unit struct {
	Type   UnitType        `json:"type"`
	Amount *money.Money    `json:"amount"`
	Forex  *money.Money    `json:"forex,omitempty"`
	Rate   decimal.Decimal `json:"rate,omitempty"`
}

// Transaction is the in-progress domain object a pipeline populates. The
// settlement amount is always in integer minor units; Shares uses the
// SharesFactor fixed point.
type Transaction struct {
	Type     Type         `json:"type"`
	Date     time.Time    `json:"date"`
	Shares   int64        `json:"shares,omitempty"`
	Security *Security    `json:"security,omitempty"`
	Amount   *money.Money `json:"amount"`
	Units    []Unit       `json:"units,omitempty"`
	Note     string       `json:"note,omitempty"`
	Source   string       `json:"source,omitempty"`
}

// CurrencyCode returns the settlement currency, or "" if no amount has
// been assigned yet.
func (t *Transaction) CurrencyCode() string {
	return t.Amount.Currency()
}

// AddUnit attaches a sub-amount.
func (t *Transaction) AddUnit(u Unit) {
	t.Units = append(t.Units, u)
}

// Unit returns the first unit of the given type.
func (t *Transaction) Unit(ut UnitType) (Unit, bool) {
	for _, u := range t.Units {
		if u.Type == ut {
			return u, true
		}
	}
	return Unit{}, false
}

// RemoveUnit removes the first unit of the given type.
func (t *Transaction) RemoveUnit(ut UnitType) {
	for i, u := range t.Units {
		if u.Type == ut {
			t.Units = append(t.Units[:i], t.Units[i+1:]...)
			return
		}
	}
}

// UnitSum totals all units of the given type in the settlement currency.
func (t *Transaction) UnitSum(ut UnitType) *money.Money {
	sum := money.Zero(t.CurrencyCode())
	for _, u := range t.Units {
		if u.Type == ut && u.Amount.Currency() == sum.Currency() {
			sum, _ = sum.Add(u.Amount)
		}
	}
	return sum
}

// GrossValue derives the gross amount from the settlement amount and the
// attached tax and fee units: for acquisitions the amount already
// includes taxes and fees, for liquidations it is net of them.
func (t *Transaction) GrossValue() *money.Money {
	taxes := t.UnitSum(TaxUnit)
	fees := t.UnitSum(FeeUnit)

	gross := t.Amount
	if t.Type.IsLiquidation() {
		gross, _ = gross.Add(taxes)
		gross, _ = gross.Add(fees)
	} else {
		gross, _ = gross.Subtract(taxes)
		gross, _ = gross.Subtract(fees)
	}
	return gross
}
