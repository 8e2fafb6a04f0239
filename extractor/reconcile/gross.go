// Package reconcile repairs and completes monetary data after section
// matching: attaching currency-conversion units, absorbing one-minor-unit
// rounding residues, and merging transactions that arrive split across
// separate documents.
package reconcile

import (
	"github.com/fbruell/wpx/extractor/engine"
	"github.com/fbruell/wpx/extractor/model"
	"github.com/fbruell/wpx/money"
)

// CheckAndSetGrossUnit attaches a currency-conversion unit (settlement
// gross, foreign gross, rate) to the transaction when its settlement
// currency differs from the security's currency and the document context
// carries an exchange rate. A same-currency transaction needs no unit.
func CheckAndSetGrossUnit(gross, fxGross *money.Money, t *model.Transaction, ctx *engine.Context) {
	if t.Security == nil || t.CurrencyCode() == t.Security.CurrencyCode {
		return
	}

	rate, ok := engine.GetType[money.ExchangeRate](ctx)
	if !ok {
		return
	}

	r, err := rate.RateFor(gross.Currency())
	if err != nil {
		return
	}
	t.AddUnit(model.Unit{Type: model.GrossValueUnit, Amount: gross, Forex: fxGross, Rate: r})
}

// CheckAndSetTax attaches a tax unit, converting it into the settlement
// currency first when the parsed tax is quoted in a foreign currency.
func CheckAndSetTax(tax *money.Money, t *model.Transaction, ctx *engine.Context) {
	checkAndSetUnit(model.TaxUnit, tax, t, ctx)
}

// CheckAndSetFee attaches a fee unit, converting like CheckAndSetTax.
func CheckAndSetFee(fee *money.Money, t *model.Transaction, ctx *engine.Context) {
	checkAndSetUnit(model.FeeUnit, fee, t, ctx)
}

func checkAndSetUnit(ut model.UnitType, amount *money.Money, t *model.Transaction, ctx *engine.Context) {
	if amount.Currency() == t.CurrencyCode() {
		t.AddUnit(model.Unit{Type: ut, Amount: amount})
		return
	}

	rate, ok := engine.GetType[money.ExchangeRate](ctx)
	if !ok {
		return
	}

	converted, err := rate.Convert(t.CurrencyCode(), amount)
	if err != nil {
		return
	}

	if t.Security != nil && t.CurrencyCode() == t.Security.CurrencyCode {
		t.AddUnit(model.Unit{Type: ut, Amount: converted})
		return
	}

	r, err := rate.RateFor(t.CurrencyCode())
	if err != nil {
		return
	}
	t.AddUnit(model.Unit{Type: ut, Amount: converted, Forex: amount, Rate: r})
}

// FixGrossValue is a conclude hook that detects a gross-value unit whose
// amount is off from the gross value derived from the settlement amount
// and the tax/fee units. A residue of exactly one minor unit is absorbed
// into the unit; anything larger is a data-quality signal and is left
// untouched.
func FixGrossValue(t *model.Transaction) error {
	if t.Amount == nil || t.Security == nil || t.Security.CurrencyCode == "" {
		return nil
	}
	if t.CurrencyCode() == t.Security.CurrencyCode {
		return nil
	}

	unit, ok := t.Unit(model.GrossValueUnit)
	if !ok {
		return nil
	}

	expected := t.GrossValue()
	if expected.Equal(unit.Amount) {
		return nil
	}

	diff := expected.Amount() - unit.Amount.Amount()
	if diff > 1 || diff < -1 {
		return nil
	}

	t.RemoveUnit(model.GrossValueUnit)
	t.AddUnit(model.Unit{Type: model.GrossValueUnit, Amount: expected, Forex: unit.Forex, Rate: unit.Rate})
	return nil
}
