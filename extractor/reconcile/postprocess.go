package reconcile

import (
	"github.com/fbruell/wpx/extractor/model"
	"github.com/fbruell/wpx/money"
)

// TransactionTaxesPair associates a primary purchase/sale/dividend item
// with the separate taxes-treatment item issued for the same security and
// date, or with nil when no treatment was found.
type TransactionTaxesPair struct {
	Transaction *model.Item
	Tax         *model.Item
}

type pairKey struct {
	day      string
	security *model.Security
}

func keyOf(i *model.Item) pairKey {
	return pairKey{day: i.Date().Format("2006-01-02"), security: i.Security()}
}

// MatchTransactionTaxesPairs pairs primaries with taxes treatments keyed
// by (date, security), first-match-wins. A second primary or a second tax
// item with the same key is dropped from pairing (it stays in the item
// list untouched); this mirrors the established behavior and is not to be
// "fixed" without clarification from the rule-set owner.
func MatchTransactionTaxesPairs(transactions, taxes []*model.Item) []TransactionTaxesPair {
	keys := make(map[pairKey]int)
	pairs := make([]TransactionTaxesPair, 0, len(transactions))

	for _, tx := range transactions {
		key := keyOf(tx)
		if _, dup := keys[key]; dup {
			continue
		}
		keys[key] = len(pairs)
		pairs = append(pairs, TransactionTaxesPair{Transaction: tx})
	}

	for _, tax := range taxes {
		if tax.Security() == nil {
			continue
		}
		idx, ok := keys[keyOf(tax)]
		if !ok || pairs[idx].Tax != nil {
			continue
		}
		pairs[idx].Tax = tax
	}

	return pairs
}

// ApplyMissingCurrencyConversion fills the currency-conversion gap that
// opens when the taxes treatment is quoted in the account currency only:
// whichever side of a pair carries a usable exchange rate lends it to the
// other side as a synthesized gross-value unit.
func ApplyMissingCurrencyConversion(pairs []TransactionTaxesPair) {
	for _, pair := range pairs {
		if pair.Tax == nil || pair.Transaction == nil {
			continue
		}

		tax := pair.Tax.Transaction
		primary := pair.Transaction.Transaction

		taxMismatch := tax.Security != nil && tax.CurrencyCode() != tax.Security.CurrencyCode
		primaryMismatch := primary.Security != nil && primary.CurrencyCode() != primary.Security.CurrencyCode
		if !taxMismatch && !primaryMismatch {
			continue
		}

		securityCurrency := primary.Security.CurrencyCode
		taxGross, taxHas := tax.Unit(model.GrossValueUnit)
		primaryGross, primaryHas := primary.Unit(model.GrossValueUnit)

		switch {
		case taxHas && !taxGross.Rate.IsZero() && !primaryHas:
			rate := money.NewExchangeRate(taxGross.Rate, securityCurrency, tax.CurrencyCode())
			fxGross, err := rate.Convert(securityCurrency, primary.Amount)
			if err != nil {
				continue
			}
			primary.AddUnit(model.Unit{
				Type:   model.GrossValueUnit,
				Amount: primary.Amount,
				Forex:  fxGross,
				Rate:   taxGross.Rate,
			})
		case primaryHas && !primaryGross.Rate.IsZero() && !taxHas:
			rate := money.NewExchangeRate(primaryGross.Rate, securityCurrency, tax.CurrencyCode())
			fxGross, err := rate.Convert(securityCurrency, tax.Amount)
			if err != nil {
				continue
			}
			tax.AddUnit(model.Unit{
				Type:   model.GrossValueUnit,
				Amount: tax.Amount,
				Forex:  fxGross,
				Rate:   primaryGross.Rate,
			})
		}
	}
}

// MergeTaxesIntoPurchaseSale is the batch post-processing step: it pairs
// separate taxes-treatment items with the purchase, sale or dividend they
// belong to, folds the tax amount into the primary item's settlement
// amount, attaches it as an explicit tax unit, merges note and source
// text, and drops the now-redundant treatment item. Unmatched treatments
// remain standalone items.
func MergeTaxesIntoPurchaseSale(items []*model.Item) []*model.Item {
	var taxes []*model.Item
	var primaries []*model.Item

	for _, item := range items {
		if !item.Importable() {
			continue
		}
		switch item.Transaction.Type {
		case model.Taxes:
			if item.Security() != nil {
				taxes = append(taxes, item)
			}
		case model.Buy, model.Sell, model.Dividend:
			primaries = append(primaries, item)
		}
	}

	pairs := MatchTransactionTaxesPairs(primaries, taxes)
	ApplyMissingCurrencyConversion(pairs)

	merged := make(map[*model.Item]bool)
	for _, pair := range pairs {
		if pair.Tax == nil {
			continue
		}

		primary := pair.Transaction.Transaction
		tax := pair.Tax.Transaction

		var combined *money.Money
		var err error
		if primary.Type.IsLiquidation() {
			combined, err = primary.Amount.Subtract(tax.Amount)
		} else {
			combined, err = primary.Amount.Add(tax.Amount)
		}
		if err != nil {
			// still quoted in different currencies: leave both standalone
			continue
		}

		primary.Amount = combined
		primary.AddUnit(model.Unit{Type: model.TaxUnit, Amount: tax.Amount})
		primary.Source = concatenate(primary.Source, tax.Source, "; ")
		primary.Note = concatenate(primary.Note, tax.Note, " | ")
		_ = FixGrossValue(primary)

		merged[pair.Tax] = true
	}

	if len(merged) == 0 {
		return items
	}

	out := items[:0]
	for _, item := range items {
		if !merged[item] {
			out = append(out, item)
		}
	}
	return out
}

func concatenate(first, second, sep string) string {
	if first == "" {
		return second
	}
	if second == "" || first == second {
		return first
	}
	return first + sep + second
}
