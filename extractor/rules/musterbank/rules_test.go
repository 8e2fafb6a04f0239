package musterbank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fbruell/wpx/extractor"
	"github.com/fbruell/wpx/extractor/model"
)

func doc(filename string, lines ...string) *extractor.Document {
	return extractor.NewDocument(filename, "", lines)
}

func TestBuy(t *testing.T) {
	e := New(model.NewSecurityCache())

	items := e.Extract(doc("kauf.txt",
		"Musterbank AG",
		"Wertpapier Abrechnung Kauf",
		"Stück 10 ACME CORP INHABER-AKTIEN O.N. DE0001234567 (123456)",
		"Ausführungskurs 50,00 EUR",
		"Handelstag 15.01.2015",
		"Handelszeit 09:04:16 Uhr",
		"Provision 9,90- EUR",
		"Ausmachender Betrag 509,90- EUR",
	))

	require.Len(t, items, 1)
	tx := items[0].Transaction
	require.NotNil(t, tx)

	assert.Equal(t, model.Buy, tx.Type)
	assert.Equal(t, int64(10*model.SharesFactor), tx.Shares)
	assert.Equal(t, int64(50990), tx.Amount.Amount())
	assert.Equal(t, "EUR", tx.CurrencyCode())
	assert.Equal(t, "2015-01-15 09:04:16", tx.Date.Format("2006-01-02 15:04:05"))
	assert.Equal(t, "kauf.txt", tx.Source)

	require.NotNil(t, tx.Security)
	assert.Equal(t, "ACME CORP INHABER-AKTIEN O.N.", tx.Security.Name)
	assert.Equal(t, "DE0001234567", tx.Security.ISIN)
	assert.Equal(t, "123456", tx.Security.WKN)
	assert.Equal(t, "EUR", tx.Security.CurrencyCode)

	fee, ok := tx.Unit(model.FeeUnit)
	require.True(t, ok)
	assert.Equal(t, int64(990), fee.Amount.Amount())
}

func TestSellWithCurrencyConversion(t *testing.T) {
	e := New(model.NewSecurityCache())

	items := e.Extract(doc("verkauf.txt",
		"Musterbank AG",
		"Wertpapier Abrechnung Verkauf",
		"Stück 10 FOREIGN CORP REGISTERED SHARES US0001234567 (A0B1C2)",
		"Ausführungskurs 57,00 USD",
		"Handelstag 15.01.2015",
		"Devisenkurs (EUR/USD) 1,1613",
		"Kurswert 570,00- USD",
		"Kapitalertragsteuer 25,00 % 10,00- EUR",
		"Ausmachender Betrag 480,83+ EUR",
	))

	require.Len(t, items, 1)
	tx := items[0].Transaction
	require.NotNil(t, tx)

	assert.Equal(t, model.Sell, tx.Type)
	assert.Equal(t, int64(48083), tx.Amount.Amount())
	assert.Equal(t, "EUR", tx.CurrencyCode())
	assert.Equal(t, "USD", tx.Security.CurrencyCode)

	tax, ok := tx.Unit(model.TaxUnit)
	require.True(t, ok)
	assert.Equal(t, int64(1000), tax.Amount.Amount())

	gross, ok := tx.Unit(model.GrossValueUnit)
	require.True(t, ok)
	// 570.00 USD at 1.1613 settles to 490.83 EUR, which matches the net
	// amount plus the withheld tax
	assert.Equal(t, int64(49083), gross.Amount.Amount())
	assert.Equal(t, int64(57000), gross.Forex.Amount())
	assert.Equal(t, "USD", gross.Forex.Currency())
	assert.Equal(t, "0.8611039352", gross.Rate.String())
}

func TestCancellationIsNonImportable(t *testing.T) {
	e := New(model.NewSecurityCache())

	items := e.Extract(doc("storno.txt",
		"Musterbank AG",
		"Storno Wertpapier Abrechnung Kauf",
		"Stück 10 ACME CORP INHABER-AKTIEN O.N. DE0001234567 (123456)",
		"Ausführungskurs 50,00 EUR",
		"Handelstag 15.01.2015",
		"Ausmachender Betrag 509,90- EUR",
	))

	require.Len(t, items, 1)
	assert.False(t, items[0].Importable())
	assert.NotEmpty(t, items[0].Reason)
}

func TestNoTaxVoucherSuppressesTax(t *testing.T) {
	e := New(model.NewSecurityCache())

	items := e.Extract(doc("verkauf.txt",
		"Musterbank AG",
		"Wertpapier Abrechnung Verkauf",
		"Stück 10 ACME CORP INHABER-AKTIEN O.N. DE0001234567 (123456)",
		"Ausführungskurs 50,00 EUR",
		"Handelstag 15.01.2015",
		"Keine Steuerbescheinigung",
		"Kapitalertragsteuer 25,00 % 10,00- EUR",
		"Ausmachender Betrag 490,00+ EUR",
	))

	require.Len(t, items, 1)
	_, ok := items[0].Transaction.Unit(model.TaxUnit)
	assert.False(t, ok)
}

func TestDividendWithCurrencyConversion(t *testing.T) {
	e := New(model.NewSecurityCache())

	items := e.Extract(doc("dividende.txt",
		"Musterbank AG",
		"Dividendengutschrift",
		"Stück 100 FOREIGN CORP REGISTERED SHARES US0001234567 (A0B1C2)",
		"Zahlbarkeitstag 05.03.2021 Dividende pro Stück 1,00 USD",
		"Devisenkurs EUR / USD 1,1914",
		"Dividendengutschrift 100,00 USD 83,94+ EUR",
		"Einbehaltene Quellensteuer 15 % auf 100,00 USD 12,59- EUR",
		"Ausmachender Betrag 71,35+ EUR",
	))

	require.Len(t, items, 1)
	tx := items[0].Transaction
	require.NotNil(t, tx)

	assert.Equal(t, model.Dividend, tx.Type)
	assert.Equal(t, int64(100*model.SharesFactor), tx.Shares)
	assert.Equal(t, int64(7135), tx.Amount.Amount())
	assert.Equal(t, "2021-03-05", tx.Date.Format("2006-01-02"))

	gross, ok := tx.Unit(model.GrossValueUnit)
	require.True(t, ok)
	assert.Equal(t, int64(8394), gross.Amount.Amount())
	assert.Equal(t, int64(10000), gross.Forex.Amount())

	tax, ok := tx.Unit(model.TaxUnit)
	require.True(t, ok)
	assert.Equal(t, int64(1259), tax.Amount.Amount())
}

func TestTaxTreatmentDocument(t *testing.T) {
	e := New(model.NewSecurityCache())

	items := e.Extract(doc("steuer.txt",
		"Musterbank AG",
		"Steuerliche Behandlung: Verkauf",
		"Stück 10 ACME CORP INHABER-AKTIEN O.N. DE0001234567 (123456)",
		"Die Belastung erfolgt mit Valuta 15.01.2015",
		"abgeführte Steuern 10,00- EUR",
	))

	require.Len(t, items, 1)
	tx := items[0].Transaction
	require.NotNil(t, tx)
	assert.Equal(t, model.Taxes, tx.Type)
	assert.Equal(t, int64(1000), tx.Amount.Amount())
	assert.Equal(t, "DE0001234567", tx.Security.ISIN)
}

func TestTaxTreatmentMergedIntoSale(t *testing.T) {
	client := extractor.NewClient(nil)
	client.Register(New(client.Securities()))

	items := client.ExtractAll([]*extractor.Document{
		doc("verkauf.txt",
			"Musterbank AG",
			"Wertpapier Abrechnung Verkauf",
			"Stück 10 ACME CORP INHABER-AKTIEN O.N. DE0001234567 (123456)",
			"Ausführungskurs 50,00 EUR",
			"Handelstag 15.01.2015",
			"Ausmachender Betrag 500,00+ EUR",
		),
		doc("steuer.txt",
			"Musterbank AG",
			"Steuerliche Behandlung: Verkauf",
			"Stück 10 ACME CORP INHABER-AKTIEN O.N. DE0001234567 (123456)",
			"Die Belastung erfolgt mit Valuta 15.01.2015",
			"abgeführte Steuern 10,00- EUR",
		),
	})

	// the treatment item is folded into the sale and dropped
	require.Len(t, items, 1)
	tx := items[0].Transaction
	assert.Equal(t, model.Sell, tx.Type)
	assert.Equal(t, int64(49000), tx.Amount.Amount())

	tax, ok := tx.Unit(model.TaxUnit)
	require.True(t, ok)
	assert.Equal(t, int64(1000), tax.Amount.Amount())
	assert.Equal(t, "verkauf.txt; steuer.txt", tx.Source)
}

func TestAccountStatement(t *testing.T) {
	e := New(model.NewSecurityCache())

	items := e.Extract(doc("kontoauszug.txt",
		"Musterbank AG",
		"Kontoauszug Nr. 3/2015",
		"Bu-Tag Wert Wir haben für Sie gebucht Belastung in EUR",
		"04.01. 04.01. Überweisungseingang 240,00+",
		"05.01. 05.01. Überweisung 100,00-",
	))

	require.Len(t, items, 2)

	deposit := items[0].Transaction
	assert.Equal(t, model.Deposit, deposit.Type)
	assert.Equal(t, int64(24000), deposit.Amount.Amount())
	assert.Equal(t, "EUR", deposit.CurrencyCode())
	assert.Equal(t, "2015-01-04", deposit.Date.Format("2006-01-02"))

	removal := items[1].Transaction
	assert.Equal(t, model.Removal, removal.Type)
	assert.Equal(t, int64(10000), removal.Amount.Amount())
	assert.Equal(t, "2015-01-05", removal.Date.Format("2006-01-02"))
}

func TestAccountStatementMultiCurrency(t *testing.T) {
	e := New(model.NewSecurityCache())

	// Two account sections; each column header binds its currency only
	// to the booking lines below it.
	items := e.Extract(doc("kontoauszug.txt",
		"Musterbank AG",
		"Kontoauszug Nr. 3/2015",
		"Bu-Tag Wert Wir haben für Sie gebucht Belastung in EUR",
		"04.01. 04.01. Überweisungseingang 240,00+",
		"Bu-Tag Wert Wir haben für Sie gebucht Belastung in USD",
		"05.01. 05.01. Überweisungseingang 120,00+",
		"06.01. 06.01. Überweisung 80,00-",
	))

	require.Len(t, items, 3)

	assert.Equal(t, model.Deposit, items[0].Transaction.Type)
	assert.Equal(t, "EUR", items[0].Transaction.CurrencyCode())
	assert.Equal(t, int64(24000), items[0].Transaction.Amount.Amount())

	assert.Equal(t, model.Deposit, items[1].Transaction.Type)
	assert.Equal(t, "USD", items[1].Transaction.CurrencyCode())
	assert.Equal(t, int64(12000), items[1].Transaction.Amount.Amount())

	removal := items[2].Transaction
	assert.Equal(t, model.Removal, removal.Type)
	assert.Equal(t, "USD", removal.CurrencyCode())
	assert.Equal(t, int64(8000), removal.Amount.Amount())
	assert.Equal(t, "2015-01-06", removal.Date.Format("2006-01-02"))
}

func TestUnrelatedDocumentYieldsNothing(t *testing.T) {
	e := New(model.NewSecurityCache())

	items := e.Extract(doc("brief.txt",
		"Musterbank AG",
		"Sehr geehrte Damen und Herren,",
		"wir begrüßen Sie als neuen Kunden.",
	))

	assert.Empty(t, items)
}

func TestSharedSecurityAcrossDocuments(t *testing.T) {
	cache := model.NewSecurityCache()
	e := New(cache)

	buy := e.Extract(doc("kauf.txt",
		"Musterbank AG",
		"Wertpapier Abrechnung Kauf",
		"Stück 10 ACME CORP INHABER-AKTIEN O.N. DE0001234567 (123456)",
		"Ausführungskurs 50,00 EUR",
		"Handelstag 15.01.2015",
		"Ausmachender Betrag 500,00- EUR",
	))
	sell := e.Extract(doc("verkauf.txt",
		"Musterbank AG",
		"Wertpapier Abrechnung Verkauf",
		"Stück 10 ACME CORP INHABER-AKTIEN O.N. DE0001234567 (123456)",
		"Ausführungskurs 52,00 EUR",
		"Handelstag 20.02.2015",
		"Ausmachender Betrag 520,00+ EUR",
	))

	require.Len(t, buy, 1)
	require.Len(t, sell, 1)
	assert.Same(t, buy[0].Security(), sell[0].Security())
}
