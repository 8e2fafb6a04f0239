// Package musterbank is a sample rule set demonstrating the full
// registration API of the engine: buy/sell confirmations with optional
// currency conversion, dividend credits, separate taxes-treatment
// documents merged in post-processing, and account statements driven by a
// prepare callback. Real bank rule sets are external configuration; this
// one doubles as the end-to-end test fixture.
package musterbank

import (
	"regexp"

	"github.com/fbruell/wpx/extractor"
	"github.com/fbruell/wpx/extractor/common"
	"github.com/fbruell/wpx/extractor/engine"
	"github.com/fbruell/wpx/extractor/model"
	"github.com/fbruell/wpx/extractor/reconcile"
	"github.com/fbruell/wpx/money"
)

const isinPattern = `[A-Z]{2}[A-Z0-9]{9}[0-9]`

// New builds the Musterbank rule set against the given security resolver.
func New(securities model.SecurityResolver) *extractor.Extractor {
	e := extractor.New("Musterbank AG")
	e.AddBankIdentifier("Musterbank")

	e.AddDocumentType(buySellType(securities))
	e.AddDocumentType(dividendType(securities))
	e.AddDocumentType(taxTreatmentType(securities))
	e.AddDocumentType(accountStatementType())

	e.SetPostProcessing(reconcile.MergeTaxesIntoPurchaseSale)
	return e
}

// parseSecurity resolves the identity fields every trade section
// captures: name, ISIN, WKN and the quote currency.
func parseSecurity(securities model.SecurityResolver, t *model.Transaction, v *engine.Values) error {
	security, err := securities.GetOrCreate(model.SecurityFields{
		Name:     v.Get("name"),
		ISIN:     v.Get("isin"),
		WKN:      v.Get("wkn"),
		Currency: v.Get("currency"),
	})
	if err != nil {
		return err
	}
	t.Security = security
	return nil
}

func buySellType(securities model.SecurityResolver) *engine.DocumentType {
	docType := engine.NewDocumentType(`Wertpapier Abrechnung (Kauf|Verkauf)`)

	pipeline := engine.NewPipeline(func() *model.Transaction {
		return &model.Transaction{Type: model.Buy}
	})

	pipeline.
		// Is type --> "Verkauf" change from BUY to SELL
		Section("type").Optional().
		Match(`^Wertpapier Abrechnung (?P<type>Kauf|Verkauf).*$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			if v.Get("type") == "Verkauf" {
				t.Type = model.Sell
			}
			return nil
		}).
		// Storno Wertpapier Abrechnung Kauf
		Section("cancellation").Optional().
		Match(`^(?P<cancellation>Storno) Wertpapier Abrechnung.*$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			v.TransactionContext().PutBoolean("cancellation", true)
			return nil
		}).
		// Stück 10 ACME CORP INHABER-AKTIEN O.N. DE0001234567 (123456)
		// Ausführungskurs 50,00 EUR
		Section("shares", "name", "isin", "wkn", "currency").
		Match(`^St.ck (?P<shares>[\.,\d]+) (?P<name>.*) (?P<isin>`+isinPattern+`) \((?P<wkn>[A-Z0-9]{6})\)$`).
		Match(`^Ausf.hrungskurs [\.,\d]+ (?P<currency>[A-Z]{3}).*$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			shares, err := common.ParseShares(v.Get("shares"))
			if err != nil {
				return err
			}
			t.Shares = shares

			if err := parseSecurity(securities, t, v); err != nil {
				return err
			}

			// stash the identity for the taxes treatment of the same document
			v.DocumentContext().Put("isin", v.Get("isin"))
			return nil
		}).
		// Handelstag 15.01.2015
		Section("date").
		Match(`^Handelstag (?P<date>[\d]{2}\.[\d]{2}\.[\d]{4}).*$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			date, err := common.ParseDate(v.Get("date"))
			if err != nil {
				return err
			}
			t.Date = date
			t.Source = v.FileName()
			v.TransactionContext().Put("date", v.Get("date"))
			return nil
		}).
		// Handelszeit 09:04:16 Uhr
		Section("time").Optional().
		Match(`^Handelszeit (?P<time>[\d]{2}:[\d]{2}:[\d]{2}) Uhr.*$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			date, err := common.ParseDateTime(v.TransactionContext().Get("date"), v.Get("time"))
			if err != nil {
				return err
			}
			t.Date = date
			return nil
		}).
		// Ausmachender Betrag 509,90- EUR
		// Endbetrag 470,10+ EUR
		OneOf(
			func(s *engine.Section[*model.Transaction]) *engine.Pipeline[*model.Transaction] {
				return s.Attributes("amount", "currency").
					Match(`^Ausmachender Betrag (?P<amount>[\.,\d]+)[-\+]? (?P<currency>[A-Z]{3})$`).
					Assign(assignAmount)
			},
			func(s *engine.Section[*model.Transaction]) *engine.Pipeline[*model.Transaction] {
				return s.Attributes("amount", "currency").
					Match(`^Endbetrag (?P<amount>[\.,\d]+)[-\+]? (?P<currency>[A-Z]{3})$`).
					Assign(assignAmount)
			},
		).
		// Devisenkurs (EUR/USD) 1,1613
		// Kurswert 570,00- USD
		Section("baseCurrency", "termCurrency", "exchangeRate", "fxGross", "fxCurrency").Optional().
		Match(`^Devisenkurs \((?P<baseCurrency>[A-Z]{3})\/(?P<termCurrency>[A-Z]{3})\) (?P<exchangeRate>[\.,\d]+)$`).
		Match(`^Kurswert (?P<fxGross>[\.,\d]+)[-\+]? (?P<fxCurrency>[A-Z]{3})$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			rateValue, err := common.ParseExchangeRate(v.Get("exchangeRate"))
			if err != nil {
				return err
			}
			rate := money.NewExchangeRate(rateValue, v.Get("baseCurrency"), v.Get("termCurrency"))
			v.DocumentContext().PutType(rate)

			fxAmount, err := common.ParseAmount(v.Get("fxGross"))
			if err != nil {
				return err
			}
			fxGross := money.New(fxAmount, v.Get("fxCurrency"))
			gross, err := rate.Convert(v.Get("baseCurrency"), fxGross)
			if err != nil {
				return err
			}
			reconcile.CheckAndSetGrossUnit(gross, fxGross, t, v.DocumentContext())
			return nil
		}).
		// Provision 9,90- EUR
		Section("fee", "feeCurrency").Optional().
		Match(`^Provision (?P<fee>[\.,\d]+)\- (?P<feeCurrency>[A-Z]{3})$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			amount, err := common.ParseAmount(v.Get("fee"))
			if err != nil {
				return err
			}
			reconcile.CheckAndSetFee(money.New(amount, v.Get("feeCurrency")), t, v.DocumentContext())
			return nil
		}).
		// Keine Steuerbescheinigung
		Section("noTax").Optional().
		Match(`^(?P<noTax>Keine Steuerbescheinigung)\.?$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			v.TransactionContext().PutBoolean("noTax", true)
			return nil
		}).
		// Kapitalertragsteuer 25,00 % 10,00- EUR
		Section("tax", "taxCurrency").Optional().
		Match(`^Kapitalertragsteuer [\.,\d]+ ?% (?P<tax>[\.,\d]+)\- (?P<taxCurrency>[A-Z]{3})$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			if v.TransactionContext().GetBoolean("noTax") {
				return nil
			}
			amount, err := common.ParseAmount(v.Get("tax"))
			if err != nil {
				return err
			}
			reconcile.CheckAndSetTax(money.New(amount, v.Get("taxCurrency")), t, v.DocumentContext())
			return nil
		}).
		Conclude(reconcile.FixGrossValue).
		Wrap(func(t *model.Transaction, txCtx *engine.Context) *model.Item {
			if txCtx.GetBoolean("cancellation") {
				return model.NonImportable("order cancellation is not supported")
			}
			if t.CurrencyCode() == "" || t.Amount.IsZero() {
				return nil
			}
			return model.NewItem(t)
		})

	docType.AddBlock(
		engine.NewDelimitedBlock(
			`^(Storno )?Wertpapier Abrechnung (Kauf|Verkauf).*$`,
			`^(Ausmachender Betrag|Endbetrag) .*$`,
		).Set(pipeline),
	)
	return docType
}

func assignAmount(t *model.Transaction, v *engine.Values) error {
	amount, err := common.ParseAmount(v.Get("amount"))
	if err != nil {
		return err
	}
	t.Amount = money.New(amount, v.Get("currency"))
	return nil
}

func dividendType(securities model.SecurityResolver) *engine.DocumentType {
	docType := engine.NewDocumentType(`(Dividendengutschrift|Aussch.ttung)`)

	pipeline := engine.NewPipeline(func() *model.Transaction {
		return &model.Transaction{Type: model.Dividend}
	})

	pipeline.
		// Stück 100 FOREIGN CORP US0001234567 (A0B1C2)
		// Zahlbarkeitstag 05.03.2021 Dividende pro Stück 0,22 USD
		Section("shares", "name", "isin", "wkn", "currency").
		Match(`^St.ck (?P<shares>[\.,\d]+) (?P<name>.*) (?P<isin>`+isinPattern+`) \((?P<wkn>[A-Z0-9]{6})\)$`).
		Match(`^Zahlbarkeitstag [\d]{2}\.[\d]{2}\.[\d]{4} .* (?P<currency>[A-Z]{3})$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			shares, err := common.ParseShares(v.Get("shares"))
			if err != nil {
				return err
			}
			t.Shares = shares
			if err := parseSecurity(securities, t, v); err != nil {
				return err
			}
			v.DocumentContext().Put("isin", v.Get("isin"))
			return nil
		}).
		Section("date").
		Match(`^Zahlbarkeitstag (?P<date>[\d]{2}\.[\d]{2}\.[\d]{4}).*$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			date, err := common.ParseDate(v.Get("date"))
			if err != nil {
				return err
			}
			t.Date = date
			t.Source = v.FileName()
			return nil
		}).
		Section("amount", "currency").
		Match(`^Ausmachender Betrag (?P<amount>[\.,\d]+)\+? (?P<currency>[A-Z]{3})$`).
		Assign(assignAmount).
		// Devisenkurs EUR / USD 1,1914
		// Dividendengutschrift 100,00 USD 83,94+ EUR
		Section("baseCurrency", "termCurrency", "exchangeRate", "fxGross", "fxCurrency", "gross", "currency").Optional().
		Match(`^Devisenkurs (?P<baseCurrency>[A-Z]{3}) \/ (?P<termCurrency>[A-Z]{3}) (?P<exchangeRate>[\.,\d]+)$`).
		Match(`^(Dividendengutschrift|Aussch.ttung) (?P<fxGross>[\.,\d]+) (?P<fxCurrency>[A-Z]{3}) (?P<gross>[\.,\d]+)\+ (?P<currency>[A-Z]{3})$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			rateValue, err := common.ParseExchangeRate(v.Get("exchangeRate"))
			if err != nil {
				return err
			}
			rate := money.NewExchangeRate(rateValue, v.Get("baseCurrency"), v.Get("termCurrency"))
			v.DocumentContext().PutType(rate)

			grossAmount, err := common.ParseAmount(v.Get("gross"))
			if err != nil {
				return err
			}
			fxAmount, err := common.ParseAmount(v.Get("fxGross"))
			if err != nil {
				return err
			}
			gross := money.New(grossAmount, v.Get("currency"))
			fxGross := money.New(fxAmount, v.Get("fxCurrency"))
			reconcile.CheckAndSetGrossUnit(gross, fxGross, t, v.DocumentContext())
			return nil
		}).
		// Einbehaltene Quellensteuer 15 % auf 100,00 USD 12,59- EUR
		Section("tax", "taxCurrency").Optional().
		Match(`^Einbehaltene Quellensteuer [\.,\d]+ ?% auf [\.,\d]+ [A-Z]{3} (?P<tax>[\.,\d]+)\- (?P<taxCurrency>[A-Z]{3})$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			amount, err := common.ParseAmount(v.Get("tax"))
			if err != nil {
				return err
			}
			reconcile.CheckAndSetTax(money.New(amount, v.Get("taxCurrency")), t, v.DocumentContext())
			return nil
		}).
		Conclude(reconcile.FixGrossValue).
		Wrap(func(t *model.Transaction, txCtx *engine.Context) *model.Item {
			if t.CurrencyCode() == "" || t.Amount.IsZero() {
				return nil
			}
			return model.NewItem(t)
		})

	// anchored to the bare heading line: the gross-value row repeats the
	// word and must not open a second range
	docType.AddBlock(
		engine.NewDelimitedBlock(
			`^(Dividendengutschrift|Aussch.ttung)$`,
			`^Ausmachender Betrag .*$`,
		).Set(pipeline),
	)
	return docType
}

// taxTreatmentType parses the separate "Steuerliche Behandlung" document
// a trade confirmation is often accompanied by. Its items carry the
// security and date only so post-processing can merge them into the
// primary transaction.
func taxTreatmentType(securities model.SecurityResolver) *engine.DocumentType {
	docType := engine.NewDocumentType(`Steuerliche Behandlung: (Kauf|Verkauf|Dividende)`)

	pipeline := engine.NewPipeline(func() *model.Transaction {
		return &model.Transaction{Type: model.Taxes}
	})

	pipeline.
		// Stück 10 ACME CORP DE0001234567 (123456)
		Section("shares", "name", "isin", "wkn").
		Match(`^St.ck (?P<shares>[\.,\d]+) (?P<name>.*) (?P<isin>`+isinPattern+`) \((?P<wkn>[A-Z0-9]{6})\)$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			shares, err := common.ParseShares(v.Get("shares"))
			if err != nil {
				return err
			}
			t.Shares = shares
			return parseSecurity(securities, t, v)
		}).
		// Die Belastung erfolgt mit Valuta 15.01.2015
		Section("date").
		Match(`^Die (Belastung|Gutschrift) erfolgt mit Valuta (?P<date>[\d]{2}\.[\d]{2}\.[\d]{4}).*$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			date, err := common.ParseDate(v.Get("date"))
			if err != nil {
				return err
			}
			t.Date = date
			t.Source = v.FileName()
			return nil
		}).
		// abgeführte Steuern 10,00- EUR
		Section("amount", "currency").
		Match(`^abgef.hrte Steuern (?P<amount>[\.,\d]+)\-? ?(?P<currency>[A-Z]{3})$`).
		Assign(assignAmount).
		Wrap(func(t *model.Transaction, txCtx *engine.Context) *model.Item {
			if t.CurrencyCode() == "" || t.Amount.IsZero() {
				return nil
			}
			return model.NewItem(t)
		})

	docType.AddBlock(
		engine.NewBlock(`^Steuerliche Behandlung: (Kauf|Verkauf|Dividende).*$`).Set(pipeline),
	)
	return docType
}

// accountStatementType shows the two header mechanisms: the statement
// number line carries the booking year exactly once (prepare callback),
// while the column header repeats per account section and binds its
// currency only to the booking lines below it (range block). A statement
// carrying sections in several currencies books each line in the right
// one.
func accountStatementType() *engine.DocumentType {
	docType := engine.NewDocumentType(`Kontoauszug Nr\.`, prepareStatementContext)

	docType.AddRangeBlock(
		engine.NewRangeBlock(
			engine.NewBlock(`^Bu-Tag Wert Wir haben f.r Sie gebucht Belastung in [A-Z]{3}$`),
			"currency",
		).Find(`Bu-Tag Wert Wir haben f.r Sie gebucht Belastung in (?P<currency>[A-Z]{3})`),
	)

	deposits := engine.NewPipeline(func() *model.Transaction {
		return &model.Transaction{Type: model.Deposit}
	})
	deposits.
		Section("date", "amount").DocumentContext("year").DocumentRange("currency").
		Match(`^(?P<date>[\d]{2}\.[\d]{2}\.) [\d]{2}\.[\d]{2}\. .berweisungseingang (?P<amount>[\.,\d]+)\+$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			date, err := common.ParseDate(v.Get("date") + v.Get("year"))
			if err != nil {
				return err
			}
			t.Date = date
			return assignAmount(t, v)
		}).
		Wrap(func(t *model.Transaction, txCtx *engine.Context) *model.Item {
			if t.CurrencyCode() == "" || t.Amount.IsZero() {
				return nil
			}
			return model.NewItem(t)
		})

	removals := engine.NewPipeline(func() *model.Transaction {
		return &model.Transaction{Type: model.Removal}
	})
	removals.
		Section("date", "amount").DocumentContext("year").DocumentRange("currency").
		Match(`^(?P<date>[\d]{2}\.[\d]{2}\.) [\d]{2}\.[\d]{2}\. .berweisung (?P<amount>[\.,\d]+)\-$`).
		Assign(func(t *model.Transaction, v *engine.Values) error {
			date, err := common.ParseDate(v.Get("date") + v.Get("year"))
			if err != nil {
				return err
			}
			t.Date = date
			return assignAmount(t, v)
		}).
		Wrap(func(t *model.Transaction, txCtx *engine.Context) *model.Item {
			if t.CurrencyCode() == "" || t.Amount.IsZero() {
				return nil
			}
			return model.NewItem(t)
		})

	docType.AddBlock(engine.NewBlock(`^[\d]{2}\.[\d]{2}\. [\d]{2}\.[\d]{2}\. .berweisungseingang [\.,\d]+\+$`).SetMaxSize(1).Set(deposits))
	docType.AddBlock(engine.NewBlock(`^[\d]{2}\.[\d]{2}\. [\d]{2}\.[\d]{2}\. .berweisung [\.,\d]+\-$`).SetMaxSize(1).Set(removals))
	return docType
}

// prepareStatementContext scans the whole document once for the booking
// year the date sections mix in.
func prepareStatementContext(ctx *engine.Context, lines []string) {
	yearPattern := regexp.MustCompile(`^Kontoauszug Nr\. [\d]+\/(?P<year>[\d]{4})$`)

	for _, line := range lines {
		if m := yearPattern.FindStringSubmatch(line); m != nil {
			ctx.Put("year", m[1])
		}
	}
}
