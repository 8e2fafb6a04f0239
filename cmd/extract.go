package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fbruell/wpx/extractor"
	"github.com/fbruell/wpx/extractor/common"
	"github.com/fbruell/wpx/extractor/model"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extracts transactions from document(s)",
	Long: `Extracts transactions from a given document or a folder of documents.
Documents are matched against the registered bank rule sets and run
through the respective extraction pipeline. Accepts bank PDFs and
already-converted .txt files.`,
	Run: handler,
}

func handler(cmd *cobra.Command, args []string) {
	target := viper.GetString("target")
	log.Printf("scanning %s", target)

	docs, err := collectDocuments(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		fmt.Fprintln(os.Stderr, "no documents found")
		os.Exit(1)
	}

	items := newClient().ExtractAll(docs)

	switch strings.ToLower(viper.GetString("output.format")) {
	case "csv":
		if err := writeCSV(os.Stdout, items); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// collectDocuments reads the target file, or every .pdf/.txt file in the
// target directory, into documents.
func collectDocuments(target string) ([]*extractor.Document, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(target)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			lower := strings.ToLower(e.Name())
			if strings.HasSuffix(lower, ".pdf") || strings.HasSuffix(lower, ".txt") {
				paths = append(paths, filepath.Join(target, e.Name()))
			}
		}
	} else {
		paths = []string{target}
	}

	var docs []*extractor.Document
	for _, path := range paths {
		var lines []string
		var err error
		if strings.EqualFold(filepath.Ext(path), ".txt") {
			lines, err = common.ReadTextLines(path)
		} else {
			lines, err = common.ExtractRowsFromPDF(path)
		}
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}
		docs = append(docs, extractor.NewDocument(filepath.Base(path), "", lines))
	}
	return docs, nil
}

// csvRecord flattens an item for CSV output. Amounts are in major units
// with two decimals, shares with up to eight.
type csvRecord struct {
	Date     string `csv:"date"`
	Type     string `csv:"type"`
	Security string `csv:"security"`
	ISIN     string `csv:"isin"`
	WKN      string `csv:"wkn"`
	Shares   string `csv:"shares"`
	Amount   string `csv:"amount"`
	Currency string `csv:"currency"`
	Taxes    string `csv:"taxes"`
	Fees     string `csv:"fees"`
	Note     string `csv:"note"`
	Source   string `csv:"source"`
}

func writeCSV(out *os.File, items []*model.Item) error {
	records := make([]csvRecord, 0, len(items))
	for _, item := range items {
		if !item.Importable() {
			continue
		}
		t := item.Transaction
		rec := csvRecord{
			Date:     t.Date.Format("2006-01-02"),
			Type:     string(t.Type),
			Amount:   t.Amount.Decimal().StringFixed(2),
			Currency: t.CurrencyCode(),
			Taxes:    t.UnitSum(model.TaxUnit).Decimal().StringFixed(2),
			Fees:     t.UnitSum(model.FeeUnit).Decimal().StringFixed(2),
			Note:     t.Note,
			Source:   t.Source,
		}
		if t.Shares != 0 {
			rec.Shares = common.FormatShares(t.Shares)
		}
		if t.Security != nil {
			rec.Security = t.Security.Name
			rec.ISIN = t.Security.ISIN
			rec.WKN = t.Security.WKN
		}
		records = append(records, rec)
	}
	return gocsv.Marshal(&records, out)
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("folder", "f", ".", "File or folder to scan for documents")
	extractCmd.Flags().StringP("output", "o", "json", "Output format: json or csv")
	viper.BindPFlag("target", extractCmd.Flags().Lookup("folder"))
	viper.BindPFlag("output.format", extractCmd.Flags().Lookup("output"))
}
