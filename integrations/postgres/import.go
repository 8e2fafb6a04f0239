package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fbruell/wpx/extractor"
	"github.com/fbruell/wpx/extractor/common"
)

// ImportResult tracks the outcome of an import operation
type ImportResult struct {
	Processed int
	Skipped   int
	Failed    int
	Errors    []string
}

// ImportOptions configures the import behavior
type ImportOptions struct {
	Force   bool // Overwrite rows colliding with already imported ones
	Verbose bool // Enable verbose logging
}

// Import extracts transactions from the file or directory at path and
// stores them. Documents are extracted as one batch so cross-document
// post-processing (tax merging) sees all of them.
func (db *DB) Import(ctx context.Context, client *extractor.Client, path string, opts ImportOptions) (*ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			lower := strings.ToLower(e.Name())
			if strings.HasSuffix(lower, ".pdf") || strings.HasSuffix(lower, ".txt") {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
		log.Printf("Scanning: %s", path)
		log.Printf("Found %d files (PDF/TXT)", len(files))
	} else {
		files = []string{path}
	}

	result := &ImportResult{}

	var docs []*extractor.Document
	for _, filePath := range files {
		doc, err := readDocument(filePath)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}
		docs = append(docs, doc)
	}

	items := client.ExtractAll(docs)

	var rows []txRow
	for _, item := range items {
		if !item.Importable() {
			result.Skipped++
			if opts.Verbose {
				log.Printf("SKIP %s", item.Reason)
			}
			continue
		}

		tx := item.Transaction
		var securityID *string
		if tx.Security != nil {
			id, err := db.GetOrCreateSecurity(ctx, tx.Security)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: security error: %v", tx.Source, err))
				continue
			}
			securityID = &id
		}
		rows = append(rows, txRow{tx: tx, securityID: securityID})
	}

	inserted, err := db.CreateTransactions(ctx, rows, opts.Force)
	if err != nil {
		result.Failed += len(rows) - inserted
		result.Processed += inserted
		result.Errors = append(result.Errors, err.Error())
		return result, nil
	}

	result.Processed += inserted
	result.Skipped += len(rows) - inserted
	if opts.Verbose {
		log.Printf("OK   %d inserted, %d duplicate(s) skipped", inserted, len(rows)-inserted)
	}

	return result, nil
}

func readDocument(path string) (*extractor.Document, error) {
	var lines []string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		lines, err = common.ReadTextLines(path)
	} else {
		lines, err = common.ExtractRowsFromPDF(path)
	}
	if err != nil {
		return nil, err
	}
	return extractor.NewDocument(filepath.Base(path), "", lines), nil
}
