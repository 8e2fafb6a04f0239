package postgres

import (
	"context"
	"fmt"

	"github.com/fbruell/wpx/extractor/model"
)

// GetOrCreateSecurity finds an existing security by ISIN, WKN, ticker or
// name (in that order) or creates a new one. Existing rows are enriched
// with identifiers they were missing, mirroring the in-memory cache.
func (db *DB) GetOrCreateSecurity(ctx context.Context, security *model.Security) (string, error) {
	var id string

	err := db.Pool.QueryRow(ctx, `
		SELECT id FROM securities
		WHERE (isin != '' AND isin = $1)
		   OR (wkn != '' AND wkn = $2)
		   OR (ticker != '' AND ticker = $3)
		   OR (name = $4)
		ORDER BY (isin = $1) DESC, (wkn = $2) DESC, (ticker = $3) DESC
		LIMIT 1
	`, security.ISIN, security.WKN, security.Ticker, security.Name).Scan(&id)

	if err == nil {
		// Security exists, fill in any identifiers it was missing
		_, err = db.Pool.Exec(ctx, `
			UPDATE securities
			SET isin = CASE WHEN isin = '' THEN $1 ELSE isin END,
			    wkn = CASE WHEN wkn = '' THEN $2 ELSE wkn END,
			    ticker = CASE WHEN ticker = '' THEN $3 ELSE ticker END,
			    currency = CASE WHEN currency = '' THEN $4 ELSE currency END,
			    updated_at = NOW()
			WHERE id = $5
		`, security.ISIN, security.WKN, security.Ticker, security.CurrencyCode, id)
		if err != nil {
			return "", fmt.Errorf("failed to update security: %w", err)
		}
		return id, nil
	}

	err = db.Pool.QueryRow(ctx, `
		INSERT INTO securities (name, isin, wkn, ticker, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, security.Name, security.ISIN, security.WKN, security.Ticker, security.CurrencyCode).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to create security: %w", err)
	}

	return id, nil
}
