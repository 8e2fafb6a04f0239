package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fbruell/wpx/extractor/model"
)

// CreateTransactions bulk inserts transactions. Rows colliding on the
// natural key (type, date, amount, currency, security) are silently
// skipped, so re-importing the same documents is safe; with overwrite
// they are refreshed with the newly extracted values instead. Returns
// the number of rows actually written.
func (db *DB) CreateTransactions(ctx context.Context, transactions []txRow, overwrite bool) (int, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	const conflictTarget = `(type, date, amount, currency,
		COALESCE(security_id, '00000000-0000-0000-0000-000000000000'::uuid))`

	sql := `
		INSERT INTO transactions (
			security_id, type, date, shares, amount, currency, units, note, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ` + conflictTarget
	if overwrite {
		sql += ` DO UPDATE SET shares = EXCLUDED.shares, units = EXCLUDED.units,
			note = EXCLUDED.note, source = EXCLUDED.source`
	} else {
		sql += ` DO NOTHING`
	}

	batch := &pgx.Batch{}
	for _, row := range transactions {
		unitsJSON := []byte("[]")
		if len(row.tx.Units) > 0 {
			var err error
			unitsJSON, err = json.Marshal(row.tx.Units)
			if err != nil {
				unitsJSON = []byte("[]")
			}
		}

		batch.Queue(sql,
			row.securityID, row.tx.Type, row.tx.Date, row.tx.Shares,
			row.tx.Amount.Amount(), row.tx.CurrencyCode(), unitsJSON,
			row.tx.Note, row.tx.Source,
		)
	}

	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range transactions {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert transaction: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// txRow pairs a transaction with its resolved security row id. The id is
// nil for account-level transactions (deposits, removals).
type txRow struct {
	tx         *model.Transaction
	securityID *string
}
