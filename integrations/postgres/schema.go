package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- Securities table
CREATE TABLE IF NOT EXISTS securities (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(255) NOT NULL,
    isin VARCHAR(12) DEFAULT '',
    wkn VARCHAR(10) DEFAULT '',
    ticker VARCHAR(20) DEFAULT '',
    currency VARCHAR(3) DEFAULT '',
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW()
);

-- An ISIN identifies exactly one security
CREATE UNIQUE INDEX IF NOT EXISTS idx_securities_isin
ON securities(isin) WHERE isin != '';

-- Transactions table. Amounts are integer minor units, shares use a
-- 10^8 fixed point. Units (gross value, taxes, fees) are stored as JSON
-- since their number and currencies vary per transaction.
CREATE TABLE IF NOT EXISTS transactions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    security_id UUID REFERENCES securities(id) ON DELETE SET NULL,
    type VARCHAR(20) NOT NULL,
    date TIMESTAMPTZ NOT NULL,
    shares BIGINT NOT NULL DEFAULT 0,
    amount BIGINT NOT NULL,
    currency VARCHAR(3) NOT NULL,
    units JSONB DEFAULT '[]',
    note TEXT DEFAULT '',
    source VARCHAR(255) DEFAULT '',
    created_at TIMESTAMPTZ DEFAULT NOW()
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_transactions_security_id ON transactions(security_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);

-- Natural key for idempotent re-imports of the same documents
CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_natural_key
ON transactions(type, date, amount, currency,
    COALESCE(security_id, '00000000-0000-0000-0000-000000000000'::uuid));
`

// EnsureSchema creates tables and indexes if they don't exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
