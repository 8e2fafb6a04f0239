package model

import (
	"errors"
	"strings"
	"sync"
)

// Security identifies a traded instrument. CurrencyCode is the currency
// the instrument is quoted in, which may differ from the settlement
// currency of a transaction referencing it.
type Security struct {
	Name         string `json:"name"`
	ISIN         string `json:"isin,omitempty"`
	WKN          string `json:"wkn,omitempty"`
	Ticker       string `json:"ticker,omitempty"`
	CurrencyCode string `json:"currency"`
}

// SecurityFields carries the raw captured identity fields of a security
// before resolution.
type SecurityFields struct {
	Name     string
	ISIN     string
	WKN      string
	Ticker   string
	Currency string
}

// SecurityResolver resolves captured identity fields to a security record.
// Identity and dedup rules live behind this interface; the engine treats
// it as an opaque collaborator.
type SecurityResolver interface {
	GetOrCreate(fields SecurityFields) (*Security, error)
}

// SecurityCache is an in-memory SecurityResolver that deduplicates by
// ISIN, then WKN, then ticker, then name. Safe for concurrent use.
type SecurityCache struct {
	mu         sync.Mutex
	securities []*Security
}

// NewSecurityCache returns an empty cache.
func NewSecurityCache() *SecurityCache {
	return &SecurityCache{}
}

// GetOrCreate returns the cached security matching the given fields, or
// creates a new record. A match found by a weaker key is enriched with
// any identifiers it was missing.
func (c *SecurityCache) GetOrCreate(fields SecurityFields) (*Security, error) {
	if fields.ISIN == "" && fields.WKN == "" && fields.Ticker == "" && fields.Name == "" {
		return nil, errors.New("security has no identifying fields")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if s := c.lookup(fields); s != nil {
		if s.ISIN == "" {
			s.ISIN = fields.ISIN
		}
		if s.WKN == "" {
			s.WKN = fields.WKN
		}
		if s.Ticker == "" {
			s.Ticker = fields.Ticker
		}
		if s.Name == "" {
			s.Name = strings.TrimSpace(fields.Name)
		}
		return s, nil
	}

	s := &Security{
		Name:         strings.TrimSpace(fields.Name),
		ISIN:         fields.ISIN,
		WKN:          fields.WKN,
		Ticker:       fields.Ticker,
		CurrencyCode: fields.Currency,
	}
	c.securities = append(c.securities, s)
	return s, nil
}

func (c *SecurityCache) lookup(fields SecurityFields) *Security {
	if fields.ISIN != "" {
		for _, s := range c.securities {
			if s.ISIN == fields.ISIN {
				return s
			}
		}
	}
	if fields.WKN != "" {
		for _, s := range c.securities {
			if s.WKN == fields.WKN {
				return s
			}
		}
	}
	if fields.Ticker != "" {
		for _, s := range c.securities {
			if s.Ticker == fields.Ticker {
				return s
			}
		}
	}
	if name := strings.TrimSpace(fields.Name); name != "" {
		for _, s := range c.securities {
			if s.Name == name {
				return s
			}
		}
	}
	return nil
}
