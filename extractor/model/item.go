package model

import "time"

// Item is one extraction result: either a completed transaction or an
// explicit non-importable marker carrying a user-facing reason.
type Item struct {
	Transaction *Transaction `json:"transaction,omitempty"`
	Reason      string       `json:"reason,omitempty"`
}

// NewItem wraps a completed transaction.
func NewItem(t *Transaction) *Item {
	return &Item{Transaction: t}
}

// NonImportable marks a recognized block that cannot be imported, so the
// user sees why nothing was produced (e.g. unsupported order type).
func NonImportable(reason string) *Item {
	return &Item{Reason: reason}
}

// Importable reports whether the item carries a transaction.
func (i *Item) Importable() bool {
	return i.Transaction != nil
}

// Date returns the transaction date, or the zero time for markers.
func (i *Item) Date() time.Time {
	if i.Transaction == nil {
		return time.Time{}
	}
	return i.Transaction.Date
}

// Security returns the referenced security, if any.
func (i *Item) Security() *Security {
	if i.Transaction == nil {
		return nil
	}
	return i.Transaction.Security
}
