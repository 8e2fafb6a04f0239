// Package extractor dispatches documents to bank rule sets and collects
// their extraction results. A rule set registers bank identifiers, one or
// more document types built on the engine package, and an optional batch
// post-processing step.
package extractor

import (
	"log"
	"strings"

	"github.com/fbruell/wpx/extractor/engine"
	"github.com/fbruell/wpx/extractor/model"
)

// PostProcessing runs once per extraction batch over all items a rule set
// produced, after every document has been parsed. It may merge and drop
// items and returns the adjusted list.
type PostProcessing func(items []*model.Item) []*model.Item

// Extractor is one bank's rule set: a cheap identifier pre-filter plus a
// set of document types. The engine consumes it as data.
type Extractor struct {
	label          string
	identifiers    []string
	types          []*engine.DocumentType
	postProcessing PostProcessing
}

// New creates an empty rule set with a user-facing label.
func New(label string) *Extractor {
	return &Extractor{label: label}
}

// Label returns the user-facing bank name.
func (e *Extractor) Label() string {
	return e.label
}

// AddBankIdentifier registers a substring that must appear in a
// document's text or author metadata before this rule set's document
// types are attempted. With no identifiers the rule set is always tried.
func (e *Extractor) AddBankIdentifier(substring string) *Extractor {
	e.identifiers = append(e.identifiers, substring)
	return e
}

// AddDocumentType registers a document type. Types are tried in
// registration order; the first match wins.
func (e *Extractor) AddDocumentType(t *engine.DocumentType) *engine.DocumentType {
	e.types = append(e.types, t)
	return t
}

// SetPostProcessing registers the batch post-processing step.
func (e *Extractor) SetPostProcessing(fn PostProcessing) *Extractor {
	e.postProcessing = fn
	return e
}

// MatchesBank is the cheap pre-filter applied before classification.
func (e *Extractor) MatchesBank(doc *Document) bool {
	if len(e.identifiers) == 0 {
		return true
	}
	for _, id := range e.identifiers {
		if strings.Contains(doc.Text(), id) || strings.Contains(doc.Author, id) {
			return true
		}
	}
	return false
}

// Classify returns the first document type whose patterns match the full
// document text, or nil.
func (e *Extractor) Classify(doc *Document) *engine.DocumentType {
	for _, t := range e.types {
		if t.Matches(doc.Text()) {
			return t
		}
	}
	return nil
}

// Extract parses a single document with the first matching document type.
// A document no type claims yields no items.
func (e *Extractor) Extract(doc *Document) []*model.Item {
	t := e.Classify(doc)
	if t == nil {
		return nil
	}

	var items []*model.Item
	t.Parse(doc.Filename, doc.Lines, &items)
	return items
}

// Client is an extraction batch: a set of registered rule sets sharing
// one security resolver. Documents are processed independently; the
// per-rule-set post-processing runs once, after the whole batch, as the
// explicit barrier that cross-document reconciliation requires.
type Client struct {
	extractors []*Extractor
	securities model.SecurityResolver
}

// NewClient creates a batch client. A nil resolver gets an in-memory
// security cache.
func NewClient(resolver model.SecurityResolver, extractors ...*Extractor) *Client {
	if resolver == nil {
		resolver = model.NewSecurityCache()
	}
	return &Client{extractors: extractors, securities: resolver}
}

// Securities returns the shared security resolver for rule sets.
func (c *Client) Securities() model.SecurityResolver {
	return c.securities
}

// Register adds further rule sets.
func (c *Client) Register(extractors ...*Extractor) {
	c.extractors = append(c.extractors, extractors...)
}

// ExtractAll processes a batch of documents. Each document goes to the
// first rule set that passes the bank pre-filter and classifies it; the
// batch always completes, a document nobody claims just contributes no
// items.
func (c *Client) ExtractAll(docs []*Document) []*model.Item {
	perExtractor := make(map[*Extractor][]*model.Item)
	order := make([]*Extractor, 0, len(c.extractors))

	for _, doc := range docs {
		for _, e := range c.extractors {
			if !e.MatchesBank(doc) {
				continue
			}
			t := e.Classify(doc)
			if t == nil {
				continue
			}

			var items []*model.Item
			t.Parse(doc.Filename, doc.Lines, &items)
			log.Printf("\t📄 %s: %d item(s) from %s", e.Label(), len(items), doc.Filename)

			if _, seen := perExtractor[e]; !seen {
				order = append(order, e)
			}
			perExtractor[e] = append(perExtractor[e], items...)
			break
		}
	}

	var out []*model.Item
	for _, e := range order {
		items := perExtractor[e]
		if e.postProcessing != nil {
			items = e.postProcessing(items)
		}
		out = append(out, items...)
	}
	return out
}
