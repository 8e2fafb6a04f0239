package extractor

import "strings"

// Document is one bank-issued document already converted to text: an
// ordered slice of lines plus metadata used for bank pre-filtering.
// Immutable once handed to the engine.
type Document struct {
	Filename string
	// Author is the issuing-bank hint taken from the PDF metadata, used
	// only for pre-filtering which rule sets to attempt.
	Author string
	Lines  []string

	text string
}

// NewDocument creates a document from pre-split text lines.
func NewDocument(filename, author string, lines []string) *Document {
	return &Document{
		Filename: filename,
		Author:   author,
		Lines:    lines,
		text:     strings.Join(lines, "\n"),
	}
}

// Text returns the line-joined full text used for classification.
func (d *Document) Text() string {
	return d.text
}
