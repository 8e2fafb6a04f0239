package engine

import (
	"regexp"

	"github.com/fbruell/wpx/extractor/model"
)

// PrepareFunc runs once for a matched document, before any block, and may
// scan the entire line slice to populate the document context.
type PrepareFunc func(*Context, []string)

// DocumentType classifies a whole document by regex and owns the blocks
// that extract from it. Many types may be registered per bank; the first
// whose mustInclude patterns all match (and no mustNotInclude pattern
// matches) is used.
type DocumentType struct {
	mustInclude    []*regexp.Regexp
	mustNotInclude []*regexp.Regexp
	blocks         []*Block
	rangeBlocks    []*RangeBlock
	prepare        []PrepareFunc
}

// NewDocumentType registers a classification pattern matched against the
// full document text, plus optional prepare callbacks executed in order.
func NewDocumentType(mustInclude string, prepare ...PrepareFunc) *DocumentType {
	return &DocumentType{
		mustInclude: []*regexp.Regexp{regexp.MustCompile(mustInclude)},
		prepare:     prepare,
	}
}

// MustInclude adds a further pattern that also has to match.
func (d *DocumentType) MustInclude(expr string) *DocumentType {
	d.mustInclude = append(d.mustInclude, regexp.MustCompile(expr))
	return d
}

// MustNotInclude adds a veto pattern: a document matching it is never
// classified as this type.
func (d *DocumentType) MustNotInclude(expr string) *DocumentType {
	d.mustNotInclude = append(d.mustNotInclude, regexp.MustCompile(expr))
	return d
}

// AddBlock attaches a block. Blocks run independently over the same line
// slice, so a single document can yield items from several pipelines
// (e.g. the trade itself plus an embedded tax-refund note).
func (d *DocumentType) AddBlock(b *Block) *Block {
	d.blocks = append(d.blocks, b)
	return b
}

// AddRangeBlock attaches a range block. Range blocks run before any
// transaction block; the values they capture are scoped to their block
// range and reachable through Section.DocumentRange.
func (d *DocumentType) AddRangeBlock(rb *RangeBlock) *RangeBlock {
	if len(rb.patterns) == 0 {
		panic("range block has no patterns")
	}
	d.rangeBlocks = append(d.rangeBlocks, rb)
	return rb
}

// Matches classifies the joined document text.
func (d *DocumentType) Matches(text string) bool {
	for _, p := range d.mustInclude {
		if !p.MatchString(text) {
			return false
		}
	}
	for _, p := range d.mustNotInclude {
		if p.MatchString(text) {
			return false
		}
	}
	return true
}

// Parse runs the prepare callbacks and every block over the given lines.
// Each call owns a fresh document context, so documents of a batch can be
// processed independently. The context is returned for callers that pass
// values across document boundaries or assert on prepared state.
func (d *DocumentType) Parse(filename string, lines []string, items *[]*model.Item) *Context {
	ctx := NewContext()
	doc := &docState{filename: filename, lines: lines, docCtx: ctx}

	for _, prepare := range d.prepare {
		prepare(ctx, lines)
	}

	if len(d.rangeBlocks) > 0 {
		doc.ranges = &rangeTable{}
		for _, rb := range d.rangeBlocks {
			rb.collect(lines, doc.ranges)
		}
	}

	for _, b := range d.blocks {
		b.parse(doc, items)
	}
	return ctx
}
