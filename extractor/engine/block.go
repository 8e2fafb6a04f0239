package engine

import (
	"fmt"
	"regexp"

	"github.com/fbruell/wpx/extractor/model"
)

// runner is the type-erased face of Pipeline[T] a Block drives.
type runner interface {
	run(doc *docState, start, end int, items *[]*model.Item) error
	validate() error
}

// Block segments a document's lines into transaction-sized ranges. Every
// line matching the start pattern opens a range; the range closes at the
// line before the next start match, at the first line matching the end
// pattern (if one is set), or at end-of-document. Ranges never overlap
// and are discovered in a single forward pass.
type Block struct {
	startsWith *regexp.Regexp
	endsWith   *regexp.Regexp
	maxSize    int
	pipeline   runner
}

// NewBlock creates a block delimited by a start-line pattern only.
func NewBlock(startsWith string) *Block {
	return &Block{startsWith: compileLinePattern(startsWith), maxSize: -1}
}

// NewDelimitedBlock creates a block with both start and end patterns. A
// range whose end pattern never matches is dropped entirely.
func NewDelimitedBlock(startsWith, endsWith string) *Block {
	return &Block{
		startsWith: compileLinePattern(startsWith),
		endsWith:   compileLinePattern(endsWith),
		maxSize:    -1,
	}
}

// SetMaxSize caps the number of lines a range may span.
func (b *Block) SetMaxSize(maxSize int) *Block {
	b.maxSize = maxSize
	return b
}

// Set attaches the transaction pipeline run once per discovered range.
// Panics on an invalid pipeline (duplicate section ids, missing wrap):
// that is a defect in the rule set, caught at registration.
func (b *Block) Set(p runner) *Block {
	if err := p.validate(); err != nil {
		panic(fmt.Sprintf("invalid transaction pipeline: %v", err))
	}
	b.pipeline = p
	return b
}

// ranges discovers the (start, end) line ranges in a single forward pass.
func (b *Block) ranges(lines []string) [][2]int {
	var starts []int
	for i, line := range lines {
		if b.startsWith.MatchString(line) {
			starts = append(starts, i)
		}
	}

	var out [][2]int
	for i, start := range starts {
		end := len(lines) - 1
		if i+1 < len(starts) {
			end = starts[i+1] - 1
		}

		if b.endsWith != nil {
			end = b.findBlockEnd(lines, start, end)
			if end == -1 {
				continue
			}
		}

		if b.maxSize >= 0 && end > start+b.maxSize-1 {
			end = start + b.maxSize - 1
		}

		out = append(out, [2]int{start, end})
	}
	return out
}

func (b *Block) findBlockEnd(lines []string, start, end int) int {
	for i := start; i <= end; i++ {
		if b.endsWith.MatchString(lines[i]) {
			return i
		}
	}
	return -1
}

// parse runs the pipeline over every discovered range. A failing pipeline
// is silently skipped: many documents contain decorative blocks matching
// a loose start pattern that carry no transaction.
func (b *Block) parse(doc *docState, items *[]*model.Item) {
	if b.pipeline == nil {
		return
	}
	for _, r := range b.ranges(doc.lines) {
		// soft failure: the range yields nothing, siblings still run
		_ = b.pipeline.run(doc, r[0], r[1], items)
	}
}
