package engine

import "regexp"

// rangeEntry binds attribute values to a closed interval of line indexes.
type rangeEntry struct {
	start, end int
	values     map[string]string
}

// rangeTable resolves attributes that are only valid for a slice of the
// document, e.g. a statement listing several accounts where each header
// governs the booking lines below it.
type rangeTable struct {
	entries []rangeEntry
}

func (t *rangeTable) add(start, end int, values map[string]string) {
	t.entries = append(t.entries, rangeEntry{start: start, end: end, values: values})
}

// find returns the value bound to the first range containing line.
func (t *rangeTable) find(attr string, line int) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, e := range t.entries {
		if line < e.start || line > e.end {
			continue
		}
		if v, ok := e.values[attr]; ok {
			return v, true
		}
	}
	return "", false
}

// RangeBlock captures attribute values that apply only to the lines of
// the block range they were found in. Each discovered range is scanned
// with the pattern chain the way a section scans its window; once every
// pattern has matched and all attributes were captured, the values are
// bound to the whole range. Sections pick them up via DocumentRange,
// resolved against their own match position.
type RangeBlock struct {
	block    *Block
	attrs    []string
	patterns []*regexp.Regexp
}

// NewRangeBlock creates a range block segmented by the given block and
// capturing the named attributes.
func NewRangeBlock(block *Block, attrs ...string) *RangeBlock {
	return &RangeBlock{block: block, attrs: attrs}
}

// Find adds an anchored pattern; the expression must match the whole
// line.
func (rb *RangeBlock) Find(expr string) *RangeBlock {
	return rb.Match("^" + expr + "$")
}

// Match adds a pattern, applied to entire lines as in sections.
func (rb *RangeBlock) Match(expr string) *RangeBlock {
	rb.patterns = append(rb.patterns, compileLinePattern(expr))
	return rb
}

// collect scans the lines and fills the table. A range where the chain
// never completes or an attribute stays uncaptured is skipped, like a
// failing section.
func (rb *RangeBlock) collect(lines []string, table *rangeTable) {
	for _, r := range rb.block.ranges(lines) {
		values := make(map[string]string)
		patternNo := 0
		for ii := r[0]; ii <= r[1] && ii < len(lines); ii++ {
			p := rb.patterns[patternNo]
			idx := p.FindStringSubmatchIndex(lines[ii])
			if idx == nil {
				continue
			}
			captureNamed(values, p, lines[ii], idx, rb.attrs)
			patternNo++
			if patternNo == len(rb.patterns) {
				break
			}
		}
		if patternNo < len(rb.patterns) || len(values) != len(rb.attrs) {
			continue
		}
		table.add(r[0], r[1], values)
	}
}
