package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// docState bundles the immutable inputs of one document parse run.
type docState struct {
	filename string
	lines    []string
	docCtx   *Context
	ranges   *rangeTable
}

// Values is the scoped variable map handed to an assignment callback:
// the named capture groups of a matched section, plus any values mixed in
// from the document context.
type Values struct {
	vars      map[string]string
	startLine int
	endLine   int
	filename  string
	docCtx    *Context
	txCtx     *Context
}

// Get returns the captured value for name, or "" if the group never
// matched.
func (v *Values) Get(name string) string {
	return v.vars[name]
}

// Has reports whether the group captured a value.
func (v *Values) Has(name string) bool {
	_, ok := v.vars[name]
	return ok
}

// Put injects a value, visible to the remainder of the assignment.
func (v *Values) Put(name, value string) {
	v.vars[name] = value
}

// StartLine returns the first line index of the enclosing block range.
func (v *Values) StartLine() int { return v.startLine }

// EndLine returns the last line index of the enclosing block range.
func (v *Values) EndLine() int { return v.endLine }

// FileName returns the document's file name.
func (v *Values) FileName() string { return v.filename }

// DocumentContext returns the context shared by every block and section
// of the current document. Assignments write handshake values here for
// later blocks of the same document.
func (v *Values) DocumentContext() *Context { return v.docCtx }

// TransactionContext returns the context that lives for exactly one
// pipeline run. Sections of the same transaction use it to exchange data.
func (v *Values) TransactionContext() *Context { return v.txCtx }

// matchError is the soft failure of a section: the enclosing block range
// produces no item, sibling blocks still run. It never escapes the batch.
type matchError struct {
	msg string
}

func (e *matchError) Error() string { return e.msg }

func matchErrorf(format string, args ...any) error {
	return &matchError{msg: fmt.Sprintf(format, args...)}
}

// sectionMatcher is one matching step of a pipeline: a plain section or a
// oneOf group of alternatives.
type sectionMatcher[T any] interface {
	match(doc *docState, start, end int, txCtx *Context, target T) error
	ids() []string
}

// Section is one matching step: a chain of patterns that must match whole
// lines in strictly increasing order within the block range, with gaps
// allowed between them. Captured named groups populate the Values map
// consumed by the assignment callback.
type Section[T any] struct {
	pipe       *Pipeline[T]
	sectionID  string
	optional   bool
	multiple   bool
	attributes []string
	docAttrs   []string
	rangeAttrs []string
	patterns   []*regexp.Regexp
	assign     func(T, *Values) error
}

// ID names the section for duplicate detection inside oneOf groups.
func (s *Section[T]) ID(id string) *Section[T] {
	s.sectionID = id
	return s
}

// Attributes declares which captured names must be present for the
// section to be satisfied. Overrides the names given to Section().
func (s *Section[T]) Attributes(names ...string) *Section[T] {
	s.attributes = names
	return s
}

// DocumentContext mixes values stored in the document context into the
// Values map. A missing key fails the section.
func (s *Section[T]) DocumentContext(keys ...string) *Section[T] {
	s.docAttrs = keys
	return s
}

// DocumentRange mixes in values a range block bound to a slice of the
// document. Each key is resolved against the line where the section's
// last pattern matched; a match outside every covering range fails the
// section.
func (s *Section[T]) DocumentRange(keys ...string) *Section[T] {
	s.rangeAttrs = keys
	return s
}

// Optional marks the section skippable: on failure the pipeline continues
// with empty captures and an unchanged cursor.
func (s *Section[T]) Optional() *Section[T] {
	s.optional = true
	return s
}

// MultipleTimes re-runs the pattern chain over the remaining lines and
// fires the assignment once per full match.
func (s *Section[T]) MultipleTimes() *Section[T] {
	s.multiple = true
	return s
}

// Find adds an anchored pattern; the expression must match the whole
// line.
func (s *Section[T]) Find(expr string) *Section[T] {
	return s.Match("^" + expr + "$")
}

// Match adds a pattern. As with Find, the compiled expression is applied
// to the entire line, never as a substring search.
func (s *Section[T]) Match(expr string) *Section[T] {
	s.patterns = append(s.patterns, compileLinePattern(expr))
	return s
}

// Assign sets the callback that consumes the captured values and mutates
// the in-progress transaction, completing the section. An error from the
// callback (e.g. a malformed number) aborts the section.
func (s *Section[T]) Assign(fn func(T, *Values) error) *Pipeline[T] {
	s.assign = fn
	return s.pipe
}

func (s *Section[T]) ids() []string {
	if s.sectionID == "" {
		return nil
	}
	return []string{s.sectionID}
}

// compileLinePattern wraps the expression so a match always covers the
// whole line, mirroring full-region matching semantics.
func compileLinePattern(expr string) *regexp.Regexp {
	return regexp.MustCompile("^(?:" + expr + ")$")
}

func (s *Section[T]) match(doc *docState, start, end int, txCtx *Context, target T) error {
	if s.assign == nil {
		panic(fmt.Sprintf("section %q: assignment function missing", s.sectionID))
	}

	values := make(map[string]string)
	patternNo := 0
	foundAtLeastOnce := false

	for ii := start; ii <= end && ii < len(doc.lines); ii++ {
		p := s.patterns[patternNo]
		idx := p.FindStringSubmatchIndex(doc.lines[ii])
		if idx == nil {
			continue
		}

		captureNamed(values, p, doc.lines[ii], idx, s.attributes)

		patternNo++
		if patternNo < len(s.patterns) {
			continue
		}

		// all patterns matched
		if len(values) != len(s.attributes) {
			if s.optional && !s.multiple {
				return nil
			}
			return matchErrorf("expected attributes %v but captured %v (%s lines %d-%d)",
				s.attributes, keysOf(values), doc.filename, start+1, end+1)
		}

		for _, attr := range s.docAttrs {
			v, ok := doc.docCtx.Lookup(attr)
			if !ok {
				if s.optional && !s.multiple {
					return nil
				}
				return matchErrorf("document context is missing %q (%s lines %d-%d)",
					attr, doc.filename, start+1, end+1)
			}
			values[attr] = v
		}

		for _, attr := range s.rangeAttrs {
			v, ok := doc.ranges.find(attr, ii)
			if !ok {
				if s.optional && !s.multiple {
					return nil
				}
				return matchErrorf("no range covering line %d carries %q (%s lines %d-%d)",
					ii+1, attr, doc.filename, start+1, end+1)
			}
			values[attr] = v
		}

		err := s.assign(target, &Values{
			vars:      values,
			startLine: start,
			endLine:   end,
			filename:  doc.filename,
			docCtx:    doc.docCtx,
			txCtx:     txCtx,
		})
		if err != nil {
			if s.optional {
				return nil
			}
			return matchErrorf("section %s: %v", s.describe(), err)
		}

		if s.multiple {
			foundAtLeastOnce = true
			patternNo = 0
			values = make(map[string]string)
			continue
		}
		return nil
	}

	if patternNo < len(s.patterns) && !foundAtLeastOnce && !s.optional {
		return matchErrorf("%v: matched %d of %d patterns of section %s (%s lines %d-%d)",
			s.attributes, patternNo, len(s.patterns), s.describe(), doc.filename, start+1, end+1)
	}
	return nil
}

// captureNamed copies the declared named groups of a match into values.
// A group that captured the empty string counts as matched; only groups
// that did not participate in the match (index -1) are skipped.
func captureNamed(values map[string]string, p *regexp.Regexp, line string, idx []int, attrs []string) {
	names := p.SubexpNames()
	for gi, name := range names {
		if gi == 0 || name == "" || idx[2*gi] < 0 {
			continue
		}
		for _, attr := range attrs {
			if name == attr {
				values[name] = line[idx[2*gi]:idx[2*gi+1]]
				break
			}
		}
	}
}

func (s *Section[T]) describe() string {
	if s.sectionID != "" {
		return s.sectionID
	}
	exprs := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		exprs[i] = p.String()
	}
	return strings.Join(exprs, " / ")
}

func keysOf(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// oneOfGroup tries its alternatives strictly in declaration order from
// the same cursor; the first alternative whose full chain matches wins
// and the rest are never attempted. No partial-match merging happens
// across alternatives.
type oneOfGroup[T any] struct {
	optional     bool
	alternatives []*Section[T]
}

func (g *oneOfGroup[T]) ids() []string {
	var out []string
	for _, alt := range g.alternatives {
		out = append(out, alt.ids()...)
	}
	return out
}

func (g *oneOfGroup[T]) match(doc *docState, start, end int, txCtx *Context, target T) error {
	var errs []string
	for _, alt := range g.alternatives {
		if err := alt.match(doc, start, end, txCtx, target); err == nil {
			return nil
		} else {
			errs = append(errs, err.Error())
		}
	}
	if g.optional {
		return nil
	}
	return matchErrorf("none of %d alternative sections matched (lines %d-%d): %s",
		len(g.alternatives), start+1, end+1, strings.Join(errs, "; "))
}
