package engine

import (
	"fmt"

	"github.com/fbruell/wpx/extractor/model"
)

// Pipeline is the ordered list of sections bound to a subject factory and
// a wrap function. One pipeline instance runs per block range; its
// sections share a transaction-scoped context and mutate the subject the
// factory produced. Wrap converts the finished subject into an Item, or
// returns nil to suppress it when mandatory invariants fail (zero amount,
// missing currency). Suppression means "nothing to import", not an error.
type Pipeline[T any] struct {
	subject   func() T
	sections  []sectionMatcher[T]
	concludes []func(T) error
	wrapper   func(T, *Context) *model.Item
}

// NewPipeline creates a pipeline whose subject factory produces the empty
// domain object each run starts from.
func NewPipeline[T any](subject func() T) *Pipeline[T] {
	return &Pipeline[T]{subject: subject}
}

// Section appends a required section capturing the named attributes.
func (p *Pipeline[T]) Section(attributes ...string) *Section[T] {
	s := &Section[T]{pipe: p, attributes: attributes}
	p.sections = append(p.sections, s)
	return s
}

// OneOf appends a group of mutually exclusive alternatives, tried in
// declaration order; the first full match wins. If none matches, the
// pipeline aborts for this block range.
func (p *Pipeline[T]) OneOf(alternatives ...func(*Section[T]) *Pipeline[T]) *Pipeline[T] {
	return p.oneOf(false, alternatives)
}

// OptionalOneOf is OneOf with a skippable group: if no alternative
// matches, the pipeline simply continues.
func (p *Pipeline[T]) OptionalOneOf(alternatives ...func(*Section[T]) *Pipeline[T]) *Pipeline[T] {
	return p.oneOf(true, alternatives)
}

func (p *Pipeline[T]) oneOf(optional bool, alternatives []func(*Section[T]) *Pipeline[T]) *Pipeline[T] {
	group := &oneOfGroup[T]{optional: optional}
	for _, build := range alternatives {
		alt := &Section[T]{pipe: p}
		build(alt)
		group.alternatives = append(group.alternatives, alt)
	}
	p.sections = append(p.sections, group)
	return p
}

// Conclude appends a hook that runs after all sections for last-mile
// invariant repair, e.g. reconciling a gross value that is off by a
// currency-rounding difference.
func (p *Pipeline[T]) Conclude(fn func(T) error) *Pipeline[T] {
	p.concludes = append(p.concludes, fn)
	return p
}

// Wrap sets the function converting the finished subject into an Item.
// Returning nil suppresses the block range's output.
func (p *Pipeline[T]) Wrap(fn func(T, *Context) *model.Item) *Pipeline[T] {
	p.wrapper = fn
	return p
}

// validate checks for duplicate section ids. Called when the pipeline is
// attached to a block; a violation is a programming error in the rule
// set, not a document problem.
func (p *Pipeline[T]) validate() error {
	seen := make(map[string]bool)
	for _, s := range p.sections {
		for _, id := range s.ids() {
			if seen[id] {
				return fmt.Errorf("duplicate section id %q", id)
			}
			seen[id] = true
		}
	}
	if p.wrapper == nil {
		return fmt.Errorf("wrapping function missing")
	}
	if p.subject == nil {
		return fmt.Errorf("subject factory missing")
	}
	return nil
}

// run executes the pipeline over one block range. Any section or conclude
// failure is a soft miss: the range yields no item.
func (p *Pipeline[T]) run(doc *docState, start, end int, items *[]*model.Item) error {
	txCtx := NewContext()
	target := p.subject()

	for _, s := range p.sections {
		if err := s.match(doc, start, end, txCtx, target); err != nil {
			return err
		}
	}

	for _, conclude := range p.concludes {
		if err := conclude(target); err != nil {
			return err
		}
	}

	if item := p.wrapper(target, txCtx); item != nil {
		*items = append(*items, item)
	}
	return nil
}
