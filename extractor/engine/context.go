// Package engine is the declarative text-parsing engine every rule set is
// built on: a document-type classifier, a block segmenter, and a section
// matcher with sequential, optional and alternative combinators operating
// over a window of text lines. Rule sets are pure data layered on top:
// regexes plus small assignment callbacks.
package engine

import "reflect"

// Context is the mutable per-document key-value store. It is populated by
// prepare callbacks before any block runs and by section assignments that
// pass handshake values forward (e.g. a tax-refund block reading the
// security identity a buy/sell block stashed earlier). A second Context
// instance scopes the sections of a single pipeline run.
//
// A Context is owned by exactly one document (or one pipeline run) and is
// never shared across goroutines.
type Context struct {
	values map[string]string
	flags  map[string]bool
	typed  map[reflect.Type]any
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{
		values: make(map[string]string),
		flags:  make(map[string]bool),
		typed:  make(map[reflect.Type]any),
	}
}

// Put stores a string value.
func (c *Context) Put(key, value string) {
	c.values[key] = value
}

// Get returns the value for key, or "" if absent.
func (c *Context) Get(key string) string {
	return c.values[key]
}

// Lookup returns the value and whether the key exists.
func (c *Context) Lookup(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Remove deletes a string key.
func (c *Context) Remove(key string) {
	delete(c.values, key)
}

// PutBoolean stores a named flag, e.g. the "noTax" / "negative" markers a
// section writes for later sections in the same pipeline.
func (c *Context) PutBoolean(key string, value bool) {
	c.flags[key] = value
}

// GetBoolean returns the flag value; absent flags read false.
func (c *Context) GetBoolean(key string) bool {
	return c.flags[key]
}

// RemoveBoolean deletes a flag.
func (c *Context) RemoveBoolean(key string) {
	delete(c.flags, key)
}

// PutType stores a typed record keyed by its dynamic type, enabling later
// GetType lookups. Used for values attached once and read by multiple
// sections, such as exchange-rate records.
func (c *Context) PutType(value any) {
	c.typed[reflect.TypeOf(value)] = value
}

// RemoveType deletes the record of the given value's type.
func (c *Context) RemoveType(value any) {
	delete(c.typed, reflect.TypeOf(value))
}

// GetType retrieves the stored record of type T, if any.
func GetType[T any](c *Context) (T, bool) {
	var zero T
	v, ok := c.typed[reflect.TypeOf(zero)]
	if !ok {
		return zero, false
	}
	return v.(T), true
}
