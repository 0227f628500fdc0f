// Package inflect provides the reversible lexical transforms used to
// convert field and type names between wire and storage conventions.
//
// Each named inflector is one half of a mutually inverse pair, so that
// Invert(Apply(name)) == name for names composed of letters, digits,
// underscores and dashes. A Chain applies its inflectors in declared
// order on the way out and the inverse transforms in reverse order on
// the way in, guaranteeing an exact round trip.
package inflect

import (
	"fmt"
	"strings"

	"github.com/gobuffalo/flect"
)

// Inflector is a named, reversible string transform.
type Inflector struct {
	name   string
	apply  func(string) string
	invert func(string) string
}

// New creates a custom inflector from a transform and its inverse.
func New(name string, apply, invert func(string) string) Inflector {
	return Inflector{name: name, apply: apply, invert: invert}
}

// Name returns the inflector's registry name.
func (i Inflector) Name() string { return i.name }

// Apply transforms a name into the wire convention.
func (i Inflector) Apply(s string) string { return i.apply(s) }

// Invert reverses Apply, recovering the storage-convention name.
func (i Inflector) Invert(s string) string { return i.invert(s) }

// parameterize produces a lowercase, dash-separated parameter string.
func parameterize(s string) string {
	return flect.Dasherize(strings.ToLower(s))
}

// registry holds the built-in inflector pairs. Each entry's inverse is
// the forward transform of its paired entry.
var registry = map[string]Inflector{
	"pluralize":    New("pluralize", flect.Pluralize, flect.Singularize),
	"singularize":  New("singularize", flect.Singularize, flect.Pluralize),
	"dasherize":    New("dasherize", flect.Dasherize, flect.Underscore),
	"underscore":   New("underscore", flect.Underscore, flect.Dasherize),
	"parameterize": New("parameterize", parameterize, flect.Underscore),
}

// Lookup returns the named built-in inflector.
func Lookup(name string) (Inflector, bool) {
	inflector, ok := registry[name]
	return inflector, ok
}

// Chain is an ordered sequence of inflectors applied as one transform.
type Chain []Inflector

// NewChain resolves the named inflectors into a chain, preserving
// order.
func NewChain(names ...string) (Chain, error) {
	chain := make(Chain, 0, len(names))
	for _, name := range names {
		inflector, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown inflector %q", name)
		}
		chain = append(chain, inflector)
	}
	return chain, nil
}

// Default returns the default field-name chain: parameterize, which
// renders storage names in the dashed wire convention.
func Default() Chain {
	chain, _ := NewChain("parameterize")
	return chain
}

// Apply runs the forward transforms in declared order.
func (c Chain) Apply(s string) string {
	for _, inflector := range c {
		s = inflector.Apply(s)
	}
	return s
}

// Invert runs the inverse transforms in reverse declared order.
func (c Chain) Invert(s string) string {
	for i := len(c) - 1; i >= 0; i-- {
		s = c[i].Invert(s)
	}
	return s
}
