// Package extract implements the shared, language-agnostic Post-Processor
// (spec.md §4.D): folding per-language raw element records (component C's
// output) into the typed Element Tree. The algorithm — attach decorators
// to the following declaration, pair getter/setter siblings, fold imports
// into one synthetic element, normalize parent_name, preserve declaration
// order — is identical across languages given a uniform raw-record shape,
// so it is implemented once here rather than duplicated per plug-in. See
// DESIGN.md.
package extract

import "github.com/codehem/codehem-go/element"

// RawElement is the per-language Element Extractor's output record (spec
// §4.C): "name, content bytes, line range, and kind-specific fields."
type RawElement struct {
	Kind       element.Kind
	Name       string
	Content    string
	Range      element.Range
	ParentName string
	ValueType  string

	// DecoratorStartLine is a slot for the first source line of a
	// decorator block immediately preceding this element. No extractor in
	// this module sets it (it stays 0) and Fold does not read it;
	// decorators reach the post-processor as separate IsDecorator records.
	DecoratorStartLine int

	// Accessor is "get" or "set" for property_getter/property_setter
	// records, empty otherwise (spec §4.C "accessor flag get|set").
	Accessor string

	// Parameters are populated for function/method kinds (spec §4.C).
	Parameters []element.Parameter

	// AdditionalData carries kind-specific extras (default values, enum
	// members, optional flags) straight through to the folded Element.
	AdditionalData map[string]any

	// IsDecorator marks this record as a decorator attached to whatever
	// element's first declaration line immediately follows it.
	IsDecorator bool
}
