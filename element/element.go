package element

import "fmt"

// Range is a 1-based, line-inclusive source range, matching spec §3.2.
type Range struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Contains reports whether r fully contains other (inclusive).
func (r Range) Contains(other Range) bool {
	if other.StartLine < r.StartLine || other.EndLine > r.EndLine {
		return false
	}
	if other.StartLine == r.StartLine && other.StartCol < r.StartCol {
		return false
	}
	if other.EndLine == r.EndLine && other.EndCol > r.EndCol {
		return false
	}
	return true
}

// Overlaps reports whether r and other share any line range without one
// containing the other. Siblings must never overlap (spec §3.3/§8).
func (r Range) Overlaps(other Range) bool {
	if r.EndLine < other.StartLine || other.EndLine < r.StartLine {
		return false
	}
	return !r.Contains(other) && !other.Contains(r)
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.StartLine, r.StartCol, r.EndLine, r.EndCol)
}

// Parameter is a sub-record of a callable element (spec §4.C).
type Parameter struct {
	Name         string
	ValueType    string
	DefaultValue string
	Index        int
}

// Element is the tagged-variant record for one node in the Element Tree.
// The shared header (Kind, Name, Content, Range, ParentName, Decorators,
// Children) covers every kind; kind-specific payload lives in ValueType,
// Parameters and AdditionalData rather than in an inheritance chain, per
// spec §9's "avoid inheritance chains" design note.
type Element struct {
	Kind       Kind
	Name       string
	Content    string
	Range      Range
	ParentName string

	// ValueType carries a type annotation for properties/parameters.
	ValueType string

	// Decorators precede this element in source order (spec §3.3).
	Decorators []*Element

	// Children are declaration-ordered (spec §3.3/§4.D).
	Children []*Element

	// Parameters is populated for function/method kinds.
	Parameters []Parameter

	// AdditionalData is the free-form bag named in spec §3.2 (default
	// values, optional flags, enum members, accessor get|set marker...).
	AdditionalData map[string]any

	// Ambiguous marks an element selected among multiple same-named
	// siblings (spec §3.4, §4.E edge case). The path resolver does not set
	// it; it reports ambiguity on pathexpr.Result.Ambiguous instead.
	Ambiguous bool
}

// NewElement returns an Element with its bag initialized.
func NewElement(kind Kind, name string) *Element {
	return &Element{
		Kind:           kind,
		Name:           name,
		AdditionalData: make(map[string]any),
	}
}

// FindChild returns the first (or, when preferLast is true, the last) child
// whose name matches, optionally restricted to a specific kind. kindTag
// empty means "no kind filter", in which case the caller is expected to
// have already applied the kind-preference ordering.
func (e *Element) FindChild(name string, kind Kind, preferLast bool) *Element {
	var found *Element
	for _, c := range e.Children {
		if c.Name != name {
			continue
		}
		if kind != "" && c.Kind != kind {
			continue
		}
		if found == nil {
			found = c
		} else if preferLast {
			found = c
		}
	}
	return found
}

// Walk invokes fn for e and every descendant, depth-first, declaration
// order, including decorators.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, d := range e.Decorators {
		d.Walk(fn)
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Tree is the per-file forest rooted implicitly at file scope (spec §3.3).
type Tree struct {
	File     string
	Roots    []*Element
	Imports  *Element // synthetic "imports" element, nil if file has none
	SourceLF []byte   // LF-normalized source, for range-based slicing
}

// FindRoot returns the last top-level element named name (optionally
// restricted by kind), so a later duplicate declaration wins; the name
// "imports" returns the synthetic imports element.
func (t *Tree) FindRoot(name string, kind Kind) *Element {
	if name == "imports" {
		return t.Imports
	}
	var found *Element
	for _, r := range t.Roots {
		if r.Name != name {
			continue
		}
		if kind != "" && r.Kind != kind {
			continue
		}
		found = r
	}
	return found
}

// All returns every element in the tree (roots, imports, and all
// descendants), useful for workspace-wide indexing by kind/name.
func (t *Tree) All() []*Element {
	var out []*Element
	if t.Imports != nil {
		t.Imports.Walk(func(e *Element) { out = append(out, e) })
	}
	for _, r := range t.Roots {
		r.Walk(func(e *Element) { out = append(out, e) })
	}
	return out
}
