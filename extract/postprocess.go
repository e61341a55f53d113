package extract

import (
	"sort"

	"github.com/codehem/codehem-go/element"
)

// containerKinds are element kinds that can own children (spec §3.3: a
// method's parent_name equals the enclosing class's name; namespaces and
// interfaces can likewise own members).
func isContainer(k element.Kind) bool {
	switch k {
	case element.KindClass, element.KindInterface, element.KindNamespace, element.KindEnum:
		return true
	default:
		return false
	}
}

// Fold implements the Post-Processor (component D, spec §4.D): it takes
// the flat, source-ordered raw records from a language's Extractor and
// produces the file's Element Tree.
func Fold(filename string, sourceLF []byte, raw []RawElement) *element.Tree {
	records := make([]RawElement, len(raw))
	copy(records, raw)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Range.StartLine < records[j].Range.StartLine
	})

	tree := &element.Tree{File: filename, SourceLF: sourceLF}

	// 1. Fold all import records into one synthetic Element (spec §3.3).
	var importRecs []RawElement
	var rest []RawElement
	for _, r := range records {
		if r.Kind == element.KindImport {
			importRecs = append(importRecs, r)
		} else {
			rest = append(rest, r)
		}
	}
	if len(importRecs) > 0 {
		tree.Imports = foldImports(importRecs)
	}

	// 2. Split decorators from declarations, keeping source order.
	var decorators []RawElement
	var decls []RawElement
	for _, r := range rest {
		if r.IsDecorator {
			decorators = append(decorators, r)
		} else {
			decls = append(decls, r)
		}
	}

	// 3. Build bare Elements for every declaration, keyed by identity
	// (pointer), plus a by-name index of containers for parent-attachment.
	elems := make([]*element.Element, len(decls))
	containersByName := make(map[string]*element.Element)
	for i, r := range decls {
		e := toElement(r)
		elems[i] = e
		if isContainer(r.Kind) {
			containersByName[r.Name] = e
		}
	}

	// 4. Attach decorators to the element whose first declaration line
	// immediately follows the decorator block (spec §4.D). A decorator
	// attaches to the nearest following declaration at or after its own
	// start line, within the same parent, with no other declaration's
	// start line in between.
	for _, d := range decorators {
		target := nearestFollowing(elems, decls, d.Range.StartLine, d.ParentName)
		if target != nil {
			target.Decorators = append(target.Decorators, toElement(d))
		}
	}

	// 5. Attach each declaration to its parent container (by ParentName)
	// or to the tree roots when top-level, preserving declaration order
	// (records are already source-ordered from step 0).
	for i, r := range decls {
		e := elems[i]
		if r.ParentName == "" {
			tree.Roots = append(tree.Roots, e)
			continue
		}
		if parent, ok := containersByName[r.ParentName]; ok {
			parent.Children = append(parent.Children, e)
		} else {
			// Parent not extracted as its own element (e.g. an inner
			// function's parent is a function, not a container kind):
			// fall back to top-level so the element is never dropped.
			tree.Roots = append(tree.Roots, e)
		}
	}

	return tree
}

func toElement(r RawElement) *element.Element {
	e := &element.Element{
		Kind:           r.Kind,
		Name:           r.Name,
		Content:        r.Content,
		Range:          r.Range,
		ParentName:     r.ParentName,
		ValueType:      r.ValueType,
		Parameters:     r.Parameters,
		AdditionalData: r.AdditionalData,
	}
	if e.AdditionalData == nil {
		e.AdditionalData = make(map[string]any)
	}
	if r.Accessor != "" {
		e.AdditionalData["accessor"] = r.Accessor
	}
	return e
}

// nearestFollowing finds the declaration Element whose raw record has the
// smallest start line that is still >= the decorator's start line and
// shares the decorator's parent, i.e. the declaration the decorator
// immediately precedes.
func nearestFollowing(elems []*element.Element, decls []RawElement, decoratorLine int, parentName string) *element.Element {
	var best *element.Element
	bestLine := int(^uint(0) >> 1) // max int
	for i, r := range decls {
		if r.ParentName != parentName {
			continue
		}
		if r.Range.StartLine >= decoratorLine && r.Range.StartLine < bestLine {
			best = elems[i]
			bestLine = r.Range.StartLine
		}
	}
	return best
}

// foldImports concatenates import raw records (already source-ordered)
// into the single synthetic "imports" Element whose range spans the first
// to the last physical import line (spec §3.3).
func foldImports(records []RawElement) *element.Element {
	first := records[0]
	last := records[len(records)-1]

	content := ""
	for i, r := range records {
		if i > 0 {
			content += "\n"
		}
		content += r.Content
	}

	return &element.Element{
		Kind:    element.KindImport,
		Name:    "",
		Content: content,
		Range: element.Range{
			StartLine: first.Range.StartLine,
			StartCol:  first.Range.StartCol,
			EndLine:   last.Range.EndLine,
			EndCol:    last.Range.EndCol,
		},
		AdditionalData: map[string]any{"count": len(records)},
	}
}
