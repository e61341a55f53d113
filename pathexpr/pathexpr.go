// Package pathexpr implements the Path Resolver (component E, spec.md
// §4.E): it tokenizes a path expression, walks the Element Tree applying
// the resolver's kind-preference order, and computes the requested
// sub-range (whole element, signature, body, or accessor).
//
// Tokenizer style grounded on internal/parser/universal.go's DSL
// tokenizer (whitespace normalization, prefix scanning, token-membership
// validation) from the teacher repository — the grammar differs (dotted
// path vs kind:pattern DSL) but the scanning technique is reused
// directly; see DESIGN.md.
package pathexpr

import (
	"regexp"
	"strings"

	"github.com/codehem/codehem-go/element"
	"github.com/codehem/codehem-go/errs"
)

var whitespace = regexp.MustCompile(`\s+`)

// kindTags is the closed set of valid kindTag tokens (spec §3.4 grammar).
var kindTags = map[string]bool{
	"class": true, "method": true, "function": true, "property": true,
	"property_getter": true, "property_setter": true, "static_property": true,
	"interface": true, "type_alias": true, "enum": true, "namespace": true,
	"def": true, "body": true, "imports": true,
}

// kindTagToKind maps a kindTag that names an element.Kind directly
// (everything except the range-selectors def/body/imports) to its Kind.
var kindTagToKind = map[string]element.Kind{
	"class":           element.KindClass,
	"method":          element.KindMethod,
	"function":        element.KindFunction,
	"property":        element.KindProperty,
	"property_getter": element.KindPropertyGetter,
	"property_setter": element.KindPropertySetter,
	"static_property": element.KindStaticProperty,
	"interface":       element.KindInterface,
	"type_alias":      element.KindTypeAlias,
	"enum":            element.KindEnum,
	"namespace":       element.KindNamespace,
}

// Path is a parsed path expression: a dotted sequence of segments plus
// an optional trailing kindTag (spec §3.4 grammar).
type Path struct {
	Segments []string
	KindTag  string // "" if absent
	Raw      string
}

// Parse tokenizes raw into a Path, rejecting empty segments and unknown
// kindTags (spec §4.E step 1).
func Parse(raw string) (*Path, error) {
	trimmed := whitespace.ReplaceAllString(strings.TrimSpace(raw), "")
	if trimmed == "" {
		return nil, errs.New(errs.KindPathSyntaxError, "empty path expression")
	}

	kindTag := ""
	body := trimmed
	if strings.HasSuffix(trimmed, "]") {
		i := strings.LastIndexByte(trimmed, '[')
		if i < 0 {
			return nil, errs.New(errs.KindPathSyntaxError, "unmatched ']' in path: "+raw)
		}
		kindTag = trimmed[i+1 : len(trimmed)-1]
		body = trimmed[:i]
		if !kindTags[kindTag] {
			return nil, errs.Wrap(errs.KindPathSyntaxError,
				"unknown kind tag: "+kindTag, nil)
		}
	}

	if body == "" {
		return nil, errs.New(errs.KindPathSyntaxError, "path has no segments: "+raw)
	}

	segments := strings.Split(body, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, errs.New(errs.KindPathSyntaxError, "empty segment in path: "+raw)
		}
		if strings.ContainsAny(seg, "[]") {
			return nil, errs.New(errs.KindPathSyntaxError, "unmatched or misplaced bracket in path: "+raw)
		}
	}

	return &Path{Segments: segments, KindTag: kindTag, Raw: raw}, nil
}

// Result is the outcome of resolving a Path against a Tree (spec §4.E
// step 4): the resolved element, its effective (possibly sub-ranged)
// range, the exact content of that range, and an ambiguity flag.
type Result struct {
	Element       *element.Element
	EffectiveRange element.Range
	Content       string
	Ambiguous     bool
	// Suggestions holds "did you mean" candidates when resolution fails
	// because a segment has no exact match but a near-miss (case
	// differs, or singular/plural) exists. Informational only; never
	// changes resolution (supplemented feature, see SPEC_FULL.md).
	Suggestions []string
}

// Resolve walks tree per the parsed Path and computes the requested
// sub-range. includeExtra, when true, extends a "def"/whole-element
// range to include the element's attached decorators (spec §3.3's
// "include-extra variant", Open Question #1 in spec.md §9, pinned to
// "exclude by default, include on demand"). blockToken distinguishes the
// indent family (":") from the brace family ("{") for `[body]` range
// computation (spec §4.E step 3) — it is the one place path resolution
// needs to know the language family, so it is threaded in by the caller
// (the Provider already knows its own BlockToken()) rather than making
// this package depend on langs.
func Resolve(tree *element.Tree, path *Path, includeExtra bool, blockToken string) (*Result, error) {
	if len(path.Segments) == 0 {
		return nil, errs.New(errs.KindPathSyntaxError, "path has no segments")
	}

	// The "imports" path (or FILE.imports) matches the synthetic imports
	// element directly (spec §3.4).
	if path.Segments[len(path.Segments)-1] == "imports" || path.KindTag == "imports" {
		if tree.Imports == nil {
			return nil, errs.New(errs.KindElementNotFoundError, "file has no imports")
		}
		rng := tree.Imports.Range
		return &Result{Element: tree.Imports, EffectiveRange: rng, Content: tree.Imports.Content}, nil
	}

	segKind, last := segmentKind(path)

	var cur *element.Element
	var ambiguous bool
	for i, seg := range path.Segments {
		var kind element.Kind
		if i == last && segKind != "" {
			kind = segKind
		}
		var next *element.Element
		var amb bool
		if cur == nil {
			next, amb = findRoot(tree, seg, kind)
		} else {
			next, amb = findChild(cur, seg, kind)
		}
		if next == nil {
			return &Result{Suggestions: suggestFor(tree, cur, seg)},
				errs.New(errs.KindElementNotFoundError, "no element at path: "+path.Raw)
		}
		cur = next
		ambiguous = ambiguous || amb
	}

	rng, content, err := subRange(cur, path.KindTag, includeExtra, blockToken)
	if err != nil {
		return nil, err
	}

	return &Result{
		Element:        cur,
		EffectiveRange: rng,
		Content:        content,
		Ambiguous:      ambiguous,
	}, nil
}

// segmentKind returns the element.Kind implied by the path's kindTag (if
// any) that should constrain the *last* segment's lookup, and the index
// of that last segment. Range-selector tags (def/body/imports/accessor
// tags) don't themselves pick a resolution kind except the accessor tags
// (property_getter/property_setter), which do.
func segmentKind(path *Path) (element.Kind, int) {
	last := len(path.Segments) - 1
	switch path.KindTag {
	case "def", "body", "", "imports":
		return "", last
	default:
		return kindTagToKind[path.KindTag], last
	}
}

func findRoot(tree *element.Tree, name string, kind element.Kind) (*element.Element, bool) {
	return selectByPreference(rootCandidates(tree, name), kind)
}

func findChild(parent *element.Element, name string, kind element.Kind) (*element.Element, bool) {
	return selectByPreference(childCandidates(parent, name), kind)
}

func rootCandidates(tree *element.Tree, name string) []*element.Element {
	var out []*element.Element
	for _, r := range tree.Roots {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

func childCandidates(parent *element.Element, name string) []*element.Element {
	var out []*element.Element
	for _, c := range parent.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// selectByPreference implements spec §3.4's resolution rule: "Without a
// kindTag, the resolver picks the unique child whose name matches; if
// ambiguous, returns the first declared in source and reports an
// ambiguity warning (never silently picks among unrelated kinds across
// all siblings; preference order: method ≻ property ≻ static_property ≻
// nested class)." With a kindTag, it filters to an exact kind match and,
// per spec §4.E's duplicate-method edge case, returns the *last*
// declared among same-name-same-kind duplicates.
func selectByPreference(candidates []*element.Element, kind element.Kind) (*element.Element, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	if kind != "" {
		var matches []*element.Element
		for _, c := range candidates {
			if c.Kind == kind {
				matches = append(matches, c)
			}
		}
		if len(matches) == 0 {
			return nil, false
		}
		return matches[len(matches)-1], len(matches) > 1
	}

	if len(candidates) == 1 {
		return candidates[0], false
	}

	// No kindTag: check for same-kind duplicates first (the duplicate
	// method edge case - spec §4.E: "resolver returns the last declared
	// (source order)").
	byKind := make(map[element.Kind][]*element.Element)
	for _, c := range candidates {
		byKind[c.Kind] = append(byKind[c.Kind], c)
	}
	if len(byKind) == 1 {
		for k := range byKind {
			group := byKind[k]
			return group[len(group)-1], len(group) > 1
		}
	}

	// Multiple distinct kinds share this name: apply the kind-preference
	// order (method ≻ property ≻ static_property ≻ nested class), first
	// declared within the winning kind.
	best := candidates[0]
	for _, c := range candidates[1:] {
		if element.PreferenceRank(c.Kind) < element.PreferenceRank(best.Kind) {
			best = c
		}
	}
	return best, true
}

// suggestFor builds "did you mean" candidates (case-insensitive or
// singular/plural near-misses) among the siblings that were actually
// searched, purely informational (supplemented feature; spec.md never
// specifies this — see SPEC_FULL.md "find_by_xpath partial/prefix
// diagnostics").
func suggestFor(tree *element.Tree, parent *element.Element, seg string) []string {
	var pool []*element.Element
	if parent == nil {
		pool = tree.Roots
	} else {
		pool = parent.Children
	}
	lower := strings.ToLower(seg)
	var out []string
	for _, c := range pool {
		cl := strings.ToLower(c.Name)
		if cl == lower || cl == lower+"s" || cl+"s" == lower {
			out = append(out, c.Name)
		}
	}
	return out
}

// subRange computes the effective range and content for the resolved
// element given the path's kindTag (spec §4.E step 3).
func subRange(e *element.Element, kindTag string, includeExtra bool, blockToken string) (element.Range, string, error) {
	switch kindTag {
	case "", "def":
		return wholeRange(e, includeExtra), wholeContent(e, includeExtra), nil
	case "body":
		return BodyRange(e, blockToken)
	case "property_getter":
		return accessorRange(e, element.KindPropertyGetter)
	case "property_setter":
		return accessorRange(e, element.KindPropertySetter)
	default:
		// Other kindTags (class/method/function/...) already constrained
		// *which* element was resolved; the range is still the whole
		// element.
		return wholeRange(e, includeExtra), wholeContent(e, includeExtra), nil
	}
}

func wholeRange(e *element.Element, includeExtra bool) element.Range {
	rng := e.Range
	if includeExtra && len(e.Decorators) > 0 {
		rng.StartLine = e.Decorators[0].Range.StartLine
		rng.StartCol = e.Decorators[0].Range.StartCol
	}
	return rng
}

func wholeContent(e *element.Element, includeExtra bool) string {
	if includeExtra && len(e.Decorators) > 0 {
		parts := make([]string, 0, len(e.Decorators)+1)
		for _, d := range e.Decorators {
			parts = append(parts, d.Content)
		}
		parts = append(parts, e.Content)
		return strings.Join(parts, "\n")
	}
	return e.Content
}

// BodyRange computes the `[body]` sub-range (spec §4.E step 3): for
// callables, the range starting after the signature line and the
// language-specific block token through the last non-blank line of the
// suite (spec.md §9 Open Question #2, pinned to "end at the last
// non-blank line"); for properties, the initializer expression range. On
// kinds without a body (no HasBody) the resolver returns an
// ElementNotFoundError, matching spec §3.4's "on kinds without a body
// the resolver returns null".
func BodyRange(e *element.Element, blockToken string) (element.Range, string, error) {
	if !e.Kind.HasBody() {
		return element.Range{}, "", errs.New(errs.KindElementNotFoundError,
			"kind "+string(e.Kind)+" has no body")
	}

	if e.Kind == element.KindProperty || e.Kind == element.KindStaticProperty {
		if dv, ok := e.AdditionalData["default_value"].(string); ok {
			return e.Range, dv, nil
		}
		return element.Range{}, "", errs.New(errs.KindElementNotFoundError,
			"property "+e.Name+" has no initializer")
	}

	lines := strings.Split(e.Content, "\n")
	blockLine := -1
	for i, line := range lines {
		if idx := strings.Index(line, blockToken); idx >= 0 {
			blockLine = i
			break
		}
	}
	if blockLine < 0 {
		return element.Range{}, "", errs.New(errs.KindElementNotFoundError,
			"no block token found in "+e.Name)
	}

	var bodyLines []string
	after := lines[blockLine]
	if idx := strings.Index(after, blockToken); idx >= 0 {
		rest := after[idx+len(blockToken):]
		if strings.TrimSpace(rest) != "" {
			bodyLines = append(bodyLines, rest)
		}
	}
	bodyLines = append(bodyLines, lines[blockLine+1:]...)

	// Trim trailing blank lines owned by the suite (Open Question #2).
	for len(bodyLines) > 0 && strings.TrimSpace(bodyLines[len(bodyLines)-1]) == "" {
		bodyLines = bodyLines[:len(bodyLines)-1]
	}
	if e.Kind != "" && len(bodyLines) > 0 && blockToken == "{" {
		// Brace family: drop a trailing lone "}" closing the block.
		last := strings.TrimSpace(bodyLines[len(bodyLines)-1])
		if last == "}" {
			bodyLines = bodyLines[:len(bodyLines)-1]
			for len(bodyLines) > 0 && strings.TrimSpace(bodyLines[len(bodyLines)-1]) == "" {
				bodyLines = bodyLines[:len(bodyLines)-1]
			}
		}
	}

	startLine := e.Range.StartLine + blockLine
	endLine := e.Range.StartLine + blockLine + len(bodyLines)
	if len(bodyLines) == 0 {
		endLine = startLine
	}

	return element.Range{
			StartLine: startLine + 1,
			StartCol:  1,
			EndLine:   endLine,
			EndCol:    1,
		},
		strings.Join(bodyLines, "\n"), nil
}

func accessorRange(e *element.Element, kind element.Kind) (element.Range, string, error) {
	for _, c := range e.Children {
		if c.Kind == kind && c.Name == e.Name {
			return c.Range, c.Content, nil
		}
	}
	if e.Kind == kind {
		return e.Range, e.Content, nil
	}
	return element.Range{}, "", errs.New(errs.KindElementNotFoundError,
		"no "+string(kind)+" for element "+e.Name)
}
