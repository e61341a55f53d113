// Package python implements the Python language plug-in: the indent
// family's reference Element Extractor (component C) and formatter/
// manipulator configuration. Python is the indent family per spec §4.F
// (block marker ":").
//
// Grounded on providers/python/config.go's node-type switches
// (function_definition/async_function_definition, class_definition,
// decorator, @property/@x.setter accessor detection) from the teacher
// repository; see DESIGN.md.
package python

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tspython "github.com/smacker/go-tree-sitter/python"

	"github.com/codehem/codehem-go/element"
	"github.com/codehem/codehem-go/extract"
	"github.com/codehem/codehem-go/langs"
	"github.com/codehem/codehem-go/navigator"
)

// Provider implements langs.Provider for Python.
type Provider struct{}

// New returns the Python language plug-in.
func New() *Provider { return &Provider{} }

func (p *Provider) Code() string             { return "python" }
func (p *Provider) Aliases() []string        { return []string{"py"} }
func (p *Provider) Extensions() []string     { return []string{".py", ".pyw", ".pyi"} }
func (p *Provider) SitterLanguage() *sitter.Language { return tspython.GetLanguage() }
func (p *Provider) Family() langs.Family     { return langs.FamilyIndent }
func (p *Provider) BlockToken() string       { return ":" }

// Sniff recognizes a `#!/usr/bin/env python` (or `python3`) shebang per
// spec §4.I/§6.1 "sniffing the leading bytes of a buffer".
func (p *Provider) Sniff(source []byte) bool {
	line := firstLine(source)
	return strings.HasPrefix(line, "#!") && strings.Contains(line, "python")
}

func firstLine(source []byte) string {
	if i := strings.IndexByte(string(source), '\n'); i >= 0 {
		return string(source[:i])
	}
	return string(source)
}

// Extract walks the parsed tree and emits raw element records (component
// C). Python's grammar wraps a decorated declaration in a
// "decorated_definition" node whose children are one or more "decorator"
// nodes followed by the definition; decorators are therefore visited
// alongside (not as siblings of) the class/function they precede.
func (p *Provider) Extract(tree *sitter.Tree, source []byte) []extract.RawElement {
	var out []extract.RawElement
	root := tree.RootNode()

	walk(root, source, "", &out)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range.StartLine < out[j].Range.StartLine
	})
	return out
}

// walk recurses through the module/class body, emitting one raw record
// per declaration and decorator, threading parentName down through
// nested classes.
func walk(node *sitter.Node, source []byte, parentName string, out *[]extract.RawElement) {
	if node == nil {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "decorated_definition":
			emitDecorated(child, source, parentName, out)
		case "function_definition", "async_function_definition":
			emitFunction(child, source, parentName, nil, out)
		case "class_definition":
			emitClass(child, source, parentName, out)
		case "import_statement", "import_from_statement":
			emitImport(child, source, out)
		case "expression_statement":
			emitAssignment(child, source, parentName, out)
		default:
			// Module-level control-flow wrappers (if __name__ == "__main__":
			// etc.) are not elements themselves but may contain one; the
			// spec's closed kind enumeration has no "block" kind, so such
			// wrappers are not walked into (their contents are not
			// addressable elements).
		}
	}
}

func emitDecorated(node *sitter.Node, source []byte, parentName string, out *[]extract.RawElement) {
	var decorators []*sitter.Node
	var def *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "decorator":
			decorators = append(decorators, child)
		case "function_definition", "async_function_definition":
			def = child
		case "class_definition":
			*out = append(*out, decoratorRecords(decorators, parentName)...)
			emitClass(child, source, parentName, out)
			return
		}
	}
	*out = append(*out, decoratorRecords(decorators, parentName)...)
	if def != nil {
		emitFunction(def, source, parentName, decorators, out)
	}
}

func decoratorRecords(decorators []*sitter.Node, parentName string) []extract.RawElement {
	var recs []extract.RawElement
	for _, d := range decorators {
		sl, el := navigator.NodeRange(d)
		sc, ec := navigator.NodeCols(d)
		recs = append(recs, extract.RawElement{
			Kind:        element.KindDecorator,
			Name:        decoratorName(d),
			Content:     "",
			Range:       element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
			ParentName:  parentName,
			IsDecorator: true,
		})
	}
	return recs
}

func decoratorName(d *sitter.Node) string {
	for i := 0; i < int(d.ChildCount()); i++ {
		c := d.Child(i)
		if c.Type() == "identifier" || c.Type() == "attribute" || c.Type() == "call" {
			return c.Type()
		}
	}
	return ""
}

// decoratorText returns the decorator's bare text (without the leading
// "@"), e.g. "property" or "value.setter".
func decoratorText(d *sitter.Node, source []byte) string {
	txt := navigator.NodeText(d, source)
	return strings.TrimSpace(strings.TrimPrefix(txt, "@"))
}

func emitFunction(node *sitter.Node, source []byte, parentName string, decorators []*sitter.Node, out *[]extract.RawElement) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := navigator.NodeText(nameNode, source)

	kind := element.KindFunction
	accessor := ""
	if parentName != "" {
		kind = element.KindMethod
	}
	for _, d := range decorators {
		text := decoratorText(d, source)
		switch {
		case text == "property":
			kind = element.KindPropertyGetter
			accessor = "get"
		case strings.HasSuffix(text, ".setter"):
			kind = element.KindPropertySetter
			accessor = "set"
		case strings.HasSuffix(text, ".deleter"):
			// No deleter kind in the closed enumeration (spec §3.1); kept
			// as a plain method so it is still addressable.
		}
	}

	sl, el := navigator.NodeRange(node)
	sc, ec := navigator.NodeCols(node)
	*out = append(*out, extract.RawElement{
		Kind:       kind,
		Name:       name,
		Content:    navigator.NodeText(node, source),
		Range:      element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
		ParentName: parentName,
		Accessor:   accessor,
		Parameters: extractParameters(node, source),
		ValueType:  returnType(node, source),
	})

	// A method's body may itself contain nested classes/functions the
	// spec does not model as addressable children of a callable, so
	// recursion stops at the callable boundary.
}

func returnType(node *sitter.Node, source []byte) string {
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		return navigator.NodeText(rt, source)
	}
	return ""
}

func extractParameters(fn *sitter.Node, source []byte) []element.Parameter {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []element.Parameter
	idx := 0
	for i := 0; i < int(params.ChildCount()); i++ {
		c := params.Child(i)
		p := element.Parameter{Index: idx}
		switch c.Type() {
		case "identifier":
			p.Name = navigator.NodeText(c, source)
		case "typed_parameter":
			if n := c.Child(0); n != nil {
				p.Name = navigator.NodeText(n, source)
			}
			if t := c.ChildByFieldName("type"); t != nil {
				p.ValueType = navigator.NodeText(t, source)
			}
		case "default_parameter":
			if n := c.ChildByFieldName("name"); n != nil {
				p.Name = navigator.NodeText(n, source)
			}
			if v := c.ChildByFieldName("value"); v != nil {
				p.DefaultValue = navigator.NodeText(v, source)
			}
		case "typed_default_parameter":
			if n := c.ChildByFieldName("name"); n != nil {
				p.Name = navigator.NodeText(n, source)
			}
			if t := c.ChildByFieldName("type"); t != nil {
				p.ValueType = navigator.NodeText(t, source)
			}
			if v := c.ChildByFieldName("value"); v != nil {
				p.DefaultValue = navigator.NodeText(v, source)
			}
		default:
			continue
		}
		if p.Name == "" {
			continue
		}
		out = append(out, p)
		idx++
	}
	return out
}

func emitClass(node *sitter.Node, source []byte, parentName string, out *[]extract.RawElement) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := navigator.NodeText(nameNode, source)

	sl, el := navigator.NodeRange(node)
	sc, ec := navigator.NodeCols(node)
	*out = append(*out, extract.RawElement{
		Kind:       element.KindClass,
		Name:       name,
		Content:    navigator.NodeText(node, source),
		Range:      element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
		ParentName: parentName,
	})

	if body := node.ChildByFieldName("body"); body != nil {
		walk(body, source, name, out)
	}
}

func emitImport(node *sitter.Node, source []byte, out *[]extract.RawElement) {
	sl, el := navigator.NodeRange(node)
	sc, ec := navigator.NodeCols(node)
	*out = append(*out, extract.RawElement{
		Kind:    element.KindImport,
		Name:    importName(node, source),
		Content: navigator.NodeText(node, source),
		Range:   element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
	})
}

func importName(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "import_from_statement":
		if m := node.ChildByFieldName("module_name"); m != nil {
			return navigator.NodeText(m, source)
		}
	case "import_statement":
		for i := 0; i < int(node.ChildCount()); i++ {
			c := node.Child(i)
			if c.Type() == "dotted_name" || c.Type() == "aliased_import" {
				return navigator.NodeText(c, source)
			}
		}
	}
	return ""
}

// emitAssignment recognizes class/module-level `name = value` and
// `name: Type = value` statements as property/static_property elements
// (spec §3.1). Attribute assignments (`self.x = ...`) and subscript
// targets are not variable declarations and are skipped, matching the
// teacher's own ValidateAssignment rule in providers/python/config.go.
func emitAssignment(stmt *sitter.Node, source []byte, parentName string, out *[]extract.RawElement) {
	if stmt.ChildCount() == 0 {
		return
	}
	node := stmt.Child(0)
	var left, valueType, value *sitter.Node
	switch node.Type() {
	case "assignment":
		left = node.ChildByFieldName("left")
		valueType = node.ChildByFieldName("type")
		value = node.ChildByFieldName("right")
	default:
		return
	}
	if left == nil || left.Type() != "identifier" {
		return
	}

	kind := element.KindStaticProperty
	if parentName != "" {
		kind = element.KindProperty
	}

	sl, el := navigator.NodeRange(stmt)
	sc, ec := navigator.NodeCols(stmt)
	rec := extract.RawElement{
		Kind:       kind,
		Name:       navigator.NodeText(left, source),
		Content:    navigator.NodeText(stmt, source),
		Range:      element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
		ParentName: parentName,
	}
	if valueType != nil {
		rec.ValueType = navigator.NodeText(valueType, source)
	}
	if value != nil {
		rec.AdditionalData = map[string]any{"default_value": navigator.NodeText(value, source)}
	}
	*out = append(*out, rec)
}

// OrganizeImports re-sorts the module's import block into two
// blank-line-separated groups (standard-library, then everything else),
// deduping identical lines. Supplemented feature grounded on the
// original Python `codehem`'s import re-formatting (see SPEC_FULL.md
// "Import-block re-formatting on imports append").
func (p *Provider) OrganizeImports(source []byte) ([]byte, error) {
	lines := strings.Split(string(source), "\n")
	var stdlib, other []string
	seen := make(map[string]bool)
	firstImportLine := -1
	lastImportLine := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") {
			if firstImportLine == -1 {
				firstImportLine = i
			}
			lastImportLine = i
			if seen[trimmed] {
				continue
			}
			seen[trimmed] = true
			if isStdlibImport(trimmed) {
				stdlib = append(stdlib, line)
			} else {
				other = append(other, line)
			}
		}
	}
	if firstImportLine == -1 {
		return source, nil
	}

	var block []string
	block = append(block, stdlib...)
	if len(stdlib) > 0 && len(other) > 0 {
		block = append(block, "")
	}
	block = append(block, other...)

	result := append([]string{}, lines[:firstImportLine]...)
	result = append(result, block...)
	result = append(result, lines[lastImportLine+1:]...)
	return []byte(strings.Join(result, "\n")), nil
}

var pythonStdlib = map[string]bool{
	"os": true, "sys": true, "re": true, "json": true, "typing": true,
	"collections": true, "itertools": true, "functools": true, "abc": true,
	"pathlib": true, "dataclasses": true, "enum": true, "io": true,
	"logging": true, "math": true, "time": true, "datetime": true,
	"asyncio": true, "unittest": true, "subprocess": true, "threading": true,
}

func isStdlibImport(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return false
	}
	module := strings.Split(fields[1], ".")[0]
	return pythonStdlib[module]
}

var _ langs.Provider = (*Provider)(nil)
