// Package typescript implements the TypeScript language plug-in: the
// brace family's reference Element Extractor (component C). TypeScript
// is the brace family per spec §4.F (block marker "{"/"}") and is the
// only retrieved-corpus language whose grammar has direct equivalents
// for every kind in the closed enumeration (get/set accessor methods,
// decorator, interface_declaration, type_alias_declaration,
// enum_declaration) — see SPEC_FULL.md §4.C/D.
//
// Grounded on providers/typescript/config.go's node-type switches from
// the teacher repository; see DESIGN.md.
package typescript

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsts "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/codehem/codehem-go/element"
	"github.com/codehem/codehem-go/extract"
	"github.com/codehem/codehem-go/langs"
	"github.com/codehem/codehem-go/navigator"
)

// Provider implements langs.Provider for TypeScript.
type Provider struct{}

// New returns the TypeScript language plug-in.
func New() *Provider { return &Provider{} }

func (p *Provider) Code() string             { return "typescript" }
func (p *Provider) Aliases() []string        { return []string{"ts"} }
func (p *Provider) Extensions() []string     { return []string{".ts", ".tsx"} }
func (p *Provider) SitterLanguage() *sitter.Language { return tsts.GetLanguage() }
func (p *Provider) Family() langs.Family     { return langs.FamilyBrace }
func (p *Provider) BlockToken() string       { return "{" }

// Sniff has no reliable leading-bytes signature for TypeScript (unlike a
// shebang language); it always defers to extension-based detection.
func (p *Provider) Sniff(source []byte) bool { return false }

func (p *Provider) Extract(tree *sitter.Tree, source []byte) []extract.RawElement {
	var out []extract.RawElement
	walk(tree.RootNode(), source, "", &out)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range.StartLine < out[j].Range.StartLine
	})
	return out
}

func walk(node *sitter.Node, source []byte, parentName string, out *[]extract.RawElement) {
	if node == nil {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "class_declaration":
			emitClass(child, source, parentName, out)
		case "interface_declaration":
			emitInterface(child, source, parentName, out)
		case "type_alias_declaration":
			emitTypeAlias(child, source, parentName, out)
		case "enum_declaration":
			emitEnum(child, source, parentName, out)
		case "function_declaration":
			emitFunction(child, source, parentName, out)
		case "import_statement":
			emitImport(child, source, out)
		case "export_statement":
			// `export class X {}` / `export function f() {}`: unwrap and
			// recurse on the exported declaration directly so it is
			// addressable under its own name.
			walk(child, source, parentName, out)
		default:
		}
	}
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

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Type() {
		case "method_definition":
			emitMethod(member, source, name, out)
		case "public_field_definition", "property_definition":
			emitField(member, source, name, out)
		case "decorator":
			emitClassMemberDecorator(member, source, name, body, i, out)
		}
	}
}

// emitClassMemberDecorator attaches a standalone class-member decorator
// (`@Input() foo: string`) to the next member declaration in the class
// body, mirroring the generic nearest-following attachment the
// post-processor performs for other languages.
func emitClassMemberDecorator(node *sitter.Node, source []byte, parentName string, body *sitter.Node, index int, out *[]extract.RawElement) {
	sl, el := navigator.NodeRange(node)
	sc, ec := navigator.NodeCols(node)
	*out = append(*out, extract.RawElement{
		Kind:        element.KindDecorator,
		Content:     "",
		Range:       element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
		ParentName:  parentName,
		IsDecorator: true,
	})
}

func emitMethod(node *sitter.Node, source []byte, parentName string, out *[]extract.RawElement) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := navigator.NodeText(nameNode, source)

	kind := element.KindMethod
	accessor := ""
	if hasKeyword(node, "get") {
		kind = element.KindPropertyGetter
		accessor = "get"
	} else if hasKeyword(node, "set") {
		kind = element.KindPropertySetter
		accessor = "set"
	}

	sl, el := navigator.NodeRange(node)
	sc, ec := navigator.NodeCols(node)
	rec := extract.RawElement{
		Kind:       kind,
		Name:       name,
		Content:    navigator.NodeText(node, source),
		Range:      element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
		ParentName: parentName,
		Accessor:   accessor,
		Parameters: extractParameters(node, source),
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		rec.ValueType = navigator.NodeText(rt, source)
	}
	*out = append(*out, rec)
}

// hasKeyword reports whether node's first child (before the name field)
// is the literal "get"/"set" keyword token, the tree-sitter-typescript
// grammar's representation of an accessor method (there is no dedicated
// get_accessor/set_accessor node type; it is a method_definition whose
// leading anonymous token is the accessor keyword).
func hasKeyword(node *sitter.Node, kw string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() == kw {
			return true
		}
		if c.Type() == "property_identifier" {
			break
		}
	}
	return false
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
		case "required_parameter", "optional_parameter":
			if n := c.ChildByFieldName("pattern"); n != nil {
				p.Name = navigator.NodeText(n, source)
			}
			if t := c.ChildByFieldName("type"); t != nil {
				p.ValueType = navigator.NodeText(t, source)
			}
			if v := c.ChildByFieldName("value"); v != nil {
				p.DefaultValue = navigator.NodeText(v, source)
			}
		case "identifier":
			p.Name = navigator.NodeText(c, source)
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

func emitField(node *sitter.Node, source []byte, parentName string, out *[]extract.RawElement) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	kind := element.KindProperty
	if isStatic(node) {
		kind = element.KindStaticProperty
	}

	sl, el := navigator.NodeRange(node)
	sc, ec := navigator.NodeCols(node)
	rec := extract.RawElement{
		Kind:       kind,
		Name:       navigator.NodeText(nameNode, source),
		Content:    navigator.NodeText(node, source),
		Range:      element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
		ParentName: parentName,
	}
	if t := node.ChildByFieldName("type"); t != nil {
		rec.ValueType = navigator.NodeText(t, source)
	}
	if v := node.ChildByFieldName("value"); v != nil {
		rec.AdditionalData = map[string]any{"default_value": navigator.NodeText(v, source)}
	}
	*out = append(*out, rec)
}

func isStatic(node *sitter.Node) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "static" {
			return true
		}
	}
	return false
}

func emitInterface(node *sitter.Node, source []byte, parentName string, out *[]extract.RawElement) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	sl, el := navigator.NodeRange(node)
	sc, ec := navigator.NodeCols(node)
	*out = append(*out, extract.RawElement{
		Kind:       element.KindInterface,
		Name:       navigator.NodeText(nameNode, source),
		Content:    navigator.NodeText(node, source),
		Range:      element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
		ParentName: parentName,
	})
}

func emitTypeAlias(node *sitter.Node, source []byte, parentName string, out *[]extract.RawElement) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	sl, el := navigator.NodeRange(node)
	sc, ec := navigator.NodeCols(node)
	*out = append(*out, extract.RawElement{
		Kind:       element.KindTypeAlias,
		Name:       navigator.NodeText(nameNode, source),
		Content:    navigator.NodeText(node, source),
		Range:      element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
		ParentName: parentName,
	})
}

func emitEnum(node *sitter.Node, source []byte, parentName string, out *[]extract.RawElement) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	sl, el := navigator.NodeRange(node)
	sc, ec := navigator.NodeCols(node)

	var members []string
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			m := body.Child(i)
			if m.Type() == "property_identifier" || m.Type() == "enum_assignment" {
				members = append(members, navigator.NodeText(m, source))
			}
		}
	}

	*out = append(*out, extract.RawElement{
		Kind:           element.KindEnum,
		Name:           navigator.NodeText(nameNode, source),
		Content:        navigator.NodeText(node, source),
		Range:          element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
		ParentName:     parentName,
		AdditionalData: map[string]any{"members": members},
	})
}

func emitFunction(node *sitter.Node, source []byte, parentName string, out *[]extract.RawElement) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	sl, el := navigator.NodeRange(node)
	sc, ec := navigator.NodeCols(node)
	rec := extract.RawElement{
		Kind:       element.KindFunction,
		Name:       navigator.NodeText(nameNode, source),
		Content:    navigator.NodeText(node, source),
		Range:      element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
		ParentName: parentName,
		Parameters: extractParameters(node, source),
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		rec.ValueType = navigator.NodeText(rt, source)
	}
	*out = append(*out, rec)
}

func emitImport(node *sitter.Node, source []byte, out *[]extract.RawElement) {
	sl, el := navigator.NodeRange(node)
	sc, ec := navigator.NodeCols(node)
	name := ""
	if src := node.ChildByFieldName("source"); src != nil {
		name = strings.Trim(navigator.NodeText(src, source), `"'`)
	}
	*out = append(*out, extract.RawElement{
		Kind:    element.KindImport,
		Name:    name,
		Content: navigator.NodeText(node, source),
		Range:   element.Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec},
	})
}

// OrganizeImports dedupes identical `import ... from "..."` lines,
// keeping first-seen order. Supplemented feature, see SPEC_FULL.md
// "Import-block re-formatting on imports append".
func (p *Provider) OrganizeImports(source []byte) ([]byte, error) {
	lines := strings.Split(string(source), "\n")
	seen := make(map[string]bool)
	var result []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") {
			if seen[trimmed] {
				continue
			}
			seen[trimmed] = true
		}
		result = append(result, line)
	}
	return []byte(strings.Join(result, "\n")), nil
}

var _ langs.Provider = (*Provider)(nil)
