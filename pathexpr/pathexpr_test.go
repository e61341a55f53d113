package pathexpr

import (
	"testing"

	"github.com/codehem/codehem-go/element"
	"github.com/codehem/codehem-go/errs"
)

func TestParseValidPath(t *testing.T) {
	p, err := Parse("C.f[body]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Segments) != 2 || p.Segments[0] != "C" || p.Segments[1] != "f" || p.KindTag != "body" {
		t.Fatalf("unexpected parse result: %+v", p)
	}
}

func TestParseRejectsUnknownKindTag(t *testing.T) {
	if _, err := Parse("C.f[bogus]"); err == nil {
		t.Fatalf("expected unknown kind tag to be rejected")
	}
}

func TestParseRejectsEmptySegment(t *testing.T) {
	if _, err := Parse("C..f"); err == nil {
		t.Fatalf("expected empty segment to be rejected")
	}
}

func TestParseRejectsUnmatchedBracket(t *testing.T) {
	if _, err := Parse("C.f[body"); err == nil {
		t.Fatalf("expected unmatched '[' to be rejected")
	}
}

func buildClassTree() *element.Tree {
	cls := element.NewElement(element.KindClass, "C")
	method := element.NewElement(element.KindMethod, "f")
	method.Content = "def f(self):\n        return 1"
	method.Range = element.Range{StartLine: 2, StartCol: 1, EndLine: 3, EndCol: 17}
	cls.Children = []*element.Element{method}
	return &element.Tree{Roots: []*element.Element{cls}}
}

func TestResolveWholeElement(t *testing.T) {
	tree := buildClassTree()
	path, _ := Parse("C.f")
	res, err := Resolve(tree, path, false, ":")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "def f(self):\n        return 1" {
		t.Fatalf("unexpected content: %q", res.Content)
	}
}

func TestResolveBodyIndentFamily(t *testing.T) {
	tree := buildClassTree()
	path, _ := Parse("C.f[body]")
	res, err := Resolve(tree, path, false, ":")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "        return 1" {
		t.Fatalf("expected body with its original indentation preserved, got %q", res.Content)
	}
}

func TestResolveNotFoundReportsSuggestion(t *testing.T) {
	tree := buildClassTree()
	path, _ := Parse("C.g")
	_, err := Resolve(tree, path, false, ":")
	if err == nil {
		t.Fatalf("expected ElementNotFoundError for missing segment")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.KindElementNotFoundError {
		t.Fatalf("expected ElementNotFoundError, got %v", err)
	}
}

func TestResolveDuplicateMethodLastDeclaredWins(t *testing.T) {
	cls := element.NewElement(element.KindClass, "C")
	first := element.NewElement(element.KindMethod, "dup")
	first.Content = "def dup():\n    return 1"
	first.Range = element.Range{StartLine: 2, StartCol: 1, EndLine: 3, EndCol: 1}
	second := element.NewElement(element.KindMethod, "dup")
	second.Content = "def dup():\n    return 2"
	second.Range = element.Range{StartLine: 5, StartCol: 1, EndLine: 6, EndCol: 1}
	cls.Children = []*element.Element{first, second}
	tree := &element.Tree{Roots: []*element.Element{cls}}

	path, _ := Parse("C.dup[method]")
	res, err := Resolve(tree, path, false, ":")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "def dup():\n    return 2" || !res.Ambiguous {
		t.Fatalf("expected last-declared duplicate to win and be flagged ambiguous, got %+v", res)
	}
}

func TestResolveKindPreferenceOrder(t *testing.T) {
	cls := element.NewElement(element.KindClass, "C")
	prop := element.NewElement(element.KindProperty, "x")
	prop.Content = "x = 1"
	method := element.NewElement(element.KindMethod, "x")
	method.Content = "def x(self):\n    return 1"
	cls.Children = []*element.Element{prop, method}
	tree := &element.Tree{Roots: []*element.Element{cls}}

	path, _ := Parse("C.x")
	res, err := Resolve(tree, path, false, ":")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Element.Kind != element.KindMethod {
		t.Fatalf("expected method to win over property per preference order, got %s", res.Element.Kind)
	}
}

func TestResolveImportsPath(t *testing.T) {
	imports := element.NewElement(element.KindImport, "")
	imports.Content = "import os"
	tree := &element.Tree{Imports: imports}

	path, _ := Parse("FILE.imports")
	res, err := Resolve(tree, path, false, ":")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "import os" {
		t.Fatalf("unexpected imports content: %q", res.Content)
	}
}

func TestBodyRangeBraceFamilyStripsClosingBrace(t *testing.T) {
	e := element.NewElement(element.KindMethod, "f")
	e.Content = "f(): number {\n  return 1;\n}"
	e.Range = element.Range{StartLine: 2, StartCol: 1, EndLine: 4, EndCol: 1}

	rng, content, err := BodyRange(e, "{")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "  return 1;" {
		t.Fatalf("expected closing brace stripped from body, got %q", content)
	}
	_ = rng
}

func TestBodyRangeOnBodylessKindFails(t *testing.T) {
	e := element.NewElement(element.KindClass, "C")
	e.Content = "class C:\n    pass"
	if _, _, err := BodyRange(e, ":"); err == nil {
		t.Fatalf("expected class (no body) to raise ElementNotFoundError")
	}
}
