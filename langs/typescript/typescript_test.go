package typescript

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codehem/codehem-go/element"
	"github.com/codehem/codehem-go/extract"
)

func parse(t *testing.T, src string) (*sitter.Tree, []byte) {
	t.Helper()
	p := sitter.NewParser()
	p.SetLanguage(New().SitterLanguage())
	tree, err := p.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return tree, []byte(src)
}

func TestExtractClassAndMethod(t *testing.T) {
	src := "class C {\n  f(): number {\n    return 1;\n  }\n}\n"
	tree, source := parse(t, src)
	defer tree.Close()

	folded := extract.Fold("t.ts", source, New().Extract(tree, source))
	cls := folded.FindRoot("C", element.KindClass)
	if cls == nil {
		t.Fatalf("expected class C at root")
	}
	method := cls.FindChild("f", element.KindMethod, false)
	if method == nil {
		t.Fatalf("expected method f under class C")
	}
}

func TestExtractGetSetAccessors(t *testing.T) {
	src := "class C {\n  get x(): number {\n    return this._x;\n  }\n  set x(v: number) {\n    this._x = v;\n  }\n}\n"
	tree, source := parse(t, src)
	defer tree.Close()

	folded := extract.Fold("t.ts", source, New().Extract(tree, source))
	cls := folded.FindRoot("C", element.KindClass)

	if cls.FindChild("x", element.KindPropertyGetter, false) == nil {
		t.Fatalf("expected get accessor x")
	}
	if cls.FindChild("x", element.KindPropertySetter, false) == nil {
		t.Fatalf("expected set accessor x")
	}
}

func TestExtractInterfaceTypeAliasEnum(t *testing.T) {
	src := "interface I {\n  a: string;\n}\ntype T = string;\nenum E { A, B }\n"
	tree, source := parse(t, src)
	defer tree.Close()

	folded := extract.Fold("t.ts", source, New().Extract(tree, source))
	if folded.FindRoot("I", element.KindInterface) == nil {
		t.Fatalf("expected interface I")
	}
	if folded.FindRoot("T", element.KindTypeAlias) == nil {
		t.Fatalf("expected type alias T")
	}
	if folded.FindRoot("E", element.KindEnum) == nil {
		t.Fatalf("expected enum E")
	}
}

func TestExtractExportedClassUnwrapped(t *testing.T) {
	src := "export class C {\n  f() {\n    return 1;\n  }\n}\n"
	tree, source := parse(t, src)
	defer tree.Close()

	folded := extract.Fold("t.ts", source, New().Extract(tree, source))
	if folded.FindRoot("C", element.KindClass) == nil {
		t.Fatalf("expected exported class C to be addressable by its own name")
	}
}

func TestOrganizeImportsDedupes(t *testing.T) {
	p := New()
	src := "import { a } from \"x\";\nimport { a } from \"x\";\nconst y = 1;\n"
	out, err := p.OrganizeImports([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(out)
	want := "import { a } from \"x\";\nconst y = 1;\n"
	if got != want {
		t.Fatalf("expected deduped imports, got:\n%q\nwant:\n%q", got, want)
	}
}
