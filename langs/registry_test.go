package langs

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codehem/codehem-go/extract"
)

type fakeProvider struct {
	code    string
	aliases []string
	exts    []string
	sniff   func([]byte) bool
}

func (f *fakeProvider) Code() string                  { return f.code }
func (f *fakeProvider) Aliases() []string              { return f.aliases }
func (f *fakeProvider) Extensions() []string           { return f.exts }
func (f *fakeProvider) SitterLanguage() *sitter.Language { return nil }
func (f *fakeProvider) Family() Family                 { return FamilyIndent }
func (f *fakeProvider) BlockToken() string             { return ":" }
func (f *fakeProvider) Sniff(source []byte) bool {
	if f.sniff == nil {
		return false
	}
	return f.sniff(source)
}
func (f *fakeProvider) Extract(tree *sitter.Tree, source []byte) []extract.RawElement { return nil }
func (f *fakeProvider) OrganizeImports(source []byte) ([]byte, error)                 { return source, nil }

func TestRegisterAndByCode(t *testing.T) {
	r := NewRegistry()
	p := &fakeProvider{code: "python", aliases: []string{"py"}, exts: []string{".py"}}
	if err := r.Register(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := r.ByCode("python"); !ok || got != p {
		t.Fatalf("expected lookup by canonical code to succeed")
	}
	if got, ok := r.ByCode("py"); !ok || got != p {
		t.Fatalf("expected lookup by alias to succeed")
	}
}

func TestRegisterConflictingExtensionIsError(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&fakeProvider{code: "a", exts: []string{".x"}})
	err := r.Register(&fakeProvider{code: "b", exts: []string{".x"}})
	if err == nil {
		t.Fatalf("expected conflicting extension registration to fail")
	}
}

func TestByExtensionNormalizesCase(t *testing.T) {
	r := NewRegistry()
	p := &fakeProvider{code: "ts", exts: []string{".TS"}}
	_ = r.Register(p)
	if got, ok := r.ByExtension(".ts"); !ok || got != p {
		t.Fatalf("expected case-insensitive extension match")
	}
}

func TestDetectFallsBackToSniff(t *testing.T) {
	r := NewRegistry()
	p := &fakeProvider{
		code: "shell",
		sniff: func(b []byte) bool {
			return len(b) > 2 && string(b[:2]) == "#!"
		},
	}
	_ = r.Register(p)
	got, ok := r.Detect("noext", []byte("#!/bin/sh\necho hi\n"))
	if !ok || got != p {
		t.Fatalf("expected sniff fallback to resolve provider for an extensionless file")
	}
}

func TestAliasBindsToRegisteredCode(t *testing.T) {
	r := NewRegistry()
	p := &fakeProvider{code: "javascript", exts: []string{".js"}}
	_ = r.Register(p)
	if err := r.Alias("jsx", "javascript"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := r.ByCode("jsx"); !ok || got != p {
		t.Fatalf("expected alias lookup to resolve")
	}
	if err := r.Alias("jsx", "unregistered"); err == nil {
		t.Fatalf("expected alias to unregistered code to fail")
	}
}
