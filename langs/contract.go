// Package langs defines the language plug-in protocol (spec.md §6.4, §9):
// a fixed capability set (parser, extractor, formatter family,
// manipulator configuration) that connects the core to language-specific
// parsing, and the write-once Registry that maps extensions/codes/aliases
// to a registered Provider.
//
// Grounded on internal/provider/contract.go's LanguageProvider interface
// and internal/registry/registry.go's Registry from the teacher
// repository; see DESIGN.md.
package langs

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codehem/codehem-go/extract"
)

// Family is the formatter family a language belongs to (spec §4.F).
type Family string

const (
	FamilyIndent Family = "indent" // block marker ":" — e.g. Python
	FamilyBrace  Family = "brace"  // block marker "{" / "}" — e.g. TypeScript
)

// Provider is the fixed capability set every language plug-in exposes.
// A plug-in is a value implementing this interface; registration is a
// write-once map under an initialization lock (spec §9), never dynamic
// class-based dispatch.
type Provider interface {
	// Code returns the canonical language identifier (e.g. "python").
	Code() string

	// Aliases returns alternative codes (e.g. "js" -> "javascript").
	Aliases() []string

	// Extensions returns the file extensions this plug-in claims.
	Extensions() []string

	// SitterLanguage returns the tree-sitter grammar binding.
	SitterLanguage() *sitter.Language

	// Family reports the formatter family this language belongs to.
	Family() Family

	// BlockToken is the token introducing a block: ":" for indent family,
	// "{" for brace family (spec §4.E step 3, §4.F).
	BlockToken() string

	// Sniff reports whether the leading bytes of a buffer identify this
	// language (shebangs, `<?php`, etc.), used by Registry.Detect when no
	// file extension is available (spec §6.1 detect, §4.I sniffing).
	Sniff(source []byte) bool

	// Extract walks a parsed tree and emits the per-language raw element
	// records (component C). The generic post-processor (extract.Fold)
	// turns these into the typed Element Tree (component D).
	Extract(tree *sitter.Tree, source []byte) []extract.RawElement

	// OrganizeImports re-sorts/dedupes the synthetic imports element's
	// content, used by the "imports" append supplemented feature.
	OrganizeImports(source []byte) ([]byte, error)
}
