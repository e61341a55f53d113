// Package codehem is the root Library Surface of spec.md §6.1: a small
// set of free functions composing the parser/extractor/resolver/
// manipulator/workspace packages behind one stable API, the way
// providers/contract.go exposes Registry at package level for
// cmd/morfx to consume in the teacher repository (see DESIGN.md).
package codehem

import (
	"bytes"
	"context"

	"github.com/codehem/codehem-go/element"
	"github.com/codehem/codehem-go/errs"
	"github.com/codehem/codehem-go/extract"
	"github.com/codehem/codehem-go/formatter"
	"github.com/codehem/codehem-go/hashutil"
	"github.com/codehem/codehem-go/langs"
	"github.com/codehem/codehem-go/langs/python"
	"github.com/codehem/codehem-go/langs/typescript"
	"github.com/codehem/codehem-go/manipulator"
	"github.com/codehem/codehem-go/parser"
	"github.com/codehem/codehem-go/pathexpr"
	"github.com/codehem/codehem-go/workspace"
)

// DefaultRegistry is populated at package init with the two reference
// language plug-ins (spec §1: "Two reference plug-ins... are in scope as
// concrete contracts"). Populated once under the registry's own lock per
// spec §9 ("a plug-in is a value... registration is a write-once map
// under an initialization lock"); late registration is supported via
// Register but discouraged in concurrent settings (spec §5).
var DefaultRegistry = langs.NewRegistry()

func init() {
	mustRegister(python.New())
	mustRegister(typescript.New())
}

func mustRegister(p langs.Provider) {
	if err := DefaultRegistry.Register(p); err != nil {
		panic(err)
	}
}

// Register adds an additional language plug-in to DefaultRegistry,
// supporting "adding a new language must be possible without touching
// the core" (spec.md §1).
func Register(p langs.Provider) error {
	return DefaultRegistry.Register(p)
}

var defaultFacade = parser.New(128)

// Detect resolves a language code from a file path and/or its content
// (spec §6.1 detect(source_or_path)).
func Detect(path string, source []byte) (string, error) {
	p, ok := DefaultRegistry.Detect(path, source)
	if !ok {
		return "", errs.New(errs.KindUnsupportedLanguageError, "no plug-in matched "+path)
	}
	return p.Code(), nil
}

// Extract parses sourceBytes and folds it into the Element Tree (spec
// §6.1 extract(source_bytes, language_code)).
func Extract(sourceBytes []byte, languageCode string) (*element.Tree, error) {
	provider, ok := DefaultRegistry.ByCode(languageCode)
	if !ok {
		return nil, errs.New(errs.KindUnsupportedLanguageError, "unknown language code: "+languageCode)
	}
	return extractTree(context.Background(), provider, sourceBytes)
}

func extractTree(ctx context.Context, provider langs.Provider, source []byte) (*element.Tree, error) {
	sourceLF := bytes.ReplaceAll(source, []byte("\r\n"), []byte("\n"))
	tree, err := defaultFacade.Parse(ctx, provider, "", sourceLF)
	if err != nil {
		return nil, err
	}
	raw := provider.Extract(tree, sourceLF)
	return extract.Fold("", sourceLF, raw), nil
}

// GetTextByPath resolves path against sourceBytes (parsed with
// languageCode's plug-in) and returns its exact text and fragment hash
// (spec §6.1 get_text_by_path).
func GetTextByPath(sourceBytes []byte, languageCode string, path string, includeExtra bool) (string, string, error) {
	provider, ok := DefaultRegistry.ByCode(languageCode)
	if !ok {
		return "", "", errs.New(errs.KindUnsupportedLanguageError, "unknown language code: "+languageCode)
	}
	tree, err := extractTree(context.Background(), provider, sourceBytes)
	if err != nil {
		return "", "", err
	}
	parsed, err := pathexpr.Parse(path)
	if err != nil {
		return "", "", err
	}
	res, err := pathexpr.Resolve(tree, parsed, includeExtra, provider.BlockToken())
	if err != nil {
		return "", "", err
	}
	return res.Content, hashutil.Fragment(res.Content), nil
}

// GetElementHash is GetTextByPath's hash-only shorthand (spec §6.1
// get_element_hash).
func GetElementHash(sourceBytes []byte, languageCode string, path string) (string, error) {
	_, hash, err := GetTextByPath(sourceBytes, languageCode, path, false)
	if err != nil {
		return "", err
	}
	return hash, nil
}

// ApplyPatch runs the full Manipulator protocol in-memory (spec §6.1
// apply_patch, §4.G): no file I/O, no workspace lock — callers needing
// atomic on-disk writes use OpenWorkspace instead.
func ApplyPatch(sourceBytes []byte, languageCode string, path string, newCode string, mode manipulator.Mode, originalHash string, dryRun bool) (*manipulator.Result, error) {
	provider, ok := DefaultRegistry.ByCode(languageCode)
	if !ok {
		err := errs.New(errs.KindUnsupportedLanguageError, "unknown language code: "+languageCode)
		return nil, err
	}
	tree, err := extractTree(context.Background(), provider, sourceBytes)
	if err != nil {
		return nil, err
	}
	fam := manipulator.Family{
		Formatter:       familyFormatter(provider.Family()),
		BlockToken:      provider.BlockToken(),
		OrganizeImports: provider.OrganizeImports,
	}
	return manipulator.Apply(sourceBytes, tree, path, newCode, mode, originalHash, dryRun, fam)
}

func familyFormatter(fam langs.Family) formatter.Family {
	if fam == langs.FamilyBrace {
		return formatter.Brace{}
	}
	return formatter.Indent{}
}

// OpenWorkspace indexes root and returns a cross-file Workspace (spec
// §6.1 open_workspace).
func OpenWorkspace(ctx context.Context, root string) (*workspace.Workspace, error) {
	return workspace.Open(ctx, root, DefaultRegistry)
}
