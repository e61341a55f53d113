// Package manipulator implements component G (spec.md §4.G): the
// replace/append/prepend byte-splice engine with hash-based conflict
// detection and unified-diff generation.
//
// Diff generation grounded on providers/base/provider.go's generateDiff
// (difflib.UnifiedDiff) and the rewrite/splice pattern of
// internal/manipulator/manipulator.go from the teacher repository; see
// DESIGN.md.
package manipulator

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/codehem/codehem-go/element"
	"github.com/codehem/codehem-go/errs"
	"github.com/codehem/codehem-go/formatter"
	"github.com/codehem/codehem-go/hashutil"
	"github.com/codehem/codehem-go/pathexpr"
)

// Mode is one of the three manipulation operations (spec §4.G).
type Mode string

const (
	ModeReplace Mode = "replace"
	ModePrepend Mode = "prepend"
	ModeAppend  Mode = "append"
)

// ErrorInfo is the structured error payload of the Patch Result (spec
// §6.2: `"error": { "kind": string, "message": string }?`).
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result is the structured Patch Result of spec.md §6.2.
type Result struct {
	Status       string     `json:"status"` // "ok" | "error"
	LinesAdded   int        `json:"lines_added"`
	LinesRemoved int        `json:"lines_removed"`
	NewHash      string     `json:"new_hash"`
	ModifiedCode string     `json:"modified_code,omitempty"`
	Diff         string     `json:"diff,omitempty"`
	Error        *ErrorInfo `json:"error,omitempty"`

	// Ticket is a correlation ID for one write attempt, set by the
	// Workspace (not by in-memory Apply callers); useful for tying a
	// conflict-retry's log lines back to the write that triggered it.
	Ticket string `json:"ticket,omitempty"`

	// Buffer is the full post-patch buffer; always populated on success
	// for the Workspace to write back. It is distinct from ModifiedCode,
	// which per spec §6.2 is "omitted on dry-run for file writes".
	Buffer []byte `json:"-"`
}

// Family carries the language-specific pieces Apply needs without
// depending on the langs package.
type Family struct {
	Formatter  formatter.Family
	BlockToken string

	// OrganizeImports re-sorts/dedupes a file's synthetic imports block.
	// Apply runs it once, after splicing, whenever the patched path
	// targets "imports" under ModeAppend (the "imports append"
	// supplemented feature). Nil disables the pass.
	OrganizeImports func([]byte) ([]byte, error)
}

// Apply implements the single public operation of component G: resolve
// path in tree, optionally conflict-check against originalHash, splice
// newCode into buffer per mode, and (unless dryRun) return the modified
// buffer (spec §4.G protocol steps 1-5).
func Apply(buffer []byte, tree *element.Tree, path string, newCode string, mode Mode, originalHash string, dryRun bool, fam Family) (*Result, error) {
	parsed, err := pathexpr.Parse(path)
	if err != nil {
		return errorResult(err), err
	}

	res, err := pathexpr.Resolve(tree, parsed, false, fam.BlockToken)
	if err != nil {
		wrapped := errs.Wrap(errs.KindElementNotFoundError, "element not found at path: "+path, err).WithContext(path, tree.File, string(mode))
		return errorResult(wrapped), wrapped
	}

	if originalHash != "" {
		currentHash := hashutil.Fragment(res.Content)
		if currentHash != originalHash {
			conflictErr := errs.New(errs.KindWriteConflictError,
				"element content changed since original_hash was computed").WithContext(path, tree.File, string(mode))
			return errorResult(conflictErr), conflictErr
		}
	}

	if strings.TrimSpace(newCode) == "" && mode != ModeReplace {
		validationErr := errs.New(errs.KindValidationError, "new_code must not be empty")
		return errorResult(validationErr), validationErr
	}

	original := string(buffer)
	modified, linesAdded, linesRemoved := splice(original, res.EffectiveRange, newCode, mode, fam)

	if mode == ModeAppend && fam.OrganizeImports != nil && targetsImports(parsed) {
		if organized, organizeErr := fam.OrganizeImports([]byte(modified)); organizeErr == nil {
			modified = string(organized)
		}
	}

	newFragment, err := reExtractFragment(modified, res.EffectiveRange, mode, linesAdded, linesRemoved)
	newHash := hashutil.Fragment(newFragment)
	_ = err // best-effort; hash still computed over the spliced region

	result := &Result{
		Status:       "ok",
		LinesAdded:   linesAdded,
		LinesRemoved: linesRemoved,
		NewHash:      newHash,
		Buffer:       []byte(modified),
	}

	if dryRun {
		result.Diff = unifiedDiff(original, modified)
	} else {
		result.ModifiedCode = modified
	}
	// ModifiedCode is set only when dryRun is false, for in-memory and
	// Workspace callers alike (a dry run carries Diff instead); Buffer is
	// set in both cases, and the Workspace returns this Result unchanged.
	if !dryRun && result.ModifiedCode == "" {
		result.ModifiedCode = modified
	}

	return result, nil
}

func errorResult(err error) *Result {
	kind, ok := errs.KindOf(err)
	if !ok {
		kind = errs.KindValidationError
	}
	return &Result{
		Status: "error",
		Error:  &ErrorInfo{Kind: string(kind), Message: err.Error()},
	}
}

// splice performs the byte-range rewrite for the three modes, returning
// the new buffer plus lines_added/lines_removed statistics.
func splice(original string, rng element.Range, newCode string, mode Mode, fam Family) (string, int, int) {
	lines := strings.Split(original, "\n")
	startIdx := rng.StartLine - 1
	endIdx := rng.EndLine - 1
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx >= len(lines) {
		endIdx = len(lines) - 1
	}

	targetIndent := formatter.IndentPrefixAt(original, lineOffset(lines, startIdx)+len(lines[startIdx]))
	normalized := fam.Formatter.Normalize(newCode, targetIndent)
	newLines := strings.Split(normalized, "\n")

	var result []string
	var linesRemoved, linesAdded int

	switch mode {
	case ModeReplace:
		result = append(result, lines[:startIdx]...)
		result = append(result, newLines...)
		result = append(result, lines[endIdx+1:]...)
		linesRemoved = endIdx - startIdx + 1
		linesAdded = len(newLines)
	case ModePrepend:
		result = append(result, lines[:startIdx]...)
		result = append(result, newLines...)
		result = append(result, lines[startIdx:]...)
		linesAdded = len(newLines)
	case ModeAppend:
		result = append(result, lines[:endIdx+1]...)
		result = append(result, newLines...)
		result = append(result, lines[endIdx+1:]...)
		linesAdded = len(newLines)
	}

	return strings.Join(result, "\n"), linesAdded, linesRemoved
}

// targetsImports reports whether path resolves to the synthetic imports
// block, mirroring pathexpr.Resolve's own "imports" special-case check.
func targetsImports(path *pathexpr.Path) bool {
	if path.KindTag == "imports" {
		return true
	}
	return len(path.Segments) > 0 && path.Segments[len(path.Segments)-1] == "imports"
}

func lineOffset(lines []string, idx int) int {
	offset := 0
	for i := 0; i < idx && i < len(lines); i++ {
		offset += len(lines[i]) + 1
	}
	return offset
}

// reExtractFragment returns the bytes now occupying the region the patch
// touched, used to compute the post-patch fragment hash without a full
// re-parse (the caller, typically Workspace, still triggers a real
// re-extraction for subsequent queries via parser.Facade.Invalidate).
func reExtractFragment(modified string, rng element.Range, mode Mode, linesAdded, linesRemoved int) (string, error) {
	lines := strings.Split(modified, "\n")
	var start, end int
	switch mode {
	case ModeReplace:
		start = rng.StartLine - 1
		end = start + linesAdded - 1
	case ModePrepend:
		start = rng.StartLine - 1
		end = start + linesAdded - 1
	case ModeAppend:
		start = rng.EndLine
		end = start + linesAdded - 1
	}
	if start < 0 {
		start = 0
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}
	if start > end || start >= len(lines) {
		return "", fmt.Errorf("manipulator: fragment range out of bounds")
	}
	return strings.Join(lines[start:end+1], "\n"), nil
}

// unifiedDiff generates a unified diff over the original/modified
// buffers for dry-run responses (spec §4.G step 5).
func unifiedDiff(original, modified string) string {
	if original == modified {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        strings.Split(original, "\n"),
		B:        strings.Split(modified, "\n"),
		FromFile: "original",
		ToFile:   "modified",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("--- original\n+++ modified\n@@ changes @@\n%d bytes -> %d bytes",
			len(original), len(modified))
	}
	return text
}
