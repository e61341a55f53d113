// Package parser implements the Parser Facade (spec.md §4.A): it drives
// the tree-sitter grammar parser and caches trees keyed by content hash.
//
// Grounded on providers/base/cache.go's ASTCache from the teacher
// repository (sync.Map, hit/miss/eviction counters, background cleanup);
// see DESIGN.md.
package parser

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/singleflight"
)

// ParseError is returned only when the grammar cannot initialize (spec
// §4.A): "partial source is parsed best-effort" otherwise.
type ParseError struct {
	Lang string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parser: failed to initialize grammar %q: %v", e.Lang, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Facade parses source buffers with a tree-sitter grammar and caches the
// resulting trees by (lang, content-hash). It is safe for concurrent use;
// per spec §5, cache lookups never block across goroutines — a
// singleflight group collapses duplicate concurrent parses of identical
// content instead of holding a lock across the parse call.
type Facade struct {
	cache *lru
	group singleflight.Group

	pathMu sync.Mutex
	byPath map[string]string // logical path -> last cache key, for Invalidate
}

// New creates a Facade with the given minimum LRU capacity (spec §3.6
// mandates a floor of 128 entries).
func New(capacity int) *Facade {
	if capacity < 128 {
		capacity = 128
	}
	return &Facade{
		cache:  newLRU(capacity),
		byPath: make(map[string]string),
	}
}

// Language exposes the subset of a language plug-in the facade needs,
// avoiding a dependency on the langs package.
type Language interface {
	Code() string
	SitterLanguage() *sitter.Language
}

// Parse is idempotent: result cached by (lang, hash(bytes)). path is the
// logical source identity used by Invalidate; it may be empty for pure
// in-memory callers that never invalidate.
func (f *Facade) Parse(ctx context.Context, lang Language, path string, source []byte) (*sitter.Tree, error) {
	key := cacheKey(lang.Code(), source)

	if tree, ok := f.cache.Get(key); ok {
		return tree.Copy(), nil
	}

	v, err, _ := f.group.Do(key, func() (any, error) {
		if tree, ok := f.cache.peek(key); ok {
			return tree, nil
		}
		p := sitter.NewParser()
		sl := lang.SitterLanguage()
		if sl == nil {
			return nil, &ParseError{Lang: lang.Code(), Err: fmt.Errorf("no grammar registered")}
		}
		p.SetLanguage(sl)
		tree, err := p.ParseCtx(ctx, nil, source)
		if err != nil || tree == nil {
			return nil, &ParseError{Lang: lang.Code(), Err: err}
		}
		f.cache.Put(key, tree)
		return tree, nil
	})
	if err != nil {
		return nil, err
	}

	tree := v.(*sitter.Tree)
	if path != "" {
		f.pathMu.Lock()
		f.byPath[path] = key
		f.pathMu.Unlock()
	}
	return tree.Copy(), nil
}

// Invalidate drops the cached tree last associated with path. Spec §3.6:
// "A patch produces a new source buffer and invalidates all previously
// derived Elements for that file" — the facade's half of that contract is
// forgetting the stale parse so the next Parse call re-parses from bytes.
func (f *Facade) Invalidate(path string) {
	f.pathMu.Lock()
	key, ok := f.byPath[path]
	if ok {
		delete(f.byPath, path)
	}
	f.pathMu.Unlock()

	if ok {
		f.cache.Remove(key)
	}
}

// Stats reports cache hit/miss/eviction counters for observability.
func (f *Facade) Stats() Stats { return f.cache.Stats() }
