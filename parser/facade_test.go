package parser

import (
	"context"
	"fmt"
	"sync"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

type pythonLang struct{}

func (pythonLang) Code() string                      { return "python" }
func (pythonLang) SitterLanguage() *sitter.Language { return python.GetLanguage() }

func TestParseIsCachedByContent(t *testing.T) {
	f := New(128)
	src := []byte("def f():\n    return 1\n")

	tree1, err := f.Parse(context.Background(), pythonLang{}, "a.py", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tree1.Close()

	stats := f.Stats()
	if stats.Misses != 1 {
		t.Fatalf("expected 1 miss on first parse, got %d", stats.Misses)
	}

	tree2, err := f.Parse(context.Background(), pythonLang{}, "a.py", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tree2.Close()

	stats = f.Stats()
	if stats.Hits != 1 {
		t.Fatalf("expected 1 hit on second identical parse, got %d", stats.Hits)
	}
}

func TestInvalidateForcesReparse(t *testing.T) {
	f := New(128)
	src := []byte("def f():\n    return 1\n")

	tree, err := f.Parse(context.Background(), pythonLang{}, "a.py", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tree.Close()

	f.Invalidate("a.py")

	if _, ok := f.byPath["a.py"]; ok {
		t.Fatalf("expected path association to be cleared")
	}
}

func TestParseConcurrentDistinctPathsDoesNotRaceOnByPath(t *testing.T) {
	// Mirrors workspace.reindex's errgroup fan-out (SetLimit(8)), where
	// each worker calls Parse with a distinct logical path: byPath must
	// tolerate concurrent writes without a "concurrent map writes" fault.
	f := New(128)
	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("f%d.py", i)
			src := []byte(fmt.Sprintf("def f%d():\n    return %d\n", i, i))
			tree, err := f.Parse(context.Background(), pythonLang{}, path, src)
			if err != nil {
				t.Errorf("parse %s: %v", path, err)
				return
			}
			tree.Close()
		}(i)
	}
	wg.Wait()
}

func TestLRUEvictsAtCapacity(t *testing.T) {
	c := newLRU(2)
	c.Put("a", nil)
	c.Put("b", nil)
	c.Put("c", nil)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
	stats := c.Stats()
	if stats.Evictions != 1 {
		t.Fatalf("expected 1 eviction, got %d", stats.Evictions)
	}
}
