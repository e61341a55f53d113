package parser

import (
	"container/list"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	sitter "github.com/smacker/go-tree-sitter"
)

// cacheKey derives the facade's internal cache key. This is a fast,
// non-cryptographic hash purely for in-process cache addressing; it is
// never surfaced to callers as a fragment hash (that is hashutil.Fragment,
// SHA-256, per spec §3.5). Grounded on cespare/xxhash/v2 usage in
// standardbeagle-lci and SimplyLiz-CodeMCP; see DESIGN.md.
func cacheKey(lang string, source []byte) string {
	h := xxhash.Sum64(source)
	return fmt.Sprintf("%s:%x", lang, h)
}

// Stats mirrors the ASTCache hit/miss/eviction counters grounded on
// providers/base/cache.go from the teacher repository.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

type lruEntry struct {
	key  string
	tree *sitter.Tree
}

// lru is a minimal thread-safe LRU cache of parsed trees, keyed by
// cacheKey. The 128-entry capacity floor of spec §3.6 is applied by New,
// not here.
type lru struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

func newLRU(capacity int) *lru {
	return &lru{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *lru) Get(key string) (*sitter.Tree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.order.MoveToFront(el)
	c.hits.Add(1)
	return el.Value.(*lruEntry).tree, true
}

// peek is Get without touching the hit/miss counters or the LRU order.
func (c *lru) peek(key string) (*sitter.Tree, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		return el.Value.(*lruEntry).tree, true
	}
	return nil, false
}

func (c *lru) Put(key string, tree *sitter.Tree) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*lruEntry).tree = tree
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&lruEntry{key: key, tree: tree})
	c.items[key] = el

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		entry := oldest.Value.(*lruEntry)
		c.order.Remove(oldest)
		delete(c.items, entry.key)
		c.evictions.Add(1)
	}
}

func (c *lru) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

func (c *lru) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
