package workspace

import (
	"sync"

	"github.com/codehem/codehem-go/element"
)

// Entry is one addressable element discovered while indexing a
// directory: its file, kind and name, used to serve Find (spec §4.H).
// Path holds the element's own name, the same value as Name; it is not a
// dotted path from the file root, so enclosing class names are absent.
type Entry struct {
	File string
	Path string
	Kind element.Kind
	Name string
}

// IndexStore is the pluggable backing store for the workspace index
// (spec §3.6: "Workspace index entries are keyed by (file_path,
// content_mtime); stale entries are refreshed lazily"). The default,
// dependency-free implementation is memoryIndex; SQLiteIndex is an
// injectable alternative for large workspaces that want the index to
// survive a process restart.
type IndexStore interface {
	// Put replaces all entries for file, recording mtime for staleness
	// checks.
	Put(file string, mtimeUnixNano int64, entries []Entry)
	// Mtime returns the last indexed mtime for file, or false if unindexed.
	Mtime(file string) (int64, bool)
	// All returns every indexed entry across every file.
	All() []Entry
	// Remove drops a file's entries (e.g. on delete).
	Remove(file string)
}

// memoryIndex is the default in-memory IndexStore: a flat map, rebuilt
// from scratch on process restart.
type memoryIndex struct {
	mu      sync.RWMutex
	mtimes  map[string]int64
	entries map[string][]Entry
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{
		mtimes:  make(map[string]int64),
		entries: make(map[string][]Entry),
	}
}

func (m *memoryIndex) Put(file string, mtime int64, entries []Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mtimes[file] = mtime
	m.entries[file] = entries
}

func (m *memoryIndex) Mtime(file string) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.mtimes[file]
	return t, ok
}

func (m *memoryIndex) All() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Entry
	for _, es := range m.entries {
		out = append(out, es...)
	}
	return out
}

func (m *memoryIndex) Remove(file string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mtimes, file)
	delete(m.entries, file)
}
