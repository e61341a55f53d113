package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteIndexPutAndMtime(t *testing.T) {
	idx, err := OpenSQLiteIndex(":memory:")
	require.NoError(t, err)

	idx.Put("a.py", 42, []Entry{{File: "a.py", Path: "f", Kind: "method", Name: "f"}})

	mtime, ok := idx.Mtime("a.py")
	require.True(t, ok)
	assert.Equal(t, int64(42), mtime)

	if _, ok := idx.Mtime("missing.py"); ok {
		t.Fatalf("expected unindexed file to report false")
	}
}

func TestSQLiteIndexAllReturnsEveryFilesEntries(t *testing.T) {
	idx, err := OpenSQLiteIndex(":memory:")
	require.NoError(t, err)

	idx.Put("a.py", 1, []Entry{{File: "a.py", Path: "f", Kind: "method", Name: "f"}})
	idx.Put("b.py", 2, []Entry{{File: "b.py", Path: "g", Kind: "function", Name: "g"}})

	all := idx.All()
	assert.Len(t, all, 2)
}

func TestSQLiteIndexPutOverwritesPriorEntries(t *testing.T) {
	idx, err := OpenSQLiteIndex(":memory:")
	require.NoError(t, err)

	idx.Put("a.py", 1, []Entry{{File: "a.py", Path: "f", Kind: "method", Name: "f"}})
	idx.Put("a.py", 2, []Entry{{File: "a.py", Path: "g", Kind: "function", Name: "g"}})

	mtime, ok := idx.Mtime("a.py")
	require.True(t, ok)
	assert.Equal(t, int64(2), mtime)

	all := idx.All()
	require.Len(t, all, 1)
	assert.Equal(t, "g", all[0].Name)
}

func TestSQLiteIndexRemove(t *testing.T) {
	idx, err := OpenSQLiteIndex(":memory:")
	require.NoError(t, err)

	idx.Put("a.py", 1, []Entry{{File: "a.py", Path: "f", Kind: "method", Name: "f"}})
	idx.Remove("a.py")

	if _, ok := idx.Mtime("a.py"); ok {
		t.Fatalf("expected removed file to report unindexed")
	}
	assert.Empty(t, idx.All())
}
