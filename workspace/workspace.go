// Package workspace implements component H (spec.md §4.H): it indexes a
// directory tree, serves cross-file Find queries, and performs
// end-to-end atomic ApplyPatch calls (read, patch, write-back) under
// per-file FIFO-fair locks.
//
// Grounded on core/atomicwriter.go (temp-sibling write + rename) and
// core/filewalker.go (doublestar glob matching, parallel directory
// traversal) from the teacher repository; see DESIGN.md.
package workspace

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codehem/codehem-go/element"
	"github.com/codehem/codehem-go/errs"
	"github.com/codehem/codehem-go/extract"
	"github.com/codehem/codehem-go/formatter"
	"github.com/codehem/codehem-go/hashutil"
	"github.com/codehem/codehem-go/internal/config"
	"github.com/codehem/codehem-go/langs"
	"github.com/codehem/codehem-go/manipulator"
	"github.com/codehem/codehem-go/parser"
	"github.com/codehem/codehem-go/pathexpr"
)

// ConflictCallback is invoked when a WriteConflictError would be raised
// and a callback is registered (spec §4.H): it receives the file's
// current bytes, current fragment hash, and the new_code that was about
// to be applied, and may return a revised new_code/original_hash pair to
// retry once.
type ConflictCallback func(currentBytes []byte, currentHash string, attemptedNewCode string) (revisedNewCode string, revisedHash string, retry bool)

// Workspace is an indexed view of a directory tree (spec §4.H).
type Workspace struct {
	Root     string
	Registry *langs.Registry
	Facade   *parser.Facade

	index   IndexStore
	locks   *lockTable
	project config.Project

	mu         sync.RWMutex
	onConflict ConflictCallback
}

// Open indexes root and returns a ready Workspace, using the
// dependency-free in-memory index. Use OpenWithIndex for a persistent
// backing store (spec §6.1 open_workspace).
func Open(ctx context.Context, root string, registry *langs.Registry) (*Workspace, error) {
	return OpenWithIndex(ctx, root, registry, newMemoryIndex())
}

// OpenWithIndex is Open with an injectable IndexStore (e.g. SQLiteIndex
// for a workspace index that survives process restart).
func OpenWithIndex(ctx context.Context, root string, registry *langs.Registry, store IndexStore) (*Workspace, error) {
	project, err := config.LoadProject(root)
	if err != nil {
		return nil, errs.Wrap(errs.KindIOError, "loading .codehem.toml", err)
	}

	ws := &Workspace{
		Root:     root,
		Registry: registry,
		Facade:   parser.New(128),
		index:    store,
		locks:    newLockTable(),
		project:  project,
	}
	if err := ws.reindex(ctx); err != nil {
		return nil, err
	}
	return ws, nil
}

// OnConflict registers the workspace-level conflict callback (spec §4.H).
func (w *Workspace) OnConflict(cb ConflictCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onConflict = cb
}

// Close releases workspace resources. The core owns no file descriptors
// beyond what ApplyPatch opens per-call, so Close is presently a no-op
// placeholder for the §6.1 library surface's Workspace.Close contract
// (e.g. a future SQLiteIndex connection would be closed here).
func (w *Workspace) Close() error { return nil }

// reindex walks Root, parsing and extracting every file whose extension
// maps to a registered language, fanning the work out across a bounded
// worker pool (spec §5: "the host chooses the parallelism"; grounded on
// golang.org/x/sync/errgroup's use for indexing fan-out in
// standardbeagle-lci / SimplyLiz-CodeMCP).
func (w *Workspace) reindex(ctx context.Context) error {
	var paths []string
	err := filepath.WalkDir(w.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(w.Root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if rel != "." && w.ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.ignored(rel) {
			return nil
		}
		if w.isIndexable(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return errs.Wrap(errs.KindIOError, "walking workspace root", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			return w.indexFile(gctx, p)
		})
	}
	return g.Wait()
}

// isIndexable reports whether path's extension maps to a registered
// language, honoring a .codehem.toml per-extension override (SPEC_FULL.md
// §6.3) ahead of the registry's own extension table.
func (w *Workspace) isIndexable(path string) bool {
	ext := filepath.Ext(path)
	if code, ok := w.project.Extensions[ext]; ok {
		_, ok := w.Registry.ByCode(code)
		return ok
	}
	_, ok := w.Registry.ByExtension(ext)
	return ok
}

// ignored reports whether rel (workspace-root-relative) matches one of the
// .codehem.toml ignore-pattern globs (SPEC_FULL.md §6.3).
func (w *Workspace) ignored(rel string) bool {
	for _, pattern := range w.project.Ignore {
		if matched, err := doublestar.PathMatch(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// detectFile is Registry.Detect with the same .codehem.toml extension
// override isIndexable applies, so an indexed file and the provider that
// parses it agree on which language owns it.
func (w *Workspace) detectFile(path string, source []byte) (langs.Provider, bool) {
	if code, ok := w.project.Extensions[filepath.Ext(path)]; ok {
		if p, ok := w.Registry.ByCode(code); ok {
			return p, true
		}
	}
	return w.Registry.Detect(path, source)
}

func (w *Workspace) indexFile(ctx context.Context, path string) error {
	var info os.FileInfo
	statErr := errs.DefaultRetryPolicy().Do(ctx, func() error {
		i, err := os.Stat(path)
		if err != nil {
			return errs.Wrap(errs.KindIOError, "stat", err)
		}
		info = i
		return nil
	})
	if statErr != nil {
		return nil // file removed between walk and stat, or still unreadable after retries; skip
	}
	if mtime, ok := w.index.Mtime(path); ok && mtime == info.ModTime().UnixNano() {
		return nil // unchanged; spec §3.6 "refreshed lazily"
	}

	var source []byte
	readErr := errs.DefaultRetryPolicy().Do(ctx, func() error {
		b, err := os.ReadFile(path)
		if err != nil {
			return errs.Wrap(errs.KindIOError, "reading file", err)
		}
		source = b
		return nil
	})
	if readErr != nil {
		return nil
	}
	provider, ok := w.detectFile(path, source)
	if !ok {
		return nil
	}

	tree, err := w.extractTree(ctx, provider, path, source)
	if err != nil {
		return nil
	}

	var entries []Entry
	for _, e := range tree.All() {
		if e.Name == "" {
			continue
		}
		entries = append(entries, Entry{File: path, Path: e.Name, Kind: e.Kind, Name: e.Name})
	}
	w.index.Put(path, info.ModTime().UnixNano(), entries)
	return nil
}

func (w *Workspace) extractTree(ctx context.Context, provider langs.Provider, path string, source []byte) (*element.Tree, error) {
	sourceLF := bytes.ReplaceAll(source, []byte("\r\n"), []byte("\n"))
	tree, err := w.Facade.Parse(ctx, provider, path, sourceLF)
	if err != nil {
		return nil, err
	}
	raw := provider.Extract(tree, sourceLF)
	return extract.Fold(path, sourceLF, raw), nil
}

// Find serves cross-file queries by name and/or kind and/or a
// doublestar file glob (spec §4.H: find(name?, kind?, file_glob?)).
func (w *Workspace) Find(name string, kind element.Kind, fileGlob string) ([]Entry, error) {
	var out []Entry
	for _, e := range w.index.All() {
		if name != "" && e.Name != name {
			continue
		}
		if kind != "" && e.Kind != kind {
			continue
		}
		if fileGlob != "" {
			rel, err := filepath.Rel(w.Root, e.File)
			if err != nil {
				rel = e.File
			}
			matched, err := doublestar.PathMatch(fileGlob, rel)
			if err != nil || !matched {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// ApplyPatch performs the full read-patch-write cycle for one file under
// an exclusive, FIFO-fair per-file lock (spec §4.H/§5: "N concurrent
// workers may read, but a file under write is blocked for both reads and
// writes until the write completes" — this implementation's lock is
// held for the whole operation, the simplest contract that satisfies
// that guarantee).
func (w *Workspace) ApplyPatch(ctx context.Context, file string, path string, newCode string, mode manipulator.Mode, originalHash string, dryRun bool) (*manipulator.Result, error) {
	lockTicket := w.locks.get(file)
	turn := lockTicket.Lock()
	defer lockTicket.Unlock(turn)

	writeTicket := uuid.NewString()
	result, err := w.applyLocked(ctx, file, path, newCode, mode, originalHash, dryRun)
	if result != nil {
		result.Ticket = writeTicket
	}
	return result, err
}

func (w *Workspace) applyLocked(ctx context.Context, file, path, newCode string, mode manipulator.Mode, originalHash string, dryRun bool) (*manipulator.Result, error) {
	var source []byte
	readErr := errs.DefaultRetryPolicy().Do(ctx, func() error {
		b, err := os.ReadFile(file)
		if err != nil {
			return errs.Wrap(errs.KindIOError, "reading file", err)
		}
		source = b
		return nil
	})
	if readErr != nil {
		return nil, retryContext(readErr, path, file, string(mode))
	}
	provider, ok := w.detectFile(file, source)
	if !ok {
		return nil, errs.New(errs.KindUnsupportedLanguageError, "no plug-in for file: "+file).WithContext(path, file, string(mode))
	}

	tree, err := w.extractTree(ctx, provider, file, source)
	if err != nil {
		return nil, errs.Wrap(errs.KindParseError, "extracting element tree", err).WithContext(path, file, string(mode))
	}

	fam := manipulator.Family{Formatter: familyFormatter(provider.Family()), BlockToken: provider.BlockToken(), OrganizeImports: provider.OrganizeImports}
	result, applyErr := manipulator.Apply(source, tree, path, newCode, mode, originalHash, dryRun, fam)

	if applyErr != nil {
		if kind, ok := errs.KindOf(applyErr); ok && kind == errs.KindWriteConflictError {
			if revised, retried := w.tryConflictCallback(ctx, file, path, newCode, mode, source, dryRun, fam); retried {
				if revised.err != nil {
					return revised.result, revised.err
				}
				result, applyErr = revised.result, nil
			}
		}
		if applyErr != nil {
			return result, applyErr
		}
	}

	if dryRun {
		return result, nil
	}

	writeErr := errs.DefaultRetryPolicy().Do(ctx, func() error {
		if err := atomicWrite(file, result.Buffer); err != nil {
			return errs.Wrap(errs.KindIOError, "writing file", err)
		}
		return nil
	})
	if writeErr != nil {
		return nil, retryContext(writeErr, path, file, string(mode))
	}
	w.Facade.Invalidate(file)
	go w.indexFile(ctx, file) //nolint:errcheck // best-effort reindex; Find is eventually consistent

	return result, nil
}

type conflictRetryOutcome struct {
	result *manipulator.Result
	err    error
}

func (w *Workspace) tryConflictCallback(ctx context.Context, file, path, newCode string, mode manipulator.Mode, currentSource []byte, dryRun bool, fam manipulator.Family) (conflictRetryOutcome, bool) {
	w.mu.RLock()
	cb := w.onConflict
	w.mu.RUnlock()
	if cb == nil {
		return conflictRetryOutcome{}, false
	}

	provider, ok := w.detectFile(file, currentSource)
	if !ok {
		return conflictRetryOutcome{}, false
	}
	tree, err := w.extractTree(ctx, provider, file, currentSource)
	if err != nil {
		return conflictRetryOutcome{}, false
	}

	parsedPath, err := pathexpr.Parse(path)
	if err != nil {
		return conflictRetryOutcome{}, false
	}
	current, err := pathexpr.Resolve(tree, parsedPath, false, fam.BlockToken)
	if err != nil {
		return conflictRetryOutcome{}, false
	}
	currentHash := hashutil.Fragment(current.Content)

	revisedCode, revisedHash, retry := cb(currentSource, currentHash, newCode)
	if !retry {
		return conflictRetryOutcome{}, false
	}

	res, err := manipulator.Apply(currentSource, tree, path, revisedCode, mode, revisedHash, dryRun, fam)
	return conflictRetryOutcome{result: res, err: err}, true
}

// retryContext attaches path/file/mode context to the error a
// RetryPolicy.Do call returned. Do always hands back exactly what fn
// returned (an *errs.Error) or its own TimeoutError, both already typed;
// the fallback only guards against a future fn that forgets to wrap.
func retryContext(err error, path, file, mode string) error {
	if ce, ok := err.(*errs.Error); ok {
		return ce.WithContext(path, file, mode)
	}
	return errs.Wrap(errs.KindIOError, err.Error(), err).WithContext(path, file, mode)
}

func familyFormatter(fam langs.Family) formatter.Family {
	if fam == langs.FamilyBrace {
		return formatter.Brace{}
	}
	return formatter.Indent{}
}
