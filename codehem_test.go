package codehem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/codehem/codehem-go/element"
	"github.com/codehem/codehem-go/errs"
	"github.com/codehem/codehem-go/manipulator"
)

const pySource = "class C:\n    def f(self):\n        return 1\n"

func TestDetectPython(t *testing.T) {
	code, err := Detect("a.py", []byte(pySource))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if code != "python" {
		t.Fatalf("got %q, want python", code)
	}
}

func TestDetectUnknownExtension(t *testing.T) {
	if _, err := Detect("a.xyz", []byte("whatever")); err == nil {
		t.Fatalf("expected unsupported-language error")
	} else if kind, ok := errs.KindOf(err); !ok || kind != errs.KindUnsupportedLanguageError {
		t.Fatalf("expected KindUnsupportedLanguageError, got %v", err)
	}
}

func TestExtractFindsClassAndMethod(t *testing.T) {
	tree, err := Extract([]byte(pySource), "python")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var names []string
	for _, e := range tree.All() {
		names = append(names, e.Name)
	}
	if !contains(names, "C") || !contains(names, "f") {
		t.Fatalf("expected class C and method f in %v", names)
	}
}

func TestExtractUnknownLanguageCode(t *testing.T) {
	if _, err := Extract([]byte(pySource), "cobol"); err == nil {
		t.Fatalf("expected unsupported-language error")
	}
}

func TestGetTextByPathReturnsContentAndHash(t *testing.T) {
	content, hash, err := GetTextByPath([]byte(pySource), "python", "C.f[body]", false)
	if err != nil {
		t.Fatalf("get_text_by_path: %v", err)
	}
	if content != "        return 1" {
		t.Fatalf("got content %q", content)
	}
	if hash == "" {
		t.Fatalf("expected a non-empty fragment hash")
	}
}

func TestGetElementHashMatchesGetTextByPath(t *testing.T) {
	_, wantHash, err := GetTextByPath([]byte(pySource), "python", "C.f", false)
	if err != nil {
		t.Fatalf("get_text_by_path: %v", err)
	}
	gotHash, err := GetElementHash([]byte(pySource), "python", "C.f")
	if err != nil {
		t.Fatalf("get_element_hash: %v", err)
	}
	if gotHash != wantHash {
		t.Fatalf("got %q, want %q", gotHash, wantHash)
	}
}

func TestApplyPatchInMemoryReplaceBody(t *testing.T) {
	res, err := ApplyPatch([]byte(pySource), "python", "C.f[body]", "return 2", manipulator.ModeReplace, "", false)
	if err != nil {
		t.Fatalf("apply_patch: %v", err)
	}
	if res.Status != "ok" {
		t.Fatalf("expected ok, got %q", res.Status)
	}
	want := "class C:\n    def f(self):\n        return 2\n"
	if res.ModifiedCode != want {
		t.Fatalf("got %q, want %q", res.ModifiedCode, want)
	}
}

func TestApplyPatchInMemoryDoesNotTouchDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	if err := os.WriteFile(path, []byte(pySource), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := ApplyPatch([]byte(pySource), "python", "C.f[body]", "return 2", manipulator.ModeReplace, "", false); err != nil {
		t.Fatalf("apply_patch: %v", err)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if string(onDisk) != pySource {
		t.Fatalf("in-memory ApplyPatch must not write to disk; got %q", onDisk)
	}
}

func TestOpenWorkspaceIndexesAndPatchesOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	if err := os.WriteFile(path, []byte(pySource), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	ws, err := OpenWorkspace(context.Background(), dir)
	if err != nil {
		t.Fatalf("open_workspace: %v", err)
	}

	found, err := ws.Find("f", element.KindMethod, "")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected one indexed method f, got %+v", found)
	}

	res, err := ws.ApplyPatch(context.Background(), path, "C.f[body]", "return 2", manipulator.ModeReplace, "", false)
	if err != nil {
		t.Fatalf("apply_patch: %v", err)
	}
	if res.Status != "ok" {
		t.Fatalf("expected ok, got %q", res.Status)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	want := "class C:\n    def f(self):\n        return 2\n"
	if string(onDisk) != want {
		t.Fatalf("got %q, want %q", onDisk, want)
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
