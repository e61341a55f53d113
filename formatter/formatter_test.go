package formatter

import "testing"

func TestIndentNormalizeFreshSingleLineFragment(t *testing.T) {
	got := Indent{}.Normalize("return 2", "        ")
	if got != "        return 2" {
		t.Fatalf("got %q", got)
	}
}

func TestIndentNormalizeRoundTripIdentity(t *testing.T) {
	// The fetched fragment never carries leading indentation on its first
	// line (an Element's Content starts at its first token); re-inserting
	// it unchanged at the same indent must reproduce the original source
	// lines exactly, with the indent restored on the first line (spec §8
	// round-trip identity).
	got := Indent{}.Normalize("return 1", "        ")
	if got != "        return 1" {
		t.Fatalf("got %q", got)
	}

	multiline := "def f(self):\n        return 1"
	got2 := Indent{}.Normalize(multiline, "    ")
	if got2 != "    "+multiline {
		t.Fatalf("expected the original source lines back at the original indent, got %q", got2)
	}
}

func TestBraceNormalizePreservesEmptyLines(t *testing.T) {
	// "b();" already sits at the fragment's own target-relative depth (no
	// extra nesting beyond the header), matching the common-fragment
	// authoring convention Normalize assumes.
	fragment := "a();\n\n  b();"
	got := Brace{}.Normalize(fragment, "  ")
	want := "  a();\n\n  b();"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIndentPrefixAt(t *testing.T) {
	content := "class C:\n    def f(self):\n        return 1\n"
	pos := len("class C:\n    def f(self):\n        ")
	got := IndentPrefixAt(content, pos)
	if got != "        " {
		t.Fatalf("expected 8-space indent prefix, got %q", got)
	}
}

func TestDominantLineEnding(t *testing.T) {
	if DominantLineEnding("a\r\nb\r\n") != "\r\n" {
		t.Fatalf("expected CRLF detection")
	}
	if DominantLineEnding("a\nb\n") != "\n" {
		t.Fatalf("expected LF default")
	}
}
