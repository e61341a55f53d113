package builder

import (
	"testing"

	"github.com/codehem/codehem-go/element"
	"github.com/codehem/codehem-go/errs"
	"github.com/codehem/codehem-go/langs"
)

func TestNewFunctionIndentFamily(t *testing.T) {
	got, err := NewFunction(langs.FamilyIndent, FunctionSpec{
		Name:       "f",
		Parameters: []element.Parameter{{Name: "self", Index: 0}},
		Body:       []string{"return 1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "def f(self):\n    return 1\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNewFunctionIndentFamilyAsyncAndReturnType(t *testing.T) {
	got, err := NewFunction(langs.FamilyIndent, FunctionSpec{
		Name:       "f",
		Async:      true,
		ReturnType: "int",
		Body:       []string{"return 1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "async def f() -> int:\n    return 1\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNewFunctionIndentFamilyDefaultsToPassBody(t *testing.T) {
	got, err := NewFunction(langs.FamilyIndent, FunctionSpec{Name: "f"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "def f():\n    pass\n" {
		t.Fatalf("got %q", got)
	}
}

func TestNewFunctionBraceFamily(t *testing.T) {
	got, err := NewFunction(langs.FamilyBrace, FunctionSpec{
		Name:       "f",
		ReturnType: "number",
		Body:       []string{"return 1;"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "function f(): number {\n  return 1;\n}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNewFunctionBraceFamilyEmptyBodyOmitsPass(t *testing.T) {
	got, err := NewFunction(langs.FamilyBrace, FunctionSpec{Name: "f"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "function f() {\n}" {
		t.Fatalf("got %q", got)
	}
}

func TestNewFunctionWithDecorators(t *testing.T) {
	got, err := NewFunction(langs.FamilyIndent, FunctionSpec{
		Name:       "f",
		Decorators: []string{"@staticmethod"},
		Body:       []string{"return 1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "@staticmethod\ndef f():\n    return 1\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNewFunctionOrdersParametersByIndex(t *testing.T) {
	got, err := NewFunction(langs.FamilyIndent, FunctionSpec{
		Name: "f",
		Parameters: []element.Parameter{
			{Name: "b", Index: 1},
			{Name: "a", Index: 0, ValueType: "int", DefaultValue: "0"},
		},
		Body: []string{"pass"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "def f(a: int = 0, b):\n    pass\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNewFunctionRejectsEmptyName(t *testing.T) {
	_, err := NewFunction(langs.FamilyIndent, FunctionSpec{})
	if err == nil {
		t.Fatalf("expected a validation error for an empty function name")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.KindValidationError {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestNewClassIndentFamilyDefaultsToPassBody(t *testing.T) {
	got, err := NewClass(langs.FamilyIndent, ClassSpec{Name: "C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "class C:\n    pass\n" {
		t.Fatalf("got %q", got)
	}
}

func TestNewClassIndentFamilyWithBaseAndBody(t *testing.T) {
	got, err := NewClass(langs.FamilyIndent, ClassSpec{Name: "C", BaseClass: "Base", Body: []string{"x = 1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "class C(Base):\n    x = 1\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNewClassBraceFamilyWithBaseAndBody(t *testing.T) {
	got, err := NewClass(langs.FamilyBrace, ClassSpec{Name: "C", BaseClass: "Base", Body: []string{"x = 1;"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "class C extends Base {\n  x = 1;\n}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNewClassRejectsEmptyName(t *testing.T) {
	_, err := NewClass(langs.FamilyIndent, ClassSpec{})
	if err == nil {
		t.Fatalf("expected a validation error for an empty class name")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.KindValidationError {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
