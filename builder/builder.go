// Package builder implements component K (spec.md §4.K): synthesizing
// new functions/classes/methods from structured input, producing a
// syntactically complete element fragment that manipulator.Apply can
// normalize and insert.
//
// Templating style grounded on other_examples/
// getlawrence-cli__modification.go's CodeTemplates map[string]string +
// LanguageConfig pairing idea (a template per synthesized shape, keyed
// by language family); see DESIGN.md.
package builder

import (
	"sort"
	"strings"
	"text/template"

	"github.com/codehem/codehem-go/element"
	"github.com/codehem/codehem-go/errs"
	"github.com/codehem/codehem-go/langs"
)

// FunctionSpec is the structured input for NewFunction/NewMethod.
type FunctionSpec struct {
	Name       string
	Parameters []element.Parameter
	ReturnType string
	Decorators []string // e.g. "@staticmethod", "@Input()"
	Body       []string // body lines, unindented
	Async      bool
}

// ClassSpec is the structured input for NewClass.
type ClassSpec struct {
	Name       string
	BaseClass  string
	Decorators []string
	Body       []string // member lines, unindented (empty for a bare class)
}

var pythonFuncTmpl = template.Must(template.New("pyfunc").Parse(
	`{{range .Decorators}}{{.}}
{{end}}{{if .Async}}async {{end}}def {{.Name}}({{.Params}}){{if .ReturnType}} -> {{.ReturnType}}{{end}}:
{{range .Body}}    {{.}}
{{end}}`))

var pythonClassTmpl = template.Must(template.New("pyclass").Parse(
	`{{range .Decorators}}{{.}}
{{end}}class {{.Name}}{{if .BaseClass}}({{.BaseClass}}){{end}}:
{{if .Body}}{{range .Body}}    {{.}}
{{end}}{{else}}    pass
{{end}}`))

var braceFuncTmpl = template.Must(template.New("bracefunc").Parse(
	`{{range .Decorators}}{{.}}
{{end}}{{if .Async}}async {{end}}function {{.Name}}({{.Params}}){{if .ReturnType}}: {{.ReturnType}}{{end}} {
{{range .Body}}  {{.}}
{{end}}}`))

var braceClassTmpl = template.Must(template.New("braceclass").Parse(
	`{{range .Decorators}}{{.}}
{{end}}class {{.Name}}{{if .BaseClass}} extends {{.BaseClass}}{{end}} {
{{range .Body}}  {{.}}
{{end}}}`))

type funcTmplData struct {
	Name       string
	Params     string
	ReturnType string
	Decorators []string
	Body       []string
	Async      bool
}

type classTmplData struct {
	Name       string
	BaseClass  string
	Decorators []string
	Body       []string
}

func joinParams(params []element.Parameter) string {
	sort.SliceStable(params, func(i, j int) bool { return params[i].Index < params[j].Index })
	parts := make([]string, 0, len(params))
	for _, p := range params {
		s := p.Name
		if p.ValueType != "" {
			s += ": " + p.ValueType
		}
		if p.DefaultValue != "" {
			s += " = " + p.DefaultValue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// NewFunction synthesizes a complete top-level function fragment for
// fam's formatter family.
func NewFunction(fam langs.Family, spec FunctionSpec) (string, error) {
	return renderFunc(fam, spec)
}

// NewMethod synthesizes a complete method fragment (same shape as
// NewFunction; the caller supplies the enclosing path when invoking
// manipulator.Apply in append/replace mode against a class).
func NewMethod(fam langs.Family, spec FunctionSpec) (string, error) {
	return renderFunc(fam, spec)
}

func renderFunc(fam langs.Family, spec FunctionSpec) (string, error) {
	if spec.Name == "" {
		return "", errs.New(errs.KindValidationError, "function name is required")
	}
	data := funcTmplData{
		Name:       spec.Name,
		Params:     joinParams(spec.Parameters),
		ReturnType: spec.ReturnType,
		Decorators: spec.Decorators,
		Body:       spec.Body,
		Async:      spec.Async,
	}
	if len(data.Body) == 0 {
		data.Body = []string{"pass"}
		if fam == langs.FamilyBrace {
			data.Body = nil
		}
	}

	tmpl := pythonFuncTmpl
	if fam == langs.FamilyBrace {
		tmpl = braceFuncTmpl
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", errs.Wrap(errs.KindValidationError, "rendering function template", err)
	}
	return sb.String(), nil
}

// NewClass synthesizes a complete class fragment for fam's formatter
// family.
func NewClass(fam langs.Family, spec ClassSpec) (string, error) {
	if spec.Name == "" {
		return "", errs.New(errs.KindValidationError, "class name is required")
	}
	data := classTmplData{
		Name:       spec.Name,
		BaseClass:  spec.BaseClass,
		Decorators: spec.Decorators,
		Body:       spec.Body,
	}

	tmpl := pythonClassTmpl
	if fam == langs.FamilyBrace {
		tmpl = braceClassTmpl
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", errs.Wrap(errs.KindValidationError, "rendering class template", err)
	}
	return sb.String(), nil
}
