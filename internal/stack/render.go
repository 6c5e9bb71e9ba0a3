package stack

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"text/template"
	"unicode"

	"github.com/KaramelBytes/paperstack-cli/internal/analysis"
	"github.com/KaramelBytes/paperstack-cli/internal/project"
)

//go:embed templates
var templateFS embed.FS

// Data is the value templates and manifest builders render against.
type Data struct {
	ProjectName    string
	Title          string
	Technology     ID
	Keywords       []string
	TechnicalTerms []string
	Features       []string
}

// NewData prepares render data for one generation.
func NewData(c analysis.Concepts, projectName string, id ID) Data {
	return Data{
		ProjectName:    projectName,
		Title:          titleCase(projectName),
		Technology:     id,
		Keywords:       c.Keywords,
		TechnicalTerms: c.TechnicalTerms,
		Features:       c.Features,
	}
}

var (
	loadOnce  sync.Once
	templates map[string]*template.Template
	loadErr   error
)

var funcs = template.FuncMap{
	"join":  strings.Join,
	"first": first,
}

func first(n int, in []string) []string {
	if n < len(in) {
		return in[:n]
	}
	return in
}

// Catalog templates use [[ ]] so the {{ }} of Angular and Vue pass through.
func loadTemplates() {
	templates = make(map[string]*template.Template)
	loadErr = fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		raw, err := templateFS.ReadFile(path)
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(path, "templates/")
		t, err := template.New(name).Delims("[[", "]]").Funcs(funcs).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = t
		return nil
	})
}

func render(source string, data Data) (string, error) {
	loadOnce.Do(loadTemplates)
	if loadErr != nil {
		return "", loadErr
	}
	t, ok := templates[source]
	if !ok {
		return "", fmt.Errorf("template %s not found", source)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", source, err)
	}
	return buf.String(), nil
}

func build(tpls []FileTemplate, data Data) ([]project.File, error) {
	out := make([]project.File, 0, len(tpls))
	for _, ft := range tpls {
		if ft.Manifest != nil {
			out = append(out, project.File{Path: ft.Path, Manifest: ft.Manifest(data)})
			continue
		}
		text, err := render(ft.Source, data)
		if err != nil {
			return nil, err
		}
		out = append(out, project.File{Path: ft.Path, Text: text})
	}
	return out, nil
}

// Generate renders the scaffold for technology. Unrecognized labels fall
// back to Default; use Resolve to detect that case.
func Generate(c analysis.Concepts, projectName, technology string) (*project.Project, error) {
	s, _ := Resolve(technology)
	return s.Generate(c, projectName)
}

// Generate renders this stack's files and supplements.
func (s Stack) Generate(c analysis.Concepts, projectName string) (*project.Project, error) {
	data := NewData(c, projectName, s.ID)
	files, err := build(s.Files, data)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", s.ID, err)
	}
	supp, err := build(s.Supplements, data)
	if err != nil {
		return nil, fmt.Errorf("generate %s supplements: %w", s.ID, err)
	}
	return project.New(projectName, string(s.ID), files, supp)
}

// titleCase upper-cases the first letter of each alphabetic run and
// lower-cases the rest, so "research-app" becomes "Research-App".
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
