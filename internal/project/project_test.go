package project_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/paperstack-cli/internal/manifest"
	"github.com/KaramelBytes/paperstack-cli/internal/project"
)

func sampleFiles() []project.File {
	return []project.File{
		{Path: "backend/package.json", Manifest: manifest.New().Set("name", "demo").Set("version", "1.0.0")},
		{Path: "backend/server.js", Text: "console.log('hi');\n"},
		{Path: "README.md", Text: "# Demo\n"},
	}
}

func TestMaterializeWritesTree(t *testing.T) {
	p, err := project.New("demo", "MERN Stack", sampleFiles(), []project.File{{Path: "frontend/public/index.html", Text: "<html></html>"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	root := filepath.Join(t.TempDir(), "out")
	if err := p.Materialize(root); err != nil {
		t.Fatalf("materialize: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(root, "backend", "package.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(b), "\n  \"name\": \"demo\"") {
		t.Fatalf("manifest not indented: %s", b)
	}
	if _, err := os.Stat(filepath.Join(root, "frontend", "public", "index.html")); err != nil {
		t.Fatalf("supplement missing: %v", err)
	}
	// idempotent over an existing tree
	if err := p.Materialize(root); err != nil {
		t.Fatalf("second materialize: %v", err)
	}
}

func TestNewRejectsDuplicatePaths(t *testing.T) {
	_, err := project.New("demo", "x", sampleFiles(), []project.File{{Path: "README.md", Text: "again"}})
	if !errors.Is(err, project.ErrDuplicatePath) {
		t.Fatalf("expected ErrDuplicatePath, got %v", err)
	}
}

func TestNewRejectsInvalidPaths(t *testing.T) {
	for _, bad := range []string{"", "/etc/passwd", `a\b.txt`, "../up.txt", "a/../b", "./a", "C:/x"} {
		_, err := project.New("demo", "x", []project.File{{Path: bad}}, nil)
		if !errors.Is(err, project.ErrInvalidPath) {
			t.Errorf("%q: expected ErrInvalidPath, got %v", bad, err)
		}
	}
}

func TestFilesReturnsCopies(t *testing.T) {
	p, err := project.New("demo", "x", sampleFiles(), nil)
	if err != nil {
		t.Fatal(err)
	}
	fs := p.Files()
	fs[0].Path = "mutated"
	if p.Paths()[0] != "backend/package.json" {
		t.Fatalf("project mutated through Files()")
	}
	if got := strings.Join(p.AllPaths(), ","); got != "backend/package.json,backend/server.js,README.md" {
		t.Fatalf("paths=%s", got)
	}
	if f, ok := p.File("README.md"); !ok || f.Text != "# Demo\n" {
		t.Fatalf("lookup failed")
	}
}

func TestMaterializeReportsWriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "backend")
	if err := os.WriteFile(blocker, []byte("file, not dir"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := project.New("demo", "x", sampleFiles(), nil)
	if err != nil {
		t.Fatal(err)
	}
	err = p.Materialize(dir)
	var we *project.WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected WriteError, got %v", err)
	}
	if we.Path != "backend/package.json" {
		t.Fatalf("path=%s", we.Path)
	}
}

func TestValidName(t *testing.T) {
	for name, want := range map[string]bool{
		"research-app": true,
		"paper_lab.v2": true,
		"":             false,
		"../x":         false,
		".hidden":      false,
		"a/b":          false,
		`a\b`:          false,
	} {
		if got := project.ValidName(name); got != want {
			t.Errorf("ValidName(%q) = %v, want %v", name, got, want)
		}
	}
}
