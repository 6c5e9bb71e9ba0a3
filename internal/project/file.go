package project

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/KaramelBytes/paperstack-cli/internal/manifest"
)

// File is one generated file. Exactly one of Text or Manifest carries content.
type File struct {
	Path     string
	Text     string
	Manifest *manifest.Document
}

// IsManifest reports whether the file is a structured manifest.
func (f File) IsManifest() bool { return f.Manifest != nil }

// Bytes renders the file content as written to disk.
func (f File) Bytes() ([]byte, error) {
	if f.Manifest != nil {
		return f.Manifest.Indent()
	}
	return []byte(f.Text), nil
}

var (
	ErrInvalidPath   = errors.New("invalid project path")
	ErrDuplicatePath = errors.New("duplicate project path")
)

func validatePath(p string) error {
	switch {
	case p == "":
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	case strings.HasPrefix(p, "/"), strings.Contains(p, `\`), strings.Contains(p, ":"):
		return fmt.Errorf("%w: %q must be relative with forward slashes", ErrInvalidPath, p)
	case path.Clean(p) != p:
		return fmt.Errorf("%w: %q is not clean", ErrInvalidPath, p)
	case p == ".." || strings.HasPrefix(p, "../"):
		return fmt.Errorf("%w: %q escapes the project root", ErrInvalidPath, p)
	}
	return nil
}
