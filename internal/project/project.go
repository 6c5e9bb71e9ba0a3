package project

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/KaramelBytes/paperstack-cli/internal/utils"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidName reports whether name is usable as a project directory and
// archive name: letters, digits, '.', '_' and '-', not starting with a
// separator character.
func ValidName(name string) bool { return nameRe.MatchString(name) }

// Project is a generated scaffold: an immutable set of files keyed by
// relative forward-slash path. Supplements are fixed support files a stack
// always adds next to its primary templates.
type Project struct {
	name        string
	technology  string
	files       []File
	supplements []File
}

// New validates and assembles a project. Paths must be unique across files
// and supplements.
func New(name, technology string, files, supplements []File) (*Project, error) {
	seen := make(map[string]struct{}, len(files)+len(supplements))
	for _, group := range [][]File{files, supplements} {
		for _, f := range group {
			if err := validatePath(f.Path); err != nil {
				return nil, err
			}
			if _, dup := seen[f.Path]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, f.Path)
			}
			seen[f.Path] = struct{}{}
		}
	}
	p := &Project{
		name:        name,
		technology:  technology,
		files:       append([]File(nil), files...),
		supplements: append([]File(nil), supplements...),
	}
	return p, nil
}

func (p *Project) Name() string       { return p.name }
func (p *Project) Technology() string { return p.technology }

// Files returns the primary template files in generation order.
func (p *Project) Files() []File { return append([]File(nil), p.files...) }

// Supplements returns the fixed support files.
func (p *Project) Supplements() []File { return append([]File(nil), p.supplements...) }

// Paths lists primary file paths in generation order.
func (p *Project) Paths() []string {
	out := make([]string, 0, len(p.files))
	for _, f := range p.files {
		out = append(out, f.Path)
	}
	return out
}

// AllPaths lists primary then supplementary paths.
func (p *Project) AllPaths() []string {
	out := p.Paths()
	for _, f := range p.supplements {
		out = append(out, f.Path)
	}
	return out
}

// File looks up a file (primary or supplementary) by path.
func (p *Project) File(path string) (File, bool) {
	for _, group := range [][]File{p.files, p.supplements} {
		for _, f := range group {
			if f.Path == path {
				return f, true
			}
		}
	}
	return File{}, false
}

// WriteError reports the file that could not be materialized.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("materialize %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Materialize writes every file under rootDir, creating parent directories as
// needed. On failure rootDir should be treated as unusable; nothing is cleaned up.
func (p *Project) Materialize(rootDir string) error {
	if err := utils.EnsureDir(rootDir); err != nil {
		return &WriteError{Path: rootDir, Err: err}
	}
	for _, group := range [][]File{p.files, p.supplements} {
		for _, f := range group {
			data, err := f.Bytes()
			if err != nil {
				return &WriteError{Path: f.Path, Err: err}
			}
			dst := filepath.Join(rootDir, filepath.FromSlash(f.Path))
			if err := utils.SafeWriteFile(dst, data); err != nil {
				return &WriteError{Path: f.Path, Err: err}
			}
		}
	}
	return nil
}
