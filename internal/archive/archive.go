// Package archive packs a materialized project directory into a deflate zip.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrRootMissing is returned when the directory to archive does not exist.
var ErrRootMissing = errors.New("archive root does not exist")

// Result describes a written archive.
type Result struct {
	Path    string   `json:"path"`
	Name    string   `json:"name"`
	Size    int64    `json:"size"`
	Entries []string `json:"entries"`
}

// Create zips every regular file under rootDir into outputDir/name.zip.
// Entry names are slash-separated paths relative to rootDir, in walk order.
func Create(rootDir, outputDir, name string) (*Result, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootMissing, rootDir)
		}
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootMissing, rootDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	fileName := name + ".zip"
	dst := filepath.Join(outputDir, fileName)
	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	entries, werr := write(f, rootDir)
	cerr := f.Close()
	if werr != nil {
		_ = os.Remove(dst)
		return nil, werr
	}
	if cerr != nil {
		return nil, fmt.Errorf("close archive: %w", cerr)
	}

	st, err := os.Stat(dst)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	return &Result{Path: dst, Name: fileName, Size: st.Size(), Entries: entries}, nil
}

func write(w io.Writer, rootDir string) ([]string, error) {
	zw := zip.NewWriter(w)
	var entries []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if err := addFile(zw, path, name); err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
		entries = append(entries, name)
		return nil
	})
	if err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("walk %s: %w", rootDir, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return entries, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}

// List returns the entry names of an existing archive.
func List(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()
	out := make([]string, 0, len(r.File))
	for _, f := range r.File {
		out = append(out, f.Name)
	}
	return out, nil
}

// Extract unpacks an archive into destDir, rejecting entries that would
// escape it.
func Extract(path, destDir string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()
	root, err := filepath.Abs(destDir)
	if err != nil {
		return err
	}
	for _, f := range r.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		rel, err := filepath.Rel(root, target)
		if err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("extract %s: entry escapes destination", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
