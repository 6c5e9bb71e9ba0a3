package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/paperstack-cli/internal/parser"
	"github.com/KaramelBytes/paperstack-cli/internal/testutil"
)

func TestParseFileTXT(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	content := "hello world\nthis is txt"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := parser.ParseFile(p)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out != content {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestParseFileMD(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.md")
	content := "# Title\r\n\r\n\r\n\r\nBody here\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := parser.ParseFile(p)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out != "# Title\n\nBody here\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestParseBytesUnsupported(t *testing.T) {
	_, err := parser.ParseBytes("paper.docx", []byte("x"))
	if !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestParseBytesInvalidPDF(t *testing.T) {
	if _, err := parser.ParseBytes("paper.pdf", []byte("not a pdf file")); err == nil {
		t.Fatal("expected error for invalid PDF content")
	}
}

func TestParseBytesPDFPages(t *testing.T) {
	doc := testutil.PDF("This system has user login", "and an admin dashboard.")
	out, err := parser.ParseBytes("paper.pdf", doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := "This system has user login\nand an admin dashboard.\n"; out != want {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestParseFilePDFSkipsPagesWithoutText(t *testing.T) {
	p := filepath.Join(t.TempDir(), "scan.PDF")
	if err := os.WriteFile(p, testutil.PDF("Results (Table 2)", "", "Appendix"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := parser.ParseFile(p)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out != "Results (Table 2)\nAppendix\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestParseBytesPDFWithoutTextIsEmpty(t *testing.T) {
	out, err := parser.ParseBytes("figures.pdf", testutil.PDF(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty text, got %q", out)
	}
}

func TestSupported(t *testing.T) {
	cases := map[string]bool{
		"paper.pdf":  true,
		"PAPER.PDF":  true,
		"notes.md":   true,
		"notes.txt":  true,
		"sheet.xlsx": false,
		"noext":      false,
	}
	for name, want := range cases {
		if got := parser.Supported(name); got != want {
			t.Errorf("Supported(%q) = %v, want %v", name, got, want)
		}
	}
}
