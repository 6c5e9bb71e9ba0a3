package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/paperstack-cli/internal/utils"
)

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"empty", "", 5, ""},
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdefgh", 3, "abc"},
		{"multibyte", "héllo wörld", 4, "héll"},
		{"zero", "abc", 0, ""},
	}
	for _, c := range cases {
		if got := utils.TruncateRunes(c.in, c.limit); got != c.want {
			t.Errorf("%s: got %q want %q", c.name, got, c.want)
		}
	}
}

func TestPreviewMarksTruncation(t *testing.T) {
	if got := utils.Preview("abc", 800); got != "abc" {
		t.Fatalf("unexpected preview: %q", got)
	}
	long := strings.Repeat("x", 1000)
	got := utils.Preview(long, 800)
	if utils.CountRunes(got) != 803 {
		t.Fatalf("preview length=%d", utils.CountRunes(got))
	}
}

func TestSafeWriteFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a", "b", "c.txt")
	if err := utils.SafeWriteFile(p, []byte("hi")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "hi" {
		t.Fatalf("read back: %q %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
	if !utils.FileExists(p) || utils.FileExists(dir) {
		t.Fatalf("FileExists mismatch")
	}
}

func TestHumanSize(t *testing.T) {
	if got := utils.HumanSize(512); got != "512 B" {
		t.Fatalf("got %q", got)
	}
	if got := utils.HumanSize(2048); got != "2.0 KiB" {
		t.Fatalf("got %q", got)
	}
}
