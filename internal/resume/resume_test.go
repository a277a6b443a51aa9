package resume

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractText(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"resume.txt", "resume.MD"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("Jane Doe\n\n  Python,   SQL\n"), 0o600); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}

		text, err := Extract(path)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", name, err)
		}
		if text != "Jane Doe Python, SQL" {
			t.Fatalf("unexpected text for %s: %q", name, text)
		}
	}
}

func TestExtractUnsupported(t *testing.T) {
	if _, err := Extract(filepath.Join(t.TempDir(), "resume.docx")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	if _, err := Extract(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestExtractBrokenPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o600); err != nil {
		t.Fatalf("writing pdf: %v", err)
	}

	if _, err := Extract(path); err == nil {
		t.Fatalf("expected error for broken pdf")
	}
}
