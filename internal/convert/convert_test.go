package convert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTextConverter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := ForExtension(".txt").Convert(path)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out != "hello world" {
		t.Errorf("unexpected content: %q", out)
	}
}

func TestCSVConverter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte("name,age\nLi Wei,30\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := ForExtension(".csv").Convert(path)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(out, "Li Wei | 30") {
		t.Errorf("unexpected csv rendering: %q", out)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := ForExtension(".xlsx").Convert("whatever.xlsx"); err == nil {
		t.Fatal("expected error for unsupported spreadsheet format")
	}
}

func TestTryReadReferencedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "report.txt"), []byte("q1 numbers"), 0o600); err != nil {
		t.Fatal(err)
	}
	text, path, ok := TryReadReferencedFile("please summarize report.txt for me", dir)
	if !ok {
		t.Fatal("expected a referenced file to be found")
	}
	if path != "report.txt" || text != "q1 numbers" {
		t.Errorf("unexpected result: path=%q text=%q", path, text)
	}
}

func TestTryReadReferencedFileNoMatch(t *testing.T) {
	_, _, ok := TryReadReferencedFile("just a plain message", t.TempDir())
	if ok {
		t.Fatal("expected no match for a message without a path")
	}
}
