// Package convert implements the referenced-file pre-read step the
// orchestrator uses for S2/S3 ResolveModel outcomes (spec §4.10, §6):
// locate a file path mentioned in a message and materialize its content
// as plain text.
package convert

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenBMB/privacyguard/internal/session"
)

// Converter turns a file's raw bytes into a plain-text representation
// suitable for handing to a model prompt.
type Converter interface {
	Convert(path string) (string, error)
}

// textConverter reads a file verbatim — used for .txt/.md/.json content,
// which is already human-readable text.
type textConverter struct{}

func (textConverter) Convert(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("convert: read %s: %w", path, err)
	}
	return string(data), nil
}

// csvConverter renders a CSV file back out as pipe-delimited rows, one
// per line, which reads cleanly in a model prompt without special CSV
// escaping rules leaking through.
type csvConverter struct{}

func (csvConverter) Convert(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("convert: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("convert: parse csv %s: %w", path, err)
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, " | "))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// unsupportedConverter reports formats no library in this build can
// parse (spreadsheets and rich documents). Wiring an xlsx/docx parser
// requires a dependency this build does not carry (see DESIGN.md).
type unsupportedConverter struct{ format string }

func (u unsupportedConverter) Convert(path string) (string, error) {
	return "", fmt.Errorf("convert: %s files are not supported in this build (%s)", u.format, path)
}

// ForExtension picks the Converter for a file's extension.
func ForExtension(ext string) Converter {
	switch strings.ToLower(ext) {
	case ".txt", ".md", ".json":
		return textConverter{}
	case ".csv":
		return csvConverter{}
	case ".xlsx", ".xls":
		return unsupportedConverter{format: "spreadsheet"}
	case ".docx":
		return unsupportedConverter{format: "document"}
	default:
		return unsupportedConverter{format: ext}
	}
}

// TryReadReferencedFile scans message for a pre-readable path token
// (spec §4.6's extraction rule, reused here so the orchestrator and the
// session registry agree on what counts as "referenced"), resolves it
// against workspace if relative, and converts its content to text.
// Returns ok=false if no eligible path is found or conversion fails.
func TryReadReferencedFile(message, workspace string) (text string, path string, ok bool) {
	candidates := session.ExtractPreReadPaths(message)
	if len(candidates) == 0 {
		return "", "", false
	}

	raw := candidates[0]
	resolved := raw
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(workspace, resolved)
	}

	converter := ForExtension(filepath.Ext(resolved))
	content, err := converter.Convert(resolved)
	if err != nil {
		return "", "", false
	}
	return content, raw, true
}
