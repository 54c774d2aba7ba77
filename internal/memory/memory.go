// Package memory implements the Memory Manager (C8): an agent's durable
// notes-to-self, kept on two tracks exactly like session history — a full
// surface the local model reads and writes freely, and a clean surface
// synced from it with guard-marker blocks stripped and the remainder
// redacted.
package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OpenBMB/privacyguard/internal/model"
	"github.com/OpenBMB/privacyguard/internal/redact"
)

const dirPerm = 0o750
const filePerm = 0o600

// guardMarkers identify a block of full-memory text that must never sync
// to the clean surface, independent of redaction — it marks content
// written for the guard agent's own private reasoning.
var guardMarkers = []string{"[guard agent]", "guard:", "private context:"}

// Manager implements write_memory/read_memory/sync_full_to_clean/
// initialize_directories (spec §4.8) for one agent workspace.
type Manager struct {
	fullDir  string
	cleanDir string
	fullFile string
	cleanFile string
	extractor *redact.Extractor
	extra     []redact.CompiledPattern
}

// New builds a Manager rooted at the given agent workspace directory.
// extractor may be nil — sync falls back to rule-based redaction.
func New(agentWorkspace string, extractor *redact.Extractor, extra []redact.CompiledPattern) *Manager {
	return &Manager{
		fullDir:   filepath.Join(agentWorkspace, "memory_full"),
		cleanDir:  filepath.Join(agentWorkspace, "memory_clean"),
		fullFile:  filepath.Join(agentWorkspace, "memory_full", "MEMORY_FULL.md"),
		cleanFile: filepath.Join(agentWorkspace, "memory_clean", "MEMORY_CLEAN.md"),
		extractor: extractor,
		extra:     extra,
	}
}

// FullDir exposes the full memory directory — the File-Access Guard's
// other protected root.
func (m *Manager) FullDir() string { return m.fullDir }

// FullFile exposes the full memory file path.
func (m *Manager) FullFile() string { return m.fullFile }

// InitializeDirectories creates the full/clean memory directories and
// their top-level index files if absent. Idempotent.
func (m *Manager) InitializeDirectories() error {
	for _, dir := range []string{m.fullDir, m.cleanDir} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("memory: create directory %s: %w", dir, err)
		}
	}
	for _, f := range []string{m.fullFile, m.cleanFile} {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			if err := os.WriteFile(f, nil, filePerm); err != nil {
				return fmt.Errorf("memory: create file %s: %w", f, err)
			}
		}
	}
	return nil
}

// dailyPath returns the YYYY-MM-DD.md entry path under dir for the given
// time (UTC).
func dailyPath(dir string, at time.Time) string {
	return filepath.Join(dir, at.UTC().Format("2006-01-02")+".md")
}

// WriteMemory appends content to the full or clean daily entry and to
// the corresponding index file. is_cloud selects the surface: true
// writes to the clean surface directly (used when the host itself
// already has desensitized content — the normal path is write-full then
// sync), false writes to the full surface.
func (m *Manager) WriteMemory(content string, isCloud bool, at time.Time) error {
	dir, indexFile := m.fullDir, m.fullFile
	if isCloud {
		dir, indexFile = m.cleanDir, m.cleanFile
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("memory: create directory: %w", err)
	}
	entry := "\n## " + at.UTC().Format(time.RFC3339) + "\n" + content + "\n"
	if err := appendFile(dailyPath(dir, at), entry); err != nil {
		return err
	}
	return appendFile(indexFile, entry)
}

// ReadMemory returns the full content of the selected surface's index
// file (the running summary an agent re-reads at session start).
func (m *Manager) ReadMemory(isCloud bool) (string, error) {
	path := m.fullFile
	if isCloud {
		path = m.cleanFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("memory: read %s: %w", path, err)
	}
	return string(data), nil
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("memory: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("memory: write %s: %w", path, err)
	}
	return nil
}

// SyncFullToClean implements spec §4.8's sync algorithm: read the full
// memory index, drop any guard-marker block (the marker line and any
// marker lines directly after it; the first line without a marker ends the
// block and is kept), redact what remains, and overwrite the clean memory
// index with the result.
func (m *Manager) SyncFullToClean(ctx context.Context) error {
	full, err := m.ReadMemory(false)
	if err != nil {
		return err
	}

	stripped := stripGuardBlocks(full)

	var redacted string
	var entities []model.PrivacyEntity
	if m.extractor.Enabled() {
		entities = m.extractor.Extract(ctx, stripped)
	}
	if len(entities) > 0 {
		redacted = redact.Redact(stripped, entities).Text
	} else {
		redacted = redact.FallbackRedact(stripped, m.extra).Text
	}

	if err := os.MkdirAll(m.cleanDir, dirPerm); err != nil {
		return fmt.Errorf("memory: create clean directory: %w", err)
	}
	return os.WriteFile(m.cleanFile, []byte(redacted), filePerm)
}

// stripGuardBlocks removes any line containing a guard marker
// (case-insensitive), together with the rest of its block. A block ends —
// and the line ending it is kept — at the next blank line, markdown
// header, or any other line that is not itself a guard-marker line.
func stripGuardBlocks(full string) string {
	lines := strings.Split(full, "\n")
	var out []string
	skipping := false
	for _, line := range lines {
		if skipping {
			if containsGuardMarker(line) {
				continue
			}
			skipping = false
			out = append(out, line)
			continue
		}
		if containsGuardMarker(line) {
			skipping = true
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func containsGuardMarker(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range guardMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
