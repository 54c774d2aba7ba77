// Package session holds the process-local, in-memory session state
// registry (C6): privacy escalation flags, detection history, and the
// per-session pre-read file set.
package session

import (
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/OpenBMB/privacyguard/internal/model"
)

// historyRingSize bounds the per-session detection history.
const historyRingSize = 50

// guardSuffix derives a session's paired guard-session key.
const guardSuffix = ":guard"

// Detection is one entry in a session's bounded detection history.
type Detection struct {
	Tier       model.Tier
	Checkpoint model.Checkpoint
	Reason     string
}

// state is the per-session record. Access is serialized by Registry's mutex;
// state itself carries no lock.
type state struct {
	isPrivate   bool
	highestTier model.Tier
	history     []Detection // ring buffer, oldest overwritten first
	preRead     map[string]bool
}

func newState() *state {
	return &state{
		highestTier: model.TierS1,
		preRead:     make(map[string]bool),
	}
}

// Registry is the process-local session state store. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*state
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*state)}
}

func (r *Registry) get(key string) *state {
	if s, ok := r.sessions[key]; ok {
		return s
	}
	s := newState()
	r.sessions[key] = s
	return s
}

// MarkPrivate sets is_private := is_private ∨ (tier is private) and raises
// highest_tier to the supremum of its current value and tier.
func (r *Registry) MarkPrivate(key string, tier model.Tier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(key)
	if tier.IsPrivate() {
		s.isPrivate = true
	}
	s.highestTier = model.SupTier(s.highestTier, tier)
}

// IsPrivate reports whether the session has ever been marked private.
func (r *Registry) IsPrivate(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[key]; ok {
		return s.isPrivate
	}
	return false
}

// HighestTier returns the highest tier ever recorded for the session.
// Defaults to TierS1 for an unknown session.
func (r *Registry) HighestTier(key string) model.Tier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[key]; ok {
		return s.highestTier
	}
	return model.TierS1
}

// RecordDetection appends to the session's ring of the last 50 detections.
func (r *Registry) RecordDetection(key string, tier model.Tier, checkpoint model.Checkpoint, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(key)
	s.history = append(s.history, Detection{Tier: tier, Checkpoint: checkpoint, Reason: reason})
	if len(s.history) > historyRingSize {
		s.history = s.history[len(s.history)-historyRingSize:]
	}
}

// History returns a copy of the session's detection history, oldest first.
func (r *Registry) History(key string) []Detection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[key]
	if !ok {
		return nil
	}
	out := make([]Detection, len(s.history))
	copy(out, s.history)
	return out
}

// preReadExtensions are the file extensions eligible for pre-read tracking.
var preReadExtensions = map[string]bool{
	".xlsx": true, ".xls": true, ".csv": true, ".txt": true,
	".docx": true, ".json": true, ".md": true,
}

// pathToken matches filesystem-path-like substrings: an optional directory
// part, a file name and a trailing extension (ExtractPreReadPaths keeps only
// extensions from preReadExtensions).
var pathToken = regexp.MustCompile(`(?:[^\s"'` + "`" + `]+/)?[^\s"'` + "`" + `]+\.[A-Za-z0-9]+`)

// ExtractPreReadPaths scans message for path-like tokens carrying a
// pre-readable extension.
func ExtractPreReadPaths(message string) []string {
	var out []string
	for _, tok := range pathToken.FindAllString(message, -1) {
		ext := strings.ToLower(filepath.Ext(tok))
		if preReadExtensions[ext] {
			out = append(out, tok)
		}
	}
	return out
}

// MarkPreReadFiles extracts path-like tokens from message and adds them to
// the session's pre-read set.
func (r *Registry) MarkPreReadFiles(key, message string) {
	paths := ExtractPreReadPaths(message)
	if len(paths) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(key)
	for _, p := range paths {
		s.preRead[normalizePath(p)] = true
	}
}

// MarkPreRead records a single path (already known, not extracted from
// free text) as pre-read for the session — used by the orchestrator after
// it pre-reads a referenced file directly.
func (r *Registry) MarkPreRead(key, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(key)
	s.preRead[normalizePath(path)] = true
}

// IsFilePreRead reports whether path is in the session's pre-read set.
func (r *Registry) IsFilePreRead(key, path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[key]
	if !ok {
		return false
	}
	return s.preRead[normalizePath(path)]
}

func normalizePath(p string) string {
	return filepath.Clean(strings.TrimSpace(p))
}

// GuardKey derives the paired guard-session key for a session key.
func GuardKey(key string) string { return key + guardSuffix }

// IsGuardSession reports whether key names a guard session (per spec
// the marker is a ":guard:" substring so derived sub-keys still match).
func IsGuardSession(key string) bool { return strings.Contains(key, guardSuffix+":") || strings.HasSuffix(key, guardSuffix) }

// Reset removes a session and its paired guard-session entry. Explicit
// de-escalation only — never invoked automatically by the orchestrator.
func (r *Registry) Reset(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
	delete(r.sessions, GuardKey(key))
}
