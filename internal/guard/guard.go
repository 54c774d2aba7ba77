// Package guard implements the file-access guard (C9): it blocks tool calls
// that would read privacyguard's own protected history/memory stores,
// blocks re-reads of files already supplied in desensitized form, and
// otherwise defers to the tier computed for the call.
package guard

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/OpenBMB/privacyguard/internal/model"
	"github.com/OpenBMB/privacyguard/internal/pathmatch"
	"github.com/OpenBMB/privacyguard/internal/session"
)

// preReadTools are the tool names whose target may be blocked as an
// already-desensitized re-read.
var preReadTools = map[string]bool{
	"read": true, "read_file": true, "cat": true,
}

// selfProtectPatterns are resource substrings that always identify
// privacyguard's own configuration or base directory. Matching here forces
// a block independent of session/tier — privacyguard never allows a tool
// call to read or alter its own control surface.
var selfProtectPatterns = []string{
	"privacyguard.yaml",
	".privacyguard/",
	"privacyguardd",
}

// Decision is the guard's verdict for a single tool call.
type Decision struct {
	Blocked bool
	Reason  string
}

func allow() Decision           { return Decision{} }
func block(reason string) Decision { return Decision{Blocked: true, Reason: reason} }

// Config carries the protected roots derived from base_dir (spec §4.9):
// the full-history directory and the full memory file/directory.
type Config struct {
	BaseDir         string
	FullHistoryDir  string // <base>/agents/<agent_id>/sessions/full
	FullMemoryFile  string
	FullMemoryDir   string
}

// protectedRoots returns the configured protected roots as a flat list,
// suitable for pathmatch.MatchesAny.
func (c Config) protectedRoots() []string {
	var roots []string
	for _, r := range []string{c.FullHistoryDir, c.FullMemoryFile, c.FullMemoryDir} {
		if r != "" {
			roots = append(roots, r)
		}
	}
	return roots
}

// Guard evaluates file-access tool calls against the protected roots and
// per-session pre-read set.
type Guard struct {
	mu       sync.RWMutex
	cfg      Config
	sessions *session.Registry
}

// New builds a Guard bound to a session registry and static config.
func New(cfg Config, sessions *session.Registry) *Guard {
	return &Guard{cfg: cfg, sessions: sessions}
}

// SetConfig swaps the guard's configuration (used on hot config reload).
func (g *Guard) SetConfig(cfg Config) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg = cfg
}

// GuardToolCall implements the three-rule decision procedure from spec §4.9.
// tier is the tier already computed for this call by the aggregator; the
// third rule defers to it.
func (g *Guard) GuardToolCall(checkpoint model.Checkpoint, toolName string, ctx model.DetectionContext, sessionKey string, tier model.Tier) Decision {
	g.mu.RLock()
	cfg := g.cfg
	g.mu.RUnlock()

	if isSelfTargeting(toolName, ctx) {
		return block("tool call targets privacyguard's own control surface")
	}

	if !session.IsGuardSession(sessionKey) {
		roots := cfg.protectedRoots()
		for _, p := range ctx.PathValues() {
			if pathmatch.MatchesAny(roots, p) {
				return block(fmt.Sprintf("path %q is under a protected history/memory root", p))
			}
		}
	}

	if preReadTools[toolName] {
		for _, p := range ctx.PathValues() {
			if g.sessions.IsFilePreRead(sessionKey, p) {
				return block(fmt.Sprintf("%q was already supplied to you in desensitized form earlier in this session; use that content instead of re-reading", p))
			}
		}
	}

	switch tier {
	case model.TierS3:
		return block("content classified S3 (private); this tool call cannot proceed")
	case model.TierS2:
		g.sessions.MarkPrivate(sessionKey, model.TierS2)
		return allow()
	default:
		return allow()
	}
}

// isSelfTargeting reports whether toolName/ctx targets privacyguard's own
// configuration, binary, or control directory. Fail-closed: broad
// substring matching is intentional — self-protection is structural, not
// a tunable policy.
func isSelfTargeting(toolName string, ctx model.DetectionContext) bool {
	if matchesSelfPattern(strings.ToLower(toolName)) {
		return true
	}
	for _, p := range ctx.PathValues() {
		if matchesSelfPattern(strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func matchesSelfPattern(lower string) bool {
	for _, p := range selfProtectPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// DeriveConfig builds the protected-root Config for an agent's base
// directory, matching the storage layout from spec §4.7/§4.8.
func DeriveConfig(baseDir, agentID string) Config {
	agentRoot := filepath.Join(baseDir, "agents", agentID)
	return Config{
		BaseDir:        baseDir,
		FullHistoryDir: filepath.Join(agentRoot, "sessions", "full"),
		FullMemoryFile: filepath.Join(agentRoot, "memory_full", "MEMORY_FULL.md"),
		FullMemoryDir:  filepath.Join(agentRoot, "memory_full"),
	}
}
