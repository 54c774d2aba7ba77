// Package pathmatch implements the path-matching semantics shared by the
// rule detector (C1) and the file-access guard (C9): tilde expansion, prefix
// matching on configured roots, and leading-"*" suffix matching, plus the
// forced-S3 extension/substring override for key-material files.
package pathmatch

import (
	"os"
	"strings"
)

// forcedExtensions are file extensions that always force tier S3,
// regardless of configuration.
var forcedExtensions = []string{".pem", ".key", ".p12", ".pfx"}

// forcedSubstrings are path substrings (SSH private key basenames) that
// always force tier S3.
var forcedSubstrings = []string{"id_rsa", "id_dsa", "id_ecdsa", "id_ed25519"}

// IsForcedSecret reports whether path names a file that is always S3,
// independent of any configured path list.
func IsForcedSecret(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range forcedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, sub := range forcedSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// Expand expands a leading "~" to the current user's home directory.
// If the home directory cannot be resolved, the path is returned unchanged.
func Expand(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return home + path[1:]
	}
	return path
}

// Matches reports whether candidate matches configured, under the three
// rules from spec §4.1:
//
//  1. equal after "~" expansion
//  2. candidate begins with configured followed by a path separator
//  3. configured begins with "*" and candidate ends with the suffix
func Matches(configured, candidate string) bool {
	cfg := Expand(configured)
	cand := Expand(candidate)

	if strings.HasPrefix(cfg, "*") {
		suffix := cfg[1:]
		return strings.HasSuffix(cand, suffix)
	}

	if cand == cfg {
		return true
	}
	if strings.HasPrefix(cand, cfg+"/") || strings.HasPrefix(cand, cfg+string(os.PathSeparator)) {
		return true
	}
	return false
}

// MatchesAny reports whether candidate matches any of the configured paths.
func MatchesAny(configured []string, candidate string) bool {
	for _, cfg := range configured {
		if Matches(cfg, candidate) {
			return true
		}
	}
	return false
}
