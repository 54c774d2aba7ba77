package track

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const separator = "──────────────────────────────────────────────────────────────────"

// TimelineEntry pairs a full-track record with its clean-track counterpart
// for rendering — the two tracks share record IDs in write order.
type TimelineEntry struct {
	Full  Record `json:"full"`
	Clean Record `json:"clean,omitempty"`
}

// Timeline is a session's dual-track history prepared for display.
type Timeline struct {
	Session string          `json:"session"`
	Entries []TimelineEntry `json:"entries"`
}

// BuildTimeline pairs full and clean records by position — Persist always
// writes both tracks in the same order, one clean record per full record.
func BuildTimeline(session string, full, clean []Record) Timeline {
	t := Timeline{Session: session}
	for i, f := range full {
		e := TimelineEntry{Full: f}
		if i < len(clean) {
			e.Clean = clean[i]
		}
		t.Entries = append(t.Entries, e)
	}
	return t
}

// FormatTimeline renders a Timeline as human-readable text.
func FormatTimeline(t Timeline) string {
	if len(t.Entries) == 0 {
		return fmt.Sprintf("Session: %s | No entries found.\n", t.Session)
	}

	var b strings.Builder
	first := t.Entries[0].Full.Timestamp
	last := t.Entries[len(t.Entries)-1].Full.Timestamp
	fmt.Fprintf(&b, "Session: %s | %s–%s\n", t.Session, formatTimeOnly(first), formatTimeOnly(last))
	b.WriteString(separator + "\n")

	for _, e := range t.Entries {
		ts := formatTimeOnly(e.Full.Timestamp)
		content := truncate(e.Clean.Content, 60)
		fmt.Fprintf(&b, "%-10s %-3s %s\n", ts, e.Full.Tier.String(), content)
	}

	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Summary: %d entries\n", len(t.Entries))
	return b.String()
}

// FormatJSON renders a Timeline as indented JSON.
func FormatJSON(t Timeline) (string, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal timeline: %w", err)
	}
	return string(data), nil
}

func formatTimeOnly(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
