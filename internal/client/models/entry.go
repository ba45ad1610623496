// Package models defines client-side data models used by the gophjournal CLI.
package models

import (
	"slices"
	"strings"
)

// Insight is the AI-generated annotation attached to an entry.
type Insight struct {
	Summary string `json:"summary"`
	Mood    string `json:"mood"`
	Advice  string `json:"advice"`
}

// JournalEntry is the in-application shape of a journal entry.
// Timestamps are milliseconds since the Unix epoch.
type JournalEntry struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt int64
	UpdatedAt int64
	Tags      []string

	// AIInsight is nil until an annotation has been requested.
	AIInsight *Insight
}

// Clone returns a deep copy, so drafts never alias the listed entries.
func (e JournalEntry) Clone() JournalEntry {
	c := e
	c.Tags = slices.Clone(e.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if e.AIInsight != nil {
		ins := *e.AIInsight
		c.AIInsight = &ins
	}
	return c
}

// NormalizeTags trims, drops empties and de-duplicates tags keeping the
// first occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = trimTag(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func trimTag(t string) string {
	return strings.TrimPrefix(strings.TrimSpace(t), "#")
}
