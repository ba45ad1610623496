package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

const displayLayout = "2006-01-02 15:04"

// previewLen caps the content preview shown in the list.
const previewLen = 40

func renderList(w io.Writer, entries []models.JournalEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries yet. Type \"new\" to write one.")
		return
	}
	renderNumbered(w, entries, func(i int) int { return i + 1 })
}

// renderNumbered prints entries in the given order; number maps a row to
// the position "open" accepts.
func renderNumbered(w io.Writer, entries []models.JournalEntry, number func(i int) int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tUPDATED\tTITLE\tTAGS\tPREVIEW")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			number(i),
			timex.FromUnixMilli(e.UpdatedAt).Local().Format(displayLayout),
			e.Title,
			formatTags(e.Tags),
			preview(e.Content),
		)
	}
	_ = tw.Flush()
}

func renderEntry(w io.Writer, e models.JournalEntry, isNew bool) {
	fmt.Fprintf(w, "== %s ==\n", e.Title)
	if isNew {
		fmt.Fprintln(w, "(not saved yet)")
	} else {
		fmt.Fprintf(w, "Created %s, updated %s\n",
			timex.FromUnixMilli(e.CreatedAt).Local().Format(displayLayout),
			timex.FromUnixMilli(e.UpdatedAt).Local().Format(displayLayout))
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", formatTags(e.Tags))
	}
	fmt.Fprintln(w)
	if e.Content == "" {
		fmt.Fprintln(w, "(empty, type \"write\" to add text)")
	} else {
		fmt.Fprintln(w, e.Content)
	}

	if e.AIInsight != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "-- AI insight --")
		fmt.Fprintf(w, "Mood:    %s\n", e.AIInsight.Mood)
		fmt.Fprintf(w, "Summary: %s\n", e.AIInsight.Summary)
		fmt.Fprintf(w, "Advice:  %s\n", e.AIInsight.Advice)
	}
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "#" + t
	}
	return strings.Join(out, " ")
}

func preview(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen-3]) + "..."
}
