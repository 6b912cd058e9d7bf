// Package filter derives the visible subset of tasks from a search term and
// marks where the term occurs in task text.
package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// MinTermLength is the shortest term that narrows the list.
const MinTermLength = 2

// MarkOpen and MarkClose wrap matches in Highlight output.
const (
	MarkOpen  = "<mark>"
	MarkClose = "</mark>"
)

// Segment is a run of text that either matches the term or not.
type Segment struct {
	Text  string
	Match bool
}

// normalize trims term and reports whether it is long enough to filter on.
// Length is counted after lowercasing, which can add code points.
func normalize(term string) (string, bool) {
	term = strings.TrimSpace(term)
	return term, utf8.RuneCountInString(strings.ToLower(term)) >= MinTermLength
}

// Active reports whether term narrows the list.
func Active(term string) bool {
	_, ok := normalize(term)
	return ok
}

// Visible returns the tasks whose text contains term, case-insensitively,
// in their original order. Terms shorter than MinTermLength return all tasks.
func Visible(tasks []todo.Task, term string) []todo.Task {
	term, ok := normalize(term)
	if !ok {
		return tasks
	}
	needle := strings.ToLower(term)
	out := make([]todo.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Text), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Segments splits text around every case-insensitive occurrence of term.
// The term is matched literally. A short term yields a single non-matching
// segment (or none for empty text).
func Segments(text, term string) []Segment {
	if text == "" {
		return nil
	}
	term, ok := normalize(term)
	if !ok {
		return []Segment{{Text: text}}
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []Segment{{Text: text}}
	}

	segs := make([]Segment, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			segs = append(segs, Segment{Text: text[prev:loc[0]]})
		}
		segs = append(segs, Segment{Text: text[loc[0]:loc[1]], Match: true})
		prev = loc[1]
	}
	if prev < len(text) {
		segs = append(segs, Segment{Text: text[prev:]})
	}
	return segs
}

// HighlightFunc rebuilds text passing every match through mark.
func HighlightFunc(text, term string, mark func(string) string) string {
	var b strings.Builder
	for _, seg := range Segments(text, term) {
		if seg.Match {
			b.WriteString(mark(seg.Text))
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Highlight wraps every match of term in MarkOpen/MarkClose.
// Non-matching text is returned untouched.
func Highlight(text, term string) string {
	return HighlightFunc(text, term, func(s string) string {
		return MarkOpen + s + MarkClose
	})
}
