// Package search filters the lines of an in-memory document by substring
// containment. Matching is either exact or case-insensitive; in the latter
// mode both the line and the query are lower-cased before comparison, while
// the line handed back to the caller is always the original one.
package search

import (
	"iter"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Lines yields every line of contents together with its 1-based number.
// Lines end at "\n"; a "\r" directly before the "\n" is dropped as well.
// A trailing terminator does not produce an empty final line.
func Lines(contents string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		n := 0
		for line := range strings.Lines(contents) {
			n++
			if !yield(n, trimTerminator(line)) {
				return
			}
		}
	}
}

func trimTerminator(line string) string {
	if l, ok := strings.CutSuffix(line, "\n"); ok {
		return strings.TrimSuffix(l, "\r")
	}
	return line
}

// newFold returns the comparison form of a string for the given mode.
func newFold(caseSensitive bool) func(string) string {
	if caseSensitive {
		return func(s string) string { return s }
	}
	return cases.Lower(language.Und).String
}

// Matches yields the lines of contents that contain query, in document order.
// Each yielded Text is a substring of contents; nothing is copied.
// An empty query matches every line.
func Matches(query, contents string, caseSensitive bool) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		fold := newFold(caseSensitive)
		needle := fold(query)
		for n, line := range Lines(contents) {
			if !strings.Contains(fold(line), needle) {
				continue
			}
			if !yield(Match{Number: n, Text: line}) {
				return
			}
		}
	}
}

// Filter is Matches without the line numbers.
func Filter(query, contents string, caseSensitive bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		for m := range Matches(query, contents, caseSensitive) {
			if !yield(m.Text) {
				return
			}
		}
	}
}

// Search returns the lines of contents containing query, matching case exactly.
// Search and SearchCaseInsensitive are eager conveniences for library callers;
// the command streams through Matches instead.
func Search(query, contents string) []string {
	return slices.Collect(Filter(query, contents, true))
}

// SearchCaseInsensitive returns the lines of contents containing query,
// ignoring case.
func SearchCaseInsensitive(query, contents string) []string {
	return slices.Collect(Filter(query, contents, false))
}

// Highlight returns the byte spans of the non-overlapping occurrences of query
// in line, left to right. Spans index into line itself, so they stay valid for
// case-insensitive matches where lower-casing changes byte lengths.
func Highlight(line, query string, caseSensitive bool) []Span {
	if query == "" {
		return nil
	}

	haystack, needle := line, query
	var origin []int
	if !caseSensitive {
		fold := newFold(false)
		haystack, origin = foldLine(line, fold)
		needle = fold(query)
	}

	// maps a byte offset in haystack back to line
	at := func(i int) int {
		if origin == nil {
			return i
		}
		if i >= len(origin) {
			return len(line)
		}
		return origin[i]
	}

	var spans []Span
	for from := 0; from <= len(haystack)-len(needle); {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(needle)
		if s, e := at(start), at(end); e > s {
			spans = append(spans, Span{Start: s, End: e})
		}
		from = end
	}
	return spans
}

// foldLine lower-cases s with fold, the same way Matches does, and records
// for every byte of the result the offset of the rune in s it came from.
// Offsets are taken from folding each rune on its own; context-dependent
// mappings such as final sigma keep the byte length, so the whole-line form
// lines up with them. If it ever does not, the rune-by-rune form is used.
func foldLine(s string, fold func(string) string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	origin := make([]int, 0, len(s))
	for i, r := range s {
		piece := fold(string(r))
		b.WriteString(piece)
		for range len(piece) {
			origin = append(origin, i)
		}
	}

	if whole := fold(s); len(whole) == b.Len() {
		return whole, origin
	}
	return b.String(), origin
}
