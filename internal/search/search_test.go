package search

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"unsafe"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scenario struct {
	Name          string   `toml:"name"`
	Query         string   `toml:"query"`
	Contents      string   `toml:"contents"`
	CaseSensitive bool     `toml:"case_sensitive"`
	Want          []string `toml:"want"`
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()
	var file struct {
		Scenarios []scenario `toml:"scenario"`
	}
	_, err := toml.DecodeFile(filepath.Join("testdata", "scenarios.toml"), &file)
	require.NoError(t, err)
	require.NotEmpty(t, file.Scenarios)
	return file.Scenarios
}

func TestFilterScenarios(t *testing.T) {
	for _, tt := range loadScenarios(t) {
		t.Run(tt.Name, func(t *testing.T) {
			got := slices.Collect(Filter(tt.Query, tt.Contents, tt.CaseSensitive))
			if len(tt.Want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.Want, got)
		})
	}
}

func TestSearchVariants(t *testing.T) {
	contents := "The a\nThe b\nthe c\nthe d"

	assert.Equal(t, []string{"the c", "the d"}, Search("the", contents))
	assert.Equal(t, []string{"The a", "The b", "the c", "the d"}, SearchCaseInsensitive("the", contents))
	assert.Empty(t, Search("fox", "The end."))
}

func TestMatchesLineNumbers(t *testing.T) {
	contents := "alpha\nbeta\ngamma\nalphabet\n"

	got := slices.Collect(Matches("alpha", contents, true))

	assert.Equal(t, []Match{
		{Number: 1, Text: "alpha"},
		{Number: 4, Text: "alphabet"},
	}, got)
}

func TestLines(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     []string
	}{
		{name: "empty", contents: "", want: nil},
		{name: "single line", contents: "one", want: []string{"one"}},
		{name: "trailing newline", contents: "one\n", want: []string{"one"}},
		{name: "explicit blank last line", contents: "one\n\n", want: []string{"one", ""}},
		{name: "crlf", contents: "one\r\ntwo", want: []string{"one", "two"}},
		{name: "only newline", contents: "\n", want: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, line := range Lines(tt.contents) {
				got = append(got, line)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterYieldsViewsIntoContents(t *testing.T) {
	contents := "first line\nsecond line\n"

	for line := range Filter("second", contents, true) {
		// the yielded string must share the backing bytes of contents
		idx := strings.Index(contents, line)
		require.GreaterOrEqual(t, idx, 0)
		assert.Same(t, unsafe.StringData(contents[idx:]), unsafe.StringData(line))
	}
}

func TestFilterStopsEarly(t *testing.T) {
	contents := "a1\na2\na3\na4"

	var got []string
	for line := range Filter("a", contents, true) {
		got = append(got, line)
		if len(got) == 2 {
			break
		}
	}

	assert.Equal(t, []string{"a1", "a2"}, got)
}

func TestFilterIsReinvocable(t *testing.T) {
	seq := Filter("a", "a\nb\na", true)

	first := slices.Collect(seq)
	second := slices.Collect(seq)

	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestFilterProperties(t *testing.T) {
	documents := []string{
		"The quick brown fox\njumps over\nTHE lazy dog\nthe end",
		"Ünïcödé LINE\nünïcödé line\nplain",
		"no\nmatch\nhere",
	}
	queries := []string{"the", "ünï", "o", "", "zzz"}

	for _, doc := range documents {
		for _, q := range queries {
			all := slices.Collect(Filter("", doc, true))
			sensitive := slices.Collect(Filter(q, doc, true))
			insensitive := slices.Collect(Filter(q, doc, false))

			// exactly the containing lines, in order
			var want []string
			for _, line := range all {
				if strings.Contains(line, q) {
					want = append(want, line)
				}
			}
			assert.Equal(t, want, sensitive, "query %q", q)

			// insensitive results are a superset, still in document order
			assert.Subset(t, insensitive, sensitive, "query %q", q)
			assert.True(t, isSubsequence(insensitive, all), "query %q", q)

			if q == "" {
				assert.Equal(t, all, sensitive)
				assert.Equal(t, all, insensitive)
			}
		}
	}
}

func isSubsequence(sub, seq []string) bool {
	i := 0
	for _, s := range seq {
		if i < len(sub) && sub[i] == s {
			i++
		}
	}
	return i == len(sub)
}

func TestHighlightCoversEveryCaseInsensitiveMatch(t *testing.T) {
	contents := "ΟΔΟΣ\nοδός στο σπίτι\nThe end\nSTRAẞE"
	queries := []string{"ς", "σ", "the", "ß", "ος"}

	for _, q := range queries {
		for line := range Filter(q, contents, false) {
			assert.NotEmpty(t, Highlight(line, q, false), "query %q line %q", q, line)
		}
	}
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name          string
		line          string
		query         string
		caseSensitive bool
		want          []Span
	}{
		{
			name:          "single occurrence",
			line:          "safe, fast, productive.",
			query:         "fast",
			caseSensitive: true,
			want:          []Span{{Start: 6, End: 10}},
		},
		{
			name:          "repeated occurrences",
			line:          "aaaa",
			query:         "aa",
			caseSensitive: true,
			want:          []Span{{Start: 0, End: 2}, {Start: 2, End: 4}},
		},
		{
			name:          "case insensitive",
			line:          "The the THE",
			query:         "the",
			caseSensitive: false,
			want:          []Span{{Start: 0, End: 3}, {Start: 4, End: 7}, {Start: 8, End: 11}},
		},
		{
			name:          "case sensitive skips other cases",
			line:          "The the THE",
			query:         "the",
			caseSensitive: true,
			want:          []Span{{Start: 4, End: 7}},
		},
		{
			name:          "multibyte runes map back to the original line",
			line:          "ẞ is ß",
			query:         "ß",
			caseSensitive: false,
			want:          []Span{{Start: 0, End: 3}, {Start: 7, End: 9}},
		},
		{
			name:          "final sigma agrees with Matches",
			line:          "ΟΔΟΣ",
			query:         "ς",
			caseSensitive: false,
			want:          []Span{{Start: 6, End: 8}},
		},
		{
			name:          "empty query",
			line:          "anything",
			query:         "",
			caseSensitive: true,
			want:          nil,
		},
		{
			name:          "no occurrence",
			line:          "anything",
			query:         "zzz",
			caseSensitive: false,
			want:          nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.line, tt.query, tt.caseSensitive))
		})
	}
}
