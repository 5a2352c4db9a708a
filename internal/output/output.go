// Package output writes search matches to a stream, one record per match.
// Plain text is the default and carries no decoration; line numbers, match
// highlighting and structured JSON/YAML records are opt-in.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/f4ah6o/minigrep-go/internal/search"
)

// Format selects the record layout.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ColorMode selects when matches are highlighted.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid format %q: must be text, json or yaml", s)
}

// ParseColorMode validates a --color value.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(s)); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	}
	return "", fmt.Errorf("invalid color mode %q: must be auto, always or never", s)
}

// Options controls how matches are rendered
type Options struct {
	Format      Format
	Color       ColorMode
	LineNumbers bool
	// Query and CaseSensitive locate the occurrences to highlight.
	Query         string
	CaseSensitive bool
}

// Printer renders matches to a writer
type Printer struct {
	w       io.Writer
	opts    Options
	colored bool

	colorMatch  *color.Color
	colorLineNo *color.Color
}

// New creates a Printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	if opts.Format == "" {
		opts.Format = FormatText
	}

	p := &Printer{
		w:           w,
		opts:        opts,
		colored:     opts.Format == FormatText && useColor(w, opts.Color),
		colorMatch:  color.New(color.FgRed, color.Bold),
		colorLineNo: color.New(color.FgGreen),
	}
	if p.colored {
		p.colorMatch.EnableColor()
		p.colorLineNo.EnableColor()
	}
	return p
}

func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorAuto:
		f, ok := w.(*os.File)
		if !ok || color.NoColor {
			return false
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	default:
		return false
	}
}

// Print writes every match in seq and returns how many records were written.
func (p *Printer) Print(seq iter.Seq[search.Match]) (int, error) {
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(seq)
	case FormatYAML:
		return p.printYAML(seq)
	default:
		return p.printText(seq)
	}
}

func (p *Printer) printText(seq iter.Seq[search.Match]) (int, error) {
	count := 0
	for m := range seq {
		var b strings.Builder
		if p.opts.LineNumbers {
			if p.colored {
				b.WriteString(p.colorLineNo.Sprint(m.Number))
			} else {
				fmt.Fprint(&b, m.Number)
			}
			b.WriteByte(':')
		}
		if p.colored {
			b.WriteString(p.highlight(m.Text))
		} else {
			b.WriteString(m.Text)
		}
		b.WriteByte('\n')

		if _, err := io.WriteString(p.w, b.String()); err != nil {
			return count, fmt.Errorf("failed to write output: %w", err)
		}
		count++
	}
	return count, nil
}

func (p *Printer) highlight(line string) string {
	spans := search.Highlight(line, p.opts.Query, p.opts.CaseSensitive)
	if len(spans) == 0 {
		return line
	}

	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(line[last:s.Start])
		b.WriteString(p.colorMatch.Sprint(line[s.Start:s.End]))
		last = s.End
	}
	b.WriteString(line[last:])
	return b.String()
}

func (p *Printer) printJSON(seq iter.Seq[search.Match]) (int, error) {
	encoder := json.NewEncoder(p.w)
	encoder.SetEscapeHTML(false)

	count := 0
	for m := range seq {
		if err := encoder.Encode(m); err != nil {
			return count, fmt.Errorf("failed to write JSON record: %w", err)
		}
		count++
	}
	return count, nil
}

func (p *Printer) printYAML(seq iter.Seq[search.Match]) (int, error) {
	encoder := yaml.NewEncoder(p.w)
	encoder.SetIndent(2)

	count := 0
	for m := range seq {
		if err := encoder.Encode(m); err != nil {
			return count, fmt.Errorf("failed to write YAML record: %w", err)
		}
		count++
	}
	if err := encoder.Close(); err != nil {
		return count, fmt.Errorf("failed to write YAML record: %w", err)
	}
	return count, nil
}
