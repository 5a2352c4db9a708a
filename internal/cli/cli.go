// Package cli wires the minigrep command: it resolves the configuration, loads
// the document, filters its lines and prints the matches, and maps failures to
// diagnostics and exit codes.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/f4ah6o/minigrep-go/internal/config"
	"github.com/f4ah6o/minigrep-go/internal/document"
	"github.com/f4ah6o/minigrep-go/internal/logger"
	"github.com/f4ah6o/minigrep-go/internal/output"
	"github.com/f4ah6o/minigrep-go/internal/search"
)

const (
	// ExitOK is returned on success, including runs with no matches.
	ExitOK = 0
	// ExitFailure is returned for argument and application errors alike.
	ExitFailure = 1
)

// UsageError reports invalid command-line arguments or flags.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

type flags struct {
	ignoreCase  bool
	lineNumbers bool
	html        bool
	verbose     bool
	color       string
	format      string
	encoding    string
}

// NewRootCommand builds the minigrep command. Matches go to stdout, usage and
// diagnostics to stderr. lookup is consulted for CASE_INSENSITIVE.
func NewRootCommand(stdout, stderr io.Writer, lookup config.LookupFunc) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "minigrep [flags] <query> <file-path>",
		Short: "Print the lines of a file that contain a query",
		Long: `minigrep reads a file and prints every line containing the query,
in file order. Matching is a plain substring test and is case-sensitive unless
the CASE_INSENSITIVE environment variable is set (to any value) or -i is given.
Flags must come before the query. Arguments after the file path are ignored,
even when they start with a dash. Use -- before a query that starts with a dash.`,
		Example: `  minigrep safe poem.txt
  CASE_INSENSITIVE=1 minigrep the poem.txt
  minigrep -n --color always to poem.txt
  minigrep --html --encoding shift_jis 検索 page.html`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := append([]string{cmd.Name()}, args...)
			return run(cmd.OutOrStdout(), cmd.ErrOrStderr(), argv, f, lookup)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	// Flags go before the query; everything after it is positional, so
	// trailing extras are ignored even when they look like flags.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "Match case-insensitively (same as setting CASE_INSENSITIVE)")
	cmd.Flags().BoolVarP(&f.lineNumbers, "line-number", "n", false, "Prefix each line with its 1-based line number")
	cmd.Flags().StringVar(&f.color, "color", string(output.ColorNever), "Highlight matches: auto, always or never")
	cmd.Flags().StringVar(&f.format, "format", string(output.FormatText), "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&f.html, "html", false, "Render the file as HTML and search its Markdown text")
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "Character encoding of the file (default utf-8)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log diagnostics to standard error")

	return cmd
}

func run(stdout, stderr io.Writer, argv []string, f flags, lookup config.LookupFunc) error {
	format, err := output.ParseFormat(f.format)
	if err != nil {
		return &UsageError{Err: err}
	}
	colorMode, err := output.ParseColorMode(f.color)
	if err != nil {
		return &UsageError{Err: err}
	}

	cfg, err := config.Resolve(argv, lookup)
	if err != nil {
		return &UsageError{Err: err}
	}
	caseSensitive := cfg.CaseSensitive && !f.ignoreCase

	log := logger.New(stderr, f.verbose)
	defer log.Sync()

	log.Debug("resolved configuration",
		zap.String("query", cfg.Query),
		zap.String("file", cfg.FilePath),
		zap.Bool("case_sensitive", caseSensitive),
	)

	contents, err := document.Load(cfg.FilePath, document.Options{
		Encoding: f.encoding,
		HTML:     f.html,
	})
	if err != nil {
		return err
	}
	log.Debug("document loaded", zap.Int("bytes", len(contents)), zap.Bool("html", f.html))

	printer := output.New(stdout, output.Options{
		Format:        format,
		Color:         colorMode,
		LineNumbers:   f.lineNumbers,
		Query:         cfg.Query,
		CaseSensitive: caseSensitive,
	})

	n, err := printer.Print(search.Matches(cfg.Query, contents, caseSensitive))
	if err != nil {
		return err
	}
	log.Debug("search finished", zap.Int("matches", n))

	return nil
}

// Main runs minigrep with the full argument list, program name first, and
// returns the process exit code.
func Main(args []string, stdout, stderr io.Writer, lookup config.LookupFunc) int {
	cmd := NewRootCommand(stdout, stderr, lookup)

	rest := []string{}
	if len(args) > 1 {
		rest = args[1:]
	}
	cmd.SetArgs(rest)

	return report(stderr, cmd.Execute())
}

func report(stderr io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "Problem parsing arguments: %v\n", usageErr.Err)
	} else {
		fmt.Fprintf(stderr, "Application error: %v\n", err)
	}
	return ExitFailure
}
