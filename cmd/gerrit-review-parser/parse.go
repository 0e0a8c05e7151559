package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/OlechowskiMichal/tools/internal/config"
	srcctx "github.com/OlechowskiMichal/tools/internal/context"
	"github.com/OlechowskiMichal/tools/internal/fetch"
	"github.com/OlechowskiMichal/tools/internal/gerrit"
	"github.com/OlechowskiMichal/tools/internal/render"
)

type parseFlags struct {
	file           string
	changeID       string
	query          string
	save           bool
	output         string
	unresolvedOnly bool
	jsonOutput     bool
	dryRun         bool
	debug          bool
}

func newParseCmd() *cobra.Command {
	f := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse Gerrit review JSON and display comments with file context",
		Long: `Parse Gerrit review JSON and display comments with file context.

Examples:
  gerrit-review-parser parse --changeid 12345
  gerrit-review-parser parse --file review.json --unresolved-only
  gerrit-review-parser parse --query "status:open project:myproject" --save
  gerrit-review-parser parse --changeid 12345 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.file, "file", "f", "", "Path to Gerrit review JSON file")
	flags.StringVarP(&f.changeID, "changeid", "c", "", "Gerrit change ID to fetch and parse")
	flags.StringVarP(&f.query, "query", "q", "", "Gerrit query string to fetch and parse")
	flags.BoolVarP(&f.save, "save", "s", false, "Save fetched JSON to file")
	flags.StringVarP(&f.output, "output", "o", "", "Custom output filename (use with --save)")
	flags.BoolVarP(&f.unresolvedOnly, "unresolved-only", "u", false, "Show only unresolved comments")
	flags.BoolVar(&f.jsonOutput, "json", false, "Output as JSON for machine processing")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Show SSH command without executing")
	flags.BoolVar(&f.debug, "debug", false, "Enable debug output")

	return cmd
}

func runParse(f *parseFlags) error {
	logger := log.New(os.Stderr, "", 0)
	verbose := func(msg string, args ...any) {
		if f.debug {
			logger.Printf(msg, args...)
		}
	}

	if f.dryRun && f.file != "" {
		logger.Println("warning: --dry-run has no effect when reading from file")
	}
	if f.dryRun && (f.changeID != "" || f.query != "") {
		return runDryRun(f)
	}

	data, err := loadInput(f, logger, verbose)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return exitError(1, "no input provided")
	}

	rev, warnings, err := gerrit.Parse(data)
	if err != nil {
		return exitError(1, "%v", err)
	}
	for _, warn := range warnings {
		logger.Printf("warning: skipping %v", warn)
	}
	verbose("parsed change #%s with %d comments", rev.Number, rev.CommentCount())

	mode := render.ModeText
	if f.jsonOutput {
		mode = render.ModeJSON
	}
	opts := render.Options{
		UnresolvedOnly: f.unresolvedOnly,
		ContextFor:     fileContext(verbose),
	}
	if err := render.Render(os.Stdout, rev, mode, opts); err != nil {
		return exitError(1, "%v", err)
	}
	return nil
}

// fileContext looks up source windows for the renderer. Paths outside the
// working tree (absolute ones) are never read, and read failures degrade to
// an empty window.
func fileContext(verbose func(string, ...any)) func(path string, line int) []srcctx.Line {
	return func(path string, line int) []srcctx.Line {
		if filepath.IsAbs(path) {
			return nil
		}
		window, err := srcctx.Read(path, line, srcctx.DefaultWindow)
		if err != nil {
			verbose("cannot read %s: %v", path, err)
			return nil
		}
		return window
	}
}

// loadInput resolves the review JSON source: file, then fetch by change id
// or query, then piped stdin.
func loadInput(f *parseFlags, logger *log.Logger, verbose func(string, ...any)) ([]byte, error) {
	switch {
	case f.file != "":
		verbose("loading review from file: %s", f.file)
		data, err := os.ReadFile(f.file)
		if err != nil {
			return nil, exitError(1, "cannot read %s: %v", f.file, err)
		}
		return data, nil
	case f.changeID != "":
		return fetchAndSave(f, fetch.NormalizeChangeID(f.changeID), logger, verbose)
	case f.query != "":
		return fetchAndSave(f, f.query, logger, verbose)
	default:
		if stdinIsTerminal() {
			return nil, nil
		}
		verbose("reading from stdin")
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, exitError(1, "cannot read stdin: %v", err)
		}
		return data, nil
	}
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return true
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func fetchAndSave(f *parseFlags, query string, logger *log.Logger, verbose func(string, ...any)) ([]byte, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, exitError(1, "%v", err)
	}
	verbose("fetching query: %s", query)
	data, err := fetch.Fetch(context.Background(), cfg, query)
	if err != nil {
		return nil, exitError(1, "%v", err)
	}
	if f.save {
		name := f.output
		if name == "" {
			name = fetch.DefaultSaveName(query, time.Now())
		}
		if err := fetch.Save(name, data); err != nil {
			return nil, exitError(1, "%v", err)
		}
		logger.Printf("Saved JSON to: %s", name)
	}
	return data, nil
}

func runDryRun(f *parseFlags) error {
	query := f.query
	if f.changeID != "" {
		query = fetch.NormalizeChangeID(f.changeID)
	}
	cfg, err := config.Load()
	if err != nil {
		return exitError(1, "%v", err)
	}
	fmt.Println(dryRunLine(fetch.QueryCommand(cfg, query), f.jsonOutput))
	return nil
}

// dryRunLine renders the would-be fetch command without executing it.
func dryRunLine(argv []string, jsonOut bool) string {
	cmdStr := strings.Join(argv, " ")
	if jsonOut {
		data, _ := json.MarshalIndent(map[string]any{
			"dry_run": true,
			"command": cmdStr,
		}, "", "  ")
		return string(data)
	}
	return "[DRY-RUN] Would execute: " + cmdStr
}
