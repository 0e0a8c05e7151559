// Package render produces text or structured JSON output from a review.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	srcctx "github.com/OlechowskiMichal/tools/internal/context"
	"github.com/OlechowskiMichal/tools/internal/gerrit"
)

// Mode selects the output format.
type Mode string

const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// ErrInvalidMode is returned when a caller requests an unsupported mode.
// This is a programming-contract violation, not a data problem.
var ErrInvalidMode = errors.New("render: invalid mode")

// Options controls filtering and context lookup. ContextFor supplies the
// source window for a comment; nil means no context is available. Lookups
// that fail must degrade to an empty window, never abort the render.
type Options struct {
	UnresolvedOnly bool
	ContextFor     func(path string, line int) []srcctx.Line
}

// Document is the structured form of a rendered review. Field names and
// nesting are a stable contract for machine consumers.
type Document struct {
	Project      string      `json:"project"`
	ChangeNumber string      `json:"change_number"`
	Subject      string      `json:"subject"`
	CommentCount int         `json:"comment_count"`
	Files        []FileEntry `json:"files"`
}

// FileEntry is one file and its surviving comments.
type FileEntry struct {
	Path     string         `json:"path"`
	Comments []CommentEntry `json:"comments"`
}

// CommentEntry is one comment with its optional context window.
type CommentEntry struct {
	Line     int           `json:"line"`
	Author   string        `json:"author"`
	Message  string        `json:"message"`
	Resolved bool          `json:"resolved"`
	Context  []ContextLine `json:"context,omitempty"`
}

// ContextLine is one source line of a context window.
type ContextLine struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Render writes the review to w in the requested mode.
func Render(w io.Writer, rev *gerrit.Review, mode Mode, opts Options) error {
	files := filterFiles(rev.Files, opts.UnresolvedOnly)
	switch mode {
	case ModeText:
		return renderText(w, rev, files, opts)
	case ModeJSON:
		return renderJSON(w, rev, files, opts)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// filterFiles applies the unresolved-only filter before anything is
// counted, dropping files left without comments.
func filterFiles(files []gerrit.File, unresolvedOnly bool) []gerrit.File {
	if !unresolvedOnly {
		return files
	}
	var out []gerrit.File
	for _, f := range files {
		var kept []gerrit.Comment
		for _, c := range f.Comments {
			if !c.Resolved {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			out = append(out, gerrit.File{Path: f.Path, Comments: kept})
		}
	}
	return out
}

func countComments(files []gerrit.File) int {
	n := 0
	for _, f := range files {
		n += len(f.Comments)
	}
	return n
}

func contextFor(opts Options, path string, line int) []srcctx.Line {
	if opts.ContextFor == nil || line < 1 {
		return nil
	}
	return opts.ContextFor(path, line)
}

func renderText(w io.Writer, rev *gerrit.Review, files []gerrit.File, opts Options) error {
	total := countComments(files)
	if total == 0 {
		fmt.Fprintln(w, "No file comments found in review")
		return nil
	}

	rule := strings.Repeat("=", 70)
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "Review #%s\n", rev.Number)
	fmt.Fprintln(w, rev.Subject)
	fmt.Fprintf(w, "Project: %s\n", rev.Project)
	if opts.UnresolvedOnly {
		fmt.Fprintf(w, "Unresolved Comments: %d\n", total)
	} else {
		fmt.Fprintf(w, "Comments: %d\n", total)
	}
	fmt.Fprintln(w, rule)

	for _, f := range files {
		fmt.Fprintf(w, "\n%s\n", f.Path)
		fmt.Fprintln(w, strings.Repeat("-", 40))
		for _, c := range f.Comments {
			writeComment(w, f.Path, c, opts)
		}
	}
	return nil
}

func writeComment(w io.Writer, path string, c gerrit.Comment, opts Options) {
	tag := ""
	if !c.Resolved {
		tag = " [UNRESOLVED]"
	}
	if c.Line > 0 {
		fmt.Fprintf(w, "\nL%4d | %s%s\n", c.Line, c.Author, tag)
	} else {
		fmt.Fprintf(w, "\nFILE  | %s%s\n", c.Author, tag)
	}
	for _, line := range strings.Split(c.Message, "\n") {
		fmt.Fprintf(w, "     | %s\n", line)
	}

	window := contextFor(opts, path, c.Line)
	if len(window) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, ln := range window {
		marker := "   "
		if ln.Number == c.Line {
			marker = ">>>"
		}
		fmt.Fprintf(w, "     %4d %s %s\n", ln.Number, marker, strings.TrimRight(ln.Text, " \t"))
	}
}

func renderJSON(w io.Writer, rev *gerrit.Review, files []gerrit.File, opts Options) error {
	doc := Document{
		Project:      rev.Project,
		ChangeNumber: rev.Number,
		Subject:      rev.Subject,
		CommentCount: countComments(files),
		Files:        []FileEntry{},
	}
	for _, f := range files {
		entry := FileEntry{Path: f.Path, Comments: []CommentEntry{}}
		for _, c := range f.Comments {
			ce := CommentEntry{
				Line:     c.Line,
				Author:   c.Author,
				Message:  c.Message,
				Resolved: c.Resolved,
			}
			for _, ln := range contextFor(opts, f.Path, c.Line) {
				ce.Context = append(ce.Context, ContextLine{Line: ln.Number, Text: ln.Text})
			}
			entry.Comments = append(entry.Comments, ce)
		}
		doc.Files = append(doc.Files, entry)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("render: marshal document: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
