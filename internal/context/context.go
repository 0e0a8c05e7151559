// Package context reads windows of source lines around commented lines.
package context

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// DefaultWindow is the number of lines shown on each side of the target.
const DefaultWindow = 2

// Line is one line of source with its 1-based number.
type Line struct {
	Number int
	Text   string
}

// ReadError indicates a file exists but its content could not be used.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("context.Read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Read returns up to window lines on each side of line, inclusive, clamped
// to the file bounds. A missing or unreadable file is a soft failure: the
// window is simply empty. A file that is not valid UTF-8 fails with
// ReadError so the caller can fall back to rendering without context.
func Read(path string, line, window int) ([]Line, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	if !utf8.Valid(data) {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("not valid UTF-8")}
	}
	if len(data) == 0 || line < 1 || window < 0 {
		return nil, nil
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")

	start := line - window
	if start < 1 {
		start = 1
	}
	end := line + window
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return nil, nil
	}

	out := make([]Line, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, Line{Number: n, Text: lines[n-1]})
	}
	return out, nil
}
