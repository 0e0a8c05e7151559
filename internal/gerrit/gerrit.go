// Package gerrit parses Gerrit review query output into a normalized model.
package gerrit

import "fmt"

// Review is a parsed Gerrit change with its inline comments grouped by file.
// A Review and everything under it is built once by Parse and never mutated.
type Review struct {
	Number  string
	Subject string
	Project string
	Files   []File
}

// File holds the comments attached to one path, in line order.
type File struct {
	Path     string
	Comments []Comment
}

// Comment is a single review comment. Line 0 means the comment applies to
// the file as a whole rather than a specific line. Parent carries the id of
// the comment this one replies to, empty for thread roots.
type Comment struct {
	Line     int
	Author   string
	Message  string
	Resolved bool
	Parent   string
}

// CommentCount returns the total number of comments across all files.
func (r *Review) CommentCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Comments)
	}
	return n
}

// MalformedInputError indicates the payload is structurally unusable:
// invalid JSON or missing required change fields. Fatal to the run.
type MalformedInputError struct {
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed review input: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed review input: %s", e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// InvalidCommentError marks a single comment record that could not be used.
// The record is skipped and parsing continues.
type InvalidCommentError struct {
	Index  int
	Reason string
}

func (e InvalidCommentError) Error() string {
	return fmt.Sprintf("invalid comment record %d: %s", e.Index, e.Reason)
}
