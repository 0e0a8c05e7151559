package gerrit

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"

	"github.com/tidwall/gjson"
)

// Raw payload schema for `gerrit query --format=JSON`. Fields outside this
// set are ignored; fields inside it are validated after decoding.
type rawChange struct {
	Project   json.RawMessage `json:"project"`
	Number    json.RawMessage `json:"number"`
	Subject   string          `json:"subject"`
	PatchSets []rawPatchSet   `json:"patchSets"`
}

type rawPatchSet struct {
	Comments []rawComment `json:"comments"`
}

type rawComment struct {
	ID         string     `json:"id"`
	File       string     `json:"file"`
	Line       int        `json:"line"`
	Reviewer   rawAccount `json:"reviewer"`
	Message    string     `json:"message"`
	Unresolved *bool      `json:"unresolved"`
	InReplyTo  string     `json:"inReplyTo"`
}

type rawAccount struct {
	Name string `json:"name"`
}

// Parse decodes raw Gerrit query output into a Review. Comment records that
// are individually unusable are skipped and reported as InvalidCommentError
// warnings; a payload missing the change number or subject fails with
// MalformedInputError.
func Parse(data []byte) (*Review, []InvalidCommentError, error) {
	obj, err := firstChangeObject(data)
	if err != nil {
		return nil, nil, err
	}

	var change rawChange
	if err := json.Unmarshal(obj, &change); err != nil {
		return nil, nil, &MalformedInputError{Reason: "unexpected field shape", Err: err}
	}
	number := changeNumber(change.Number)
	if number == "" {
		return nil, nil, &MalformedInputError{Reason: "missing change number"}
	}
	if change.Subject == "" {
		return nil, nil, &MalformedInputError{Reason: "missing subject"}
	}

	raw := collectRawComments(change.PatchSets)
	unresolved := resolveThreads(raw)

	var warnings []InvalidCommentError
	var order []string
	byPath := map[string][]Comment{}
	for i, rc := range raw {
		if reason := validateComment(rc); reason != "" {
			warnings = append(warnings, InvalidCommentError{Index: i, Reason: reason})
			continue
		}
		if _, seen := byPath[rc.File]; !seen {
			order = append(order, rc.File)
		}
		byPath[rc.File] = append(byPath[rc.File], Comment{
			Line:     rc.Line,
			Author:   rc.Reviewer.Name,
			Message:  rc.Message,
			Resolved: !unresolved[i],
			Parent:   rc.InReplyTo,
		})
	}

	files := make([]File, 0, len(order))
	for _, path := range order {
		comments := byPath[path]
		// Stable so file-level comments (line 0) keep their input order
		// ahead of everything else.
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].Line < comments[j].Line
		})
		files = append(files, File{Path: path, Comments: comments})
	}

	return &Review{
		Number:  number,
		Subject: change.Subject,
		Project: projectName(change.Project),
		Files:   files,
	}, warnings, nil
}

// firstChangeObject extracts the first change object from the query output.
// Gerrit emits one JSON object per row and appends a stats row; the stats
// row is never a change.
func firstChangeObject(data []byte) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var obj json.RawMessage
		if err := dec.Decode(&obj); err != nil {
			if err == io.EOF {
				return nil, &MalformedInputError{Reason: "no change object in input"}
			}
			return nil, &MalformedInputError{Reason: "invalid JSON", Err: err}
		}
		if gjson.GetBytes(obj, "type").String() == "stats" {
			continue
		}
		if !gjson.ParseBytes(obj).IsObject() {
			return nil, &MalformedInputError{Reason: "input is not a JSON object"}
		}
		return obj, nil
	}
}

func collectRawComments(patchSets []rawPatchSet) []rawComment {
	var raw []rawComment
	for _, ps := range patchSets {
		raw = append(raw, ps.Comments...)
	}
	return raw
}

func validateComment(rc rawComment) string {
	switch {
	case rc.File == "":
		return "missing file path"
	case rc.Reviewer.Name == "":
		return "missing reviewer name"
	case rc.Message == "":
		return "missing message"
	case rc.Line < 0:
		return "negative line number"
	}
	return ""
}

// changeNumber accepts the change number as either a JSON number or, on
// older servers, a string.
func changeNumber(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// projectName tolerates the project field being absent or a non-string
// (older servers emit an object with a name key).
func projectName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "Unknown"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	if name := gjson.GetBytes(raw, "name").String(); name != "" {
		return name
	}
	return "Unknown"
}
