package context

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.go")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func numberedFile(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return writeTempFile(t, b.String())
}

func TestReadWindow(t *testing.T) {
	path := numberedFile(t, 10)

	tests := []struct {
		name   string
		line   int
		window int
		want   []Line
	}{
		{
			name: "middle", line: 5, window: 2,
			want: []Line{{3, "line 3"}, {4, "line 4"}, {5, "line 5"}, {6, "line 6"}, {7, "line 7"}},
		},
		{
			name: "clamped at start", line: 1, window: 2,
			want: []Line{{1, "line 1"}, {2, "line 2"}, {3, "line 3"}},
		},
		{
			name: "clamped at end", line: 10, window: 2,
			want: []Line{{8, "line 8"}, {9, "line 9"}, {10, "line 10"}},
		},
		{
			name: "zero window", line: 4, window: 0,
			want: []Line{{4, "line 4"}},
		},
		{
			name: "past EOF", line: 100, window: 2,
			want: nil,
		},
		{
			name: "line zero is file-level", line: 0, window: 2,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(path, tt.line, tt.window)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Read(%d, %d) = %v, want %v", tt.line, tt.window, got, tt.want)
			}
			if len(got) > 2*tt.window+1 {
				t.Errorf("window larger than 2w+1: %d lines", len(got))
			}
		})
	}
}

func TestReadMissingFileIsSoft(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.go"), 5, 2)
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if got != nil {
		t.Errorf("missing file should yield no context, got %v", got)
	}
}

func TestReadInvalidUTF8(t *testing.T) {
	path := writeTempFile(t, "ok\n\xff\xfe\n")
	_, err := Read(path, 1, 2)
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("want ReadError, got %v", err)
	}
	if readErr.Path != path {
		t.Errorf("ReadError.Path = %q, want %q", readErr.Path, path)
	}
}

func TestReadNormalizesCRLF(t *testing.T) {
	path := writeTempFile(t, "one\r\ntwo\r\nthree\r\n")
	got, err := Read(path, 2, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []Line{{1, "one"}, {2, "two"}, {3, "three"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read = %v, want %v", got, want)
	}
}

func TestReadEmptyFile(t *testing.T) {
	path := writeTempFile(t, "")
	got, err := Read(path, 1, 2)
	if err != nil || got != nil {
		t.Errorf("empty file: got %v, %v; want nil, nil", got, err)
	}
}

func TestReadNoTrailingNewline(t *testing.T) {
	path := writeTempFile(t, "one\ntwo")
	got, err := Read(path, 2, 2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []Line{{1, "one"}, {2, "two"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read = %v, want %v", got, want)
	}
}
