package gerrit

import (
	"reflect"
	"testing"
)

func mark(v bool) *bool { return &v }

func TestResolveThreads(t *testing.T) {
	tests := []struct {
		name     string
		comments []rawComment
		want     []bool
	}{
		{
			name:     "no marker defaults to unresolved",
			comments: []rawComment{{ID: "a"}},
			want:     []bool{true},
		},
		{
			name:     "explicit resolved",
			comments: []rawComment{{ID: "a", Unresolved: mark(false)}},
			want:     []bool{false},
		},
		{
			name: "reply marker overrides root",
			comments: []rawComment{
				{ID: "a", Unresolved: mark(true)},
				{ID: "b", InReplyTo: "a", Unresolved: mark(false)},
			},
			want: []bool{false, false},
		},
		{
			name: "last marker wins over the whole chain",
			comments: []rawComment{
				{ID: "a", Unresolved: mark(true)},
				{ID: "b", InReplyTo: "a", Unresolved: mark(false)},
				{ID: "c", InReplyTo: "b", Unresolved: mark(true)},
			},
			want: []bool{true, true, true},
		},
		{
			name: "unmarked reply inherits thread state",
			comments: []rawComment{
				{ID: "a", Unresolved: mark(false)},
				{ID: "b", InReplyTo: "a"},
			},
			want: []bool{false, false},
		},
		{
			name: "independent threads do not interfere",
			comments: []rawComment{
				{ID: "a", Unresolved: mark(true)},
				{ID: "b", Unresolved: mark(false)},
			},
			want: []bool{true, false},
		},
		{
			name: "reply to unknown id starts its own thread",
			comments: []rawComment{
				{ID: "a", InReplyTo: "gone", Unresolved: mark(false)},
				{ID: "b", Unresolved: mark(true)},
			},
			want: []bool{false, true},
		},
		{
			name: "comments without ids are separate threads",
			comments: []rawComment{
				{Unresolved: mark(false)},
				{},
			},
			want: []bool{false, true},
		},
		{
			name: "cyclic references terminate",
			comments: []rawComment{
				{ID: "a", InReplyTo: "b", Unresolved: mark(true)},
				{ID: "b", InReplyTo: "a"},
			},
			want: []bool{true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveThreads(tt.comments)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resolveThreads = %v, want %v", got, tt.want)
			}
		})
	}
}
