package simlink

import (
	"reflect"
	"testing"
)

func TestSplitChunk(t *testing.T) {
	cases := []struct {
		name  string
		chunk string
		want  []string
	}{
		{
			name:  "plain lines",
			chunk: "|turn|1\n|move|p1a: Garchomp|Earthquake|p2a: Clodsire",
			want:  []string{"|turn|1", "|move|p1a: Garchomp|Earthquake|p2a: Clodsire"},
		},
		{
			name:  "room header dropped",
			chunk: ">battle-gen9ou-1234\n|turn|1",
			want:  []string{"|turn|1"},
		},
		{
			name:  "blank and whitespace lines dropped",
			chunk: "|turn|1\n\n   \n|turn|2",
			want:  []string{"|turn|1", "|turn|2"},
		},
		{
			name:  "carriage returns trimmed",
			chunk: "|turn|1\r\n|turn|2\r",
			want:  []string{"|turn|1", "|turn|2"},
		},
		{
			name:  "empty chunk",
			chunk: "",
			want:  nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitChunk(tc.chunk)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("splitChunk(%q) = %v, want %v", tc.chunk, got, tc.want)
			}
		})
	}
}
