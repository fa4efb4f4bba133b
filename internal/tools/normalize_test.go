package tools

import (
	"reflect"
	"testing"
)

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  any
	}{
		{
			name:  "plain string stays",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "json object decodes",
			input: `{"city": "Berlin"}`,
			want:  map[string]any{"city": "Berlin"},
		},
		{
			name:  "json array decodes",
			input: `[1, 2, 3]`,
			want:  []any{float64(1), float64(2), float64(3)},
		},
		{
			name:  "fenced json decodes",
			input: "```json\n{\"a\": 1}\n```",
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "fence without language tag",
			input: "```\n{\"a\": 1}\n```",
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "scalar json keeps original string",
			input: "42",
			want:  "42",
		},
		{
			name:  "broken json stays",
			input: `{"unclosed": `,
			want:  `{"unclosed": `,
		},
		{
			name:  "non-string passes through",
			input: map[string]any{"k": "v"},
			want:  map[string]any{"k": "v"},
		},
		{
			name:  "nil passes through",
			input: nil,
			want:  nil,
		},
		{
			name:  "empty string stays",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeValue(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeValue(%v) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeValue_Idempotent(t *testing.T) {
	inputs := []any{
		`{"city": "Berlin"}`,
		"```json\n[1, 2]\n```",
		"plain text",
		map[string]any{"a": float64(1)},
	}

	for _, in := range inputs {
		once := NormalizeValue(in)
		twice := NormalizeValue(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("NormalizeValue not idempotent for %v: %#v vs %#v", in, once, twice)
		}
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"```json\n{}\n```", "{}"},
		{"```\ntext\n```", "text"},
		{"no fence", "no fence"},
		{"```", "```"},   // too short to be a fence pair
		{"``````", ""},   // empty fence
		{"```not a tag with spaces\nbody\n```", "not a tag with spaces\nbody"},
	}

	for _, tt := range tests {
		if got := stripCodeFence(tt.input); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
