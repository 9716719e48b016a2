package pretty

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"nil", nil, "nil"},
		{"scalar", Scalar("3"), "3"},
		{"empty list", List{}, "[]"},
		{"empty map", Map{}, "{}"},
		{"named empty map", Map{Name: "Point"}, "Point {}"},
		{"list", List{Scalar("1"), Quote("two")}, "[\n    1,\n    \"two\",\n]"},
		{
			"nested",
			Map{Fields: []Field{
				{Key: "name", Value: Quote("x")},
				{Key: "items", Value: List{Scalar("true"), nil}},
			}},
			"{\n    name: \"x\",\n    items: [\n        true,\n        nil,\n    ],\n}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.node); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"plain":     `"plain"`,
		"a\"b":      `"a\"b"`,
		"line\nnew": `"line\nnew"`,
		"bell\x07":  `"bell\x07"`,
		"ünï":       `"ünï"`,
	}
	for in, want := range tests {
		if got := string(Quote(in)); got != want {
			t.Errorf("Quote(%q) = %s, want %s", in, got, want)
		}
	}
}
