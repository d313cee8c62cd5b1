package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"single no newline", "a", []string{"a"}},
		{"single newline", "a\n", []string{"a"}},
		{"two lines", "a\nb", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"only newline", "\n", []string{""}},
		{"blank middle", "a\n\nb\n", []string{"a", "", "b"}},
		{"double trailing", "a\n\n", []string{"a", ""}},
		{"lone cr kept", "a\rb\n", []string{"a\rb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), CountLines(tt.text))
		})
	}
}

func TestClassifyLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want LineCounts
	}{
		{
			name: "empty",
			text: "",
			want: LineCounts{},
		},
		{
			name: "code comment blank",
			text: "// header\nfn main() {\n\n    let x = 1; // trailing\n}\n",
			want: LineCounts{Code: 3, Comment: 1, Blank: 1},
		},
		{
			name: "block comment",
			text: "/*\n * doc\n */\nfn a() {}\n",
			want: LineCounts{Code: 1, Comment: 3},
		},
		{
			name: "single line block",
			text: "/* one */\nfn a() {}\n",
			want: LineCounts{Code: 1, Comment: 1},
		},
		{
			name: "blank inside block stays blank",
			text: "/*\n\n*/\n",
			want: LineCounts{Comment: 2, Blank: 1},
		},
		{
			name: "doc comments",
			text: "/// doc\n//! inner\nstruct S;\n",
			want: LineCounts{Code: 1, Comment: 2},
		},
		{
			name: "comment only file",
			text: "// a\n// b\n/* c\n d */\n",
			want: LineCounts{Comment: 4},
		},
		{
			name: "string literal is not recognised",
			text: "let s = \"/* not a comment\";\nlet t = 1;\n",
			want: LineCounts{Code: 2},
		},
		{
			name: "whitespace only is blank",
			text: "   \n\t\nx\n",
			want: LineCounts{Code: 1, Blank: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyLines(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, CountLines(tt.text), got.Total())
		})
	}
}
