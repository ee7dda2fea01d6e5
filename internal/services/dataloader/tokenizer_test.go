package dataloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"simple", "a,b,c", [][]string{{"a", "b", "c"}}},
		{"trailing newline", "a,b\n", [][]string{{"a", "b"}}},
		{"quoted comma", `a,"b,c",d`, [][]string{{"a", "b,c", "d"}}},
		{"escaped quote", `"He said ""hi"""`, [][]string{{`He said "hi"`}}},
		{"quoted newline", "\"multi\nline\",x", [][]string{{"multi\nline", "x"}}},
		{"mixed line endings", "a\r\nb\rc\nd", [][]string{{"a"}, {"b"}, {"c"}, {"d"}}},
		{"unterminated quote", `a,"open`, [][]string{{"a", "open"}}},
		{"bare quote toggles", `ab"c,d"e`, [][]string{{"abc,de"}}},
		{"trailing empty field", "a,", [][]string{{"a", ""}}},
		{"blank line kept", "a\n\nb", [][]string{{"a"}, {""}, {"b"}}},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestNonBlankRows(t *testing.T) {
	rows := [][]string{
		{"h1", "h2"},
		{""},
		{" ", "\t"},
		{"", "x"},
	}

	got := NonBlankRows(rows)
	assert.Equal(t, [][]string{{"h1", "h2"}, {"", "x"}}, got)
}
