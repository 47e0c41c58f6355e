package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and drops stop words",
			text: "How to Undo the last commit",
			want: []string{"undo", "last", "commit"},
		},
		{
			name: "camel case identifier",
			text: "SettingWithCopyWarning pandas",
			want: []string{"settingwithcopywarning", "setting", "copy", "warning", "pandas"},
		},
		{
			name: "snake case and punctuation",
			text: "df.reset_index(drop=True)",
			want: []string{"df", "reset_index", "reset", "index", "drop", "true"},
		},
		{
			name: "digits split from letters",
			text: "utf8 decoding",
			want: []string{"utf8", "utf", "8", "decoding"},
		},
		{
			name: "only punctuation",
			text: "-- !! ??",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.text))
		})
	}
}

func TestSplitIdentifier(t *testing.T) {
	assert.Equal(t, []string{"http", "server", "2", "conf"}, splitIdentifier("HTTPServer2_conf"))
	assert.Equal(t, []string{"plain"}, splitIdentifier("plain"))
	assert.Equal(t, []string{"get", "url"}, splitIdentifier("getURL"))
}

func TestTrigrams(t *testing.T) {
	assert.Equal(t, []string{"^ab", "abc", "bc$"}, trigrams("abc"))
	assert.Nil(t, trigrams("go"))
}
