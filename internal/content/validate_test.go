package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	blocks, err := Decode(`["plain", {"type":"quote","quoteText":"q"}]`)
	require.NoError(t, err)
	assert.Equal(t, []Block{TextBlock("plain"), {Kind: KindQuote, QuoteText: "q"}}, blocks)

	for _, raw := range []string{``, `null`, `{"type":"text"}`, `[1,2]`, `not json`} {
		_, err := Decode(raw)
		assert.ErrorIs(t, err, ErrMalformed, raw)
	}
}

func TestPrepare(t *testing.T) {
	tests := []struct {
		name    string
		in      []Block
		want    Blocks
		wantErr error
	}{
		{
			name: "fills primary text from kind specific fields",
			in: []Block{
				{Kind: KindImage, ImageURL: "https://cdn.example.com/cover.png"},
				{Kind: KindQuote, QuoteText: " Make it simple "},
				{Kind: KindList, ListItems: []string{"one", " ", "two"}},
			},
			want: Blocks{
				{Kind: KindImage, PrimaryText: "https://cdn.example.com/cover.png", ImageURL: "https://cdn.example.com/cover.png"},
				{Kind: KindQuote, PrimaryText: "Make it simple", QuoteText: " Make it simple "},
				{Kind: KindList, PrimaryText: "one\ntwo", ListItems: []string{"one", "two"}},
			},
		},
		{
			name: "drops blocks without content and keeps order",
			in: []Block{
				TextBlock("   "),
				TextBlock("intro"),
				{Kind: KindTable},
				{Kind: KindCode, PrimaryText: "go test ./...", CodeLanguage: "sh"},
			},
			want: Blocks{
				TextBlock("intro"),
				{Kind: KindCode, PrimaryText: "go test ./...", CodeLanguage: "sh"},
			},
		},
		{
			name: "table rows become a textual fallback",
			in:   []Block{{Kind: KindTable, TableData: [][]string{{"a", "b"}, {}, {"c", "d"}}}},
			want: Blocks{{Kind: KindTable, PrimaryText: "a | b\nc | d", TableData: [][]string{{"a", "b"}, {"c", "d"}}}},
		},
		{
			name: "embed code only",
			in:   []Block{{Kind: KindEmbed, EmbedCode: "<iframe src=\"https://player.example.com/1\"></iframe>"}},
			want: Blocks{{Kind: KindEmbed, PrimaryText: "Embedded content", EmbedCode: "<iframe src=\"https://player.example.com/1\"></iframe>"}},
		},
		{
			name:    "every block empty",
			in:      []Block{TextBlock(""), {Kind: KindImage}, {Kind: KindList, ListItems: []string{""}}},
			wantErr: ErrNoContent,
		},
		{
			name:    "no blocks at all",
			in:      []Block{},
			wantErr: ErrNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Prepare(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrepareReportsFieldProblems(t *testing.T) {
	_, err := Prepare([]Block{
		TextBlock("fine"),
		{Kind: "carousel", PrimaryText: "x"},
		{Kind: KindLink, PrimaryText: "docs", LinkURL: "/relative/path"},
	})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []Problem{
		{Field: "content[1].type", Message: `unknown block type "carousel"`},
		{Field: "content[2].linkUrl", Message: "must be an absolute URL"},
	}, verr.Problems)
}
