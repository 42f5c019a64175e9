package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInlineLinks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Span
	}{
		{name: "empty", in: "", want: nil},
		{name: "no links", in: "plain text (not a link)", want: []Span{{Text: "plain text (not a link)"}}},
		{
			name: "single link in the middle",
			in:   "See (docs)[https://example.com/docs] for more",
			want: []Span{
				{Text: "See "},
				{Text: "docs", Href: "https://example.com/docs"},
				{Text: " for more"},
			},
		},
		{
			name: "adjacent links",
			in:   "(a)[https://a.example](b)[https://b.example]",
			want: []Span{
				{Text: "a", Href: "https://a.example"},
				{Text: "b", Href: "https://b.example"},
			},
		},
		{
			name: "nested parentheses end the label early",
			in:   "((x))[https://x.example]",
			want: []Span{
				{Text: "((x))[https://x.example]"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInlineLinks(tt.in))
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		block Block
		want  Node
	}{
		{name: "empty text", block: TextBlock(" "), want: nil},
		{name: "image prefers imageUrl", block: Block{Kind: KindImage, PrimaryText: "https://old.example/a.png", ImageURL: "https://new.example/a.png"}, want: Image{Src: "https://new.example/a.png"}},
		{name: "image falls back to primary text", block: Block{Kind: KindImage, PrimaryText: "https://old.example/a.png"}, want: Image{Src: "https://old.example/a.png"}},
		{name: "image without source", block: Block{Kind: KindImage}, want: nil},
		{name: "video", block: Block{Kind: KindVideo, VideoURL: "https://v.example/1.mp4"}, want: Video{Src: "https://v.example/1.mp4"}},
		{name: "audio", block: Block{Kind: KindAudio, PrimaryText: "https://a.example/1.mp3"}, want: Audio{Src: "https://a.example/1.mp3"}},
		{name: "link with label", block: Block{Kind: KindLink, PrimaryText: "Docs", LinkURL: "https://example.com"}, want: Link{Label: "Docs", Href: "https://example.com"}},
		{name: "link default label", block: Block{Kind: KindLink, LinkURL: "https://example.com"}, want: Link{Label: DefaultLinkLabel, Href: "https://example.com"}},
		{name: "link without target", block: Block{Kind: KindLink}, want: nil},
		{name: "quote", block: Block{Kind: KindQuote, PrimaryText: "fallback", QuoteText: "quoted"}, want: Quote{Text: "quoted"}},
		{name: "code keeps text verbatim", block: Block{Kind: KindCode, PrimaryText: "  x := 1\n", CodeLanguage: "go"}, want: Code{Language: "go", Text: "  x := 1\n"}},
		{name: "list from items", block: Block{Kind: KindList, ListItems: []string{"a", "b"}}, want: List{Items: []string{"a", "b"}}},
		{name: "list from lines", block: Block{Kind: KindList, PrimaryText: "a\n\n b \n"}, want: List{Items: []string{"a", "b"}}},
		{name: "empty list", block: Block{Kind: KindList, PrimaryText: "\n\n"}, want: nil},
		{name: "table", block: Block{Kind: KindTable, TableData: [][]string{{"h1", "h2"}}}, want: Table{Rows: [][]string{{"h1", "h2"}}}},
		{name: "empty table", block: Block{Kind: KindTable, PrimaryText: "ignored"}, want: nil},
		{name: "embed markup wins", block: Block{Kind: KindEmbed, EmbedCode: "<b>x</b>", EmbedURL: "https://e.example"}, want: EmbedMarkup{Markup: "<b>x</b>"}},
		{name: "embed frame", block: Block{Kind: KindEmbed, PrimaryText: "https://e.example"}, want: EmbedFrame{Src: "https://e.example"}},
		{name: "unknown kind", block: Block{Kind: "carousel", PrimaryText: "x"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.block))
			assert.Equal(t, tt.want != nil, HasContent(tt.block))
		})
	}
}

func TestRenderPreservesOrderAndSkipsEmpty(t *testing.T) {
	nodes := Render([]Block{
		TextBlock("See (docs)[https://example.com/docs] for more"),
		{Kind: KindImage},
		{Kind: KindQuote, QuoteText: "done"},
	})

	require.Len(t, nodes, 2)
	assert.Equal(t, Paragraph{Spans: []Span{
		{Text: "See "},
		{Text: "docs", Href: "https://example.com/docs"},
		{Text: " for more"},
	}}, nodes[0])
	assert.Equal(t, Quote{Text: "done"}, nodes[1])
}

func TestUnitsJSON(t *testing.T) {
	data, err := json.Marshal(Units([]Node{Code{Language: "go", Text: "x"}, EmbedMarkup{Markup: "<i>y</i>"}}))
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"kind":"code","data":{"language":"go","text":"x"}},
		{"kind":"embed","data":{"markup":"<i>y</i>"}}
	]`, string(data))
}

func TestHTML(t *testing.T) {
	out, err := HTML([]Node{
		Paragraph{Spans: []Span{{Text: "<b>hi</b> "}, {Text: "docs", Href: "https://example.com/docs"}}},
		Link{Label: "bad", Href: "javascript:alert(1)"},
		Code{Language: "go", Text: "a < b"},
		EmbedMarkup{Markup: "<div id=\"player\"></div>"},
	})
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "&lt;b&gt;hi&lt;/b&gt; ")
	assert.Contains(t, html, `<a href="https://example.com/docs"`)
	assert.NotContains(t, html, "javascript:")
	assert.Contains(t, html, `<code data-language="go">a &lt; b</code>`)
	assert.Contains(t, html, `<div id="player"></div>`)
}
