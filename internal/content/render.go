package content

import (
	"html/template"
	"strings"
)

// Node is one display unit produced from a block. The set of implementations
// is closed: every block resolves to exactly one of them or to nothing.
type Node interface {
	// DisplayKind names the variant; it doubles as the HTML template name.
	DisplayKind() string
}

type Paragraph struct {
	Spans []Span `json:"spans"`
}

type Image struct {
	Src string `json:"src"`
}

type Video struct {
	Src string `json:"src"`
}

type Audio struct {
	Src string `json:"src"`
}

type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type Quote struct {
	Text string `json:"text"`
}

type Code struct {
	Language string `json:"language,omitempty"`
	Text     string `json:"text"`
}

type List struct {
	Items []string `json:"items"`
}

type Table struct {
	Rows [][]string `json:"rows"`
}

// EmbedMarkup carries trusted raw markup written by an authenticated editor.
type EmbedMarkup struct {
	Markup template.HTML `json:"markup"`
}

type EmbedFrame struct {
	Src string `json:"src"`
}

func (Paragraph) DisplayKind() string   { return "paragraph" }
func (Image) DisplayKind() string       { return "image" }
func (Video) DisplayKind() string       { return "video" }
func (Audio) DisplayKind() string       { return "audio" }
func (Link) DisplayKind() string        { return "link" }
func (Quote) DisplayKind() string       { return "quote" }
func (Code) DisplayKind() string        { return "code" }
func (List) DisplayKind() string        { return "list" }
func (Table) DisplayKind() string       { return "table" }
func (EmbedMarkup) DisplayKind() string { return "embed" }
func (EmbedFrame) DisplayKind() string  { return "frame" }

// DefaultLinkLabel is shown for link blocks without a label.
const DefaultLinkLabel = "Link"

// Resolve maps a block to its display variant. The kind-specific field wins
// over PrimaryText; nil means the block has nothing to show.
func Resolve(b Block) Node {
	switch b.Kind {
	case KindText:
		if isBlank(b.PrimaryText) {
			return nil
		}
		return Paragraph{Spans: ParseInlineLinks(b.PrimaryText)}
	case KindImage:
		if src := firstNonBlank(b.ImageURL, b.PrimaryText); src != "" {
			return Image{Src: src}
		}
	case KindVideo:
		if src := firstNonBlank(b.VideoURL, b.PrimaryText); src != "" {
			return Video{Src: src}
		}
	case KindAudio:
		if src := firstNonBlank(b.AudioURL, b.PrimaryText); src != "" {
			return Audio{Src: src}
		}
	case KindLink:
		if href := firstNonBlank(b.LinkURL, b.PrimaryText); href != "" {
			label := strings.TrimSpace(b.PrimaryText)
			if label == "" {
				label = DefaultLinkLabel
			}
			return Link{Label: label, Href: href}
		}
	case KindQuote:
		if text := firstNonBlank(b.QuoteText, b.PrimaryText); text != "" {
			return Quote{Text: text}
		}
	case KindCode:
		if !isBlank(b.PrimaryText) {
			return Code{Language: strings.TrimSpace(b.CodeLanguage), Text: b.PrimaryText}
		}
	case KindList:
		items := nonBlank(b.ListItems)
		if len(items) == 0 {
			items = nonBlank(strings.Split(b.PrimaryText, "\n"))
		}
		if len(items) > 0 {
			return List{Items: items}
		}
	case KindTable:
		if rows := nonEmptyRows(b.TableData); len(rows) > 0 {
			return Table{Rows: rows}
		}
	case KindEmbed:
		if !isBlank(b.EmbedCode) {
			return EmbedMarkup{Markup: template.HTML(b.EmbedCode)}
		}
		if src := firstNonBlank(b.EmbedURL, b.PrimaryText); src != "" {
			return EmbedFrame{Src: src}
		}
	}
	return nil
}

// HasContent reports whether the block would display anything.
func HasContent(b Block) bool {
	return Resolve(b) != nil
}

// Render produces display units in block order, skipping empty blocks.
func Render(blocks []Block) []Node {
	nodes := make([]Node, 0, len(blocks))
	for _, b := range blocks {
		if n := Resolve(b); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Unit is the JSON envelope for a rendered node.
type Unit struct {
	Kind string `json:"kind"`
	Data Node   `json:"data"`
}

// Units wraps nodes for JSON output.
func Units(nodes []Node) []Unit {
	out := make([]Unit, len(nodes))
	for i, n := range nodes {
		out[i] = Unit{Kind: n.DisplayKind(), Data: n}
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func nonBlank(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func nonEmptyRows(rows [][]string) [][]string {
	var out [][]string
	for _, row := range rows {
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return out
}
