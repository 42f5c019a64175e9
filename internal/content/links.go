package content

import "regexp"

// inlineLink matches "(label)[url]". Neither part may contain its own closing
// delimiter, so nested parentheses or brackets end the match early.
var inlineLink = regexp.MustCompile(`\(([^)]+)\)\[([^\]]+)\]`)

// Span is a run of paragraph text; Href is set for link spans.
type Span struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

// ParseInlineLinks splits text into literal and link spans, left to right.
// Text without any link syntax comes back as a single literal span.
func ParseInlineLinks(text string) []Span {
	if text == "" {
		return nil
	}

	matches := inlineLink.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Span{{Text: text}}
	}

	spans := make([]Span, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			spans = append(spans, Span{Text: text[last:m[0]]})
		}
		spans = append(spans, Span{Text: text[m[2]:m[3]], Href: text[m[4]:m[5]]})
		last = m[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Text: text[last:]})
	}
	return spans
}
