package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoContent is returned when no submitted block carries anything to show.
var ErrNoContent = errors.New("no valid content blocks")

// ErrMalformed is returned when submitted content is not a JSON array of blocks.
var ErrMalformed = errors.New("content must be a JSON array of blocks")

// Problem describes one invalid field of a submitted block.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a submission.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Field + ": " + p.Message
	}
	return "invalid content: " + strings.Join(parts, "; ")
}

// Decode parses a client submission. Plain strings are accepted as text blocks;
// kinds are checked later by Prepare.
func Decode(raw string) ([]Block, error) {
	var blocks []Block
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if blocks == nil {
		return nil, ErrMalformed
	}
	return blocks, nil
}

// Prepare readies submitted blocks for persistence. Each block must have a
// known kind; PrimaryText is filled from the kind-specific field when omitted;
// blocks with nothing to show are dropped; URL fields must be absolute.
func Prepare(blocks []Block) (Blocks, error) {
	var problems []Problem
	kept := make(Blocks, 0, len(blocks))

	for i, b := range blocks {
		field := fmt.Sprintf("content[%d]", i)
		if !b.Kind.Valid() {
			problems = append(problems, Problem{Field: field + ".type", Message: fmt.Sprintf("unknown block type %q", b.Kind)})
			continue
		}

		b = fillPrimaryText(tidy(b))
		if !HasContent(b) {
			continue
		}

		for _, f := range urlFields(b) {
			if f.value != "" && !isAbsoluteURL(f.value) {
				problems = append(problems, Problem{Field: field + "." + f.name, Message: "must be an absolute URL"})
			}
		}
		kept = append(kept, b)
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	if len(kept) == 0 {
		return nil, ErrNoContent
	}
	return kept, nil
}

func tidy(b Block) Block {
	b.ImageURL = strings.TrimSpace(b.ImageURL)
	b.VideoURL = strings.TrimSpace(b.VideoURL)
	b.AudioURL = strings.TrimSpace(b.AudioURL)
	b.LinkURL = strings.TrimSpace(b.LinkURL)
	b.EmbedURL = strings.TrimSpace(b.EmbedURL)
	b.CodeLanguage = strings.TrimSpace(b.CodeLanguage)
	b.ListItems = nonBlank(b.ListItems)
	b.TableData = nonEmptyRows(b.TableData)
	return b
}

func fillPrimaryText(b Block) Block {
	if !isBlank(b.PrimaryText) {
		return b
	}
	switch b.Kind {
	case KindImage:
		b.PrimaryText = b.ImageURL
	case KindVideo:
		b.PrimaryText = b.VideoURL
	case KindAudio:
		b.PrimaryText = b.AudioURL
	case KindLink:
		b.PrimaryText = b.LinkURL
	case KindQuote:
		b.PrimaryText = strings.TrimSpace(b.QuoteText)
	case KindList:
		b.PrimaryText = strings.Join(b.ListItems, "\n")
	case KindTable:
		rows := make([]string, len(b.TableData))
		for i, row := range b.TableData {
			rows[i] = strings.Join(row, " | ")
		}
		b.PrimaryText = strings.Join(rows, "\n")
	case KindEmbed:
		b.PrimaryText = b.EmbedURL
		if b.PrimaryText == "" && !isBlank(b.EmbedCode) {
			b.PrimaryText = "Embedded content"
		}
	}
	return b
}

type namedValue struct {
	name  string
	value string
}

func urlFields(b Block) []namedValue {
	return []namedValue{
		{"imageUrl", b.ImageURL},
		{"videoUrl", b.VideoURL},
		{"audioUrl", b.AudioURL},
		{"linkUrl", b.LinkURL},
		{"embedUrl", b.EmbedURL},
	}
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
