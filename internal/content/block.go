// Package content models the rich content blocks that make up a blog post body:
// the stored block shape, its normalization, write-time validation and rendering.
package content

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Kind is the discriminant of a content block.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindLink  Kind = "link"
	KindQuote Kind = "quote"
	KindCode  Kind = "code"
	KindList  Kind = "list"
	KindTable Kind = "table"
	KindEmbed Kind = "embed"
)

// Kinds lists every supported block kind in editor order.
var Kinds = []Kind{
	KindText, KindImage, KindVideo, KindAudio, KindLink,
	KindQuote, KindCode, KindList, KindTable, KindEmbed,
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Block is one unit of rich content as stored and exchanged over the API.
// Which optional fields matter is decided by Kind; see Resolve.
type Block struct {
	Kind         Kind       `json:"type"`
	PrimaryText  string     `json:"content"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	VideoURL     string     `json:"videoUrl,omitempty"`
	AudioURL     string     `json:"audioUrl,omitempty"`
	LinkURL      string     `json:"linkUrl,omitempty"`
	QuoteText    string     `json:"quoteText,omitempty"`
	CodeLanguage string     `json:"codeLanguage,omitempty"`
	ListItems    []string   `json:"listItems,omitempty"`
	TableData    [][]string `json:"tableData,omitempty"`
	EmbedCode    string     `json:"embedCode,omitempty"`
	EmbedURL     string     `json:"embedUrl,omitempty"`
}

// TextBlock returns a text block carrying s.
func TextBlock(s string) Block {
	return Block{Kind: KindText, PrimaryText: s}
}

// UnmarshalJSON accepts the legacy plain-string form as a text block.
func (b *Block) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = TextBlock(s)
		return nil
	}

	type plain Block
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Block(p)
	return nil
}

// Blocks is the ordered body of a post. It is stored as a JSON column and is
// normalized whenever it is read back, so legacy rows never fail to load.
type Blocks []Block

// Scan implements sql.Scanner.
func (bs *Blocks) Scan(value any) error {
	if value == nil {
		*bs = Normalize(nil)
		return nil
	}
	var raw datatypes.JSON
	if err := raw.Scan(value); err != nil {
		return err
	}
	*bs = Normalize(json.RawMessage(raw))
	return nil
}

// Value implements driver.Valuer.
func (bs Blocks) Value() (driver.Value, error) {
	if bs == nil {
		bs = Blocks{}
	}
	data, err := json.Marshal([]Block(bs))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data).Value()
}

// GormDataType reports the generic column type to gorm.
func (Blocks) GormDataType() string {
	return datatypes.JSON{}.GormDataType()
}

// GormDBDataType picks the dialect specific JSON column type.
func (Blocks) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return datatypes.JSON{}.GormDBDataType(db, field)
}
