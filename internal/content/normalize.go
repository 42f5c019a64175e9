package content

import "encoding/json"

// Normalize coerces an arbitrary JSON value into a well-formed, non-empty
// sequence of blocks. It never fails:
//   - null, empty or non-array input yields a single empty text block
//   - string entries become text blocks
//   - objects with a known kind and a "content" key pass through unchanged
//   - anything else becomes an empty text block
func Normalize(raw json.RawMessage) Blocks {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return Blocks{TextBlock("")}
	}

	out := make(Blocks, 0, len(items))
	for _, item := range items {
		b, ok := normalizeItem(item)
		if !ok {
			b = TextBlock("")
		}
		out = append(out, b)
	}
	return out
}

func normalizeItem(item json.RawMessage) (Block, bool) {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return TextBlock(s), true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return Block{}, false
	}
	if _, ok := fields["content"]; !ok {
		return Block{}, false
	}

	var b Block
	if err := json.Unmarshal(item, &b); err != nil || !b.Kind.Valid() {
		return Block{}, false
	}
	return b, true
}
