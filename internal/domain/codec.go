package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// exportIndent is the indentation used for exported quote files.
const exportIndent = "  "

// rawQuote mirrors the stored shape loosely so malformed entries can be
// detected instead of failing the whole batch.
type rawQuote struct {
	ID       json.RawMessage `json:"id"`
	Text     any             `json:"text"`
	Category any             `json:"category"`
}

// DecodeQuotes parses a JSON array of quote objects. Entries that are not
// objects, or lack a string text and category, are dropped. An entry whose id
// is not an integer keeps its text and category but loses the id.
//
// An error is returned only when data is not a JSON array at all; callers
// decide whether that is fatal.
func DecodeQuotes(data []byte) ([]Quote, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding quotes: %w", err)
	}

	quotes := make([]Quote, 0, len(items))
	for _, item := range items {
		if q, ok := decodeQuote(item); ok {
			quotes = append(quotes, q)
		}
	}

	return quotes, nil
}

func decodeQuote(item json.RawMessage) (Quote, bool) {
	var raw rawQuote
	if err := json.Unmarshal(item, &raw); err != nil {
		return Quote{}, false
	}

	text, ok := raw.Text.(string)
	if !ok {
		return Quote{}, false
	}

	category, ok := raw.Category.(string)
	if !ok {
		return Quote{}, false
	}

	q := Quote{Text: strings.TrimSpace(text), Category: strings.TrimSpace(category)}
	if q.Validate() != nil {
		return Quote{}, false
	}

	if len(raw.ID) > 0 && string(raw.ID) != "null" {
		var id int64
		if err := json.Unmarshal(raw.ID, &id); err == nil {
			q.ID = &id
		}
	}

	return q, true
}

// EncodeQuotes serializes quotes compactly for storage.
func EncodeQuotes(quotes []Quote) ([]byte, error) {
	if quotes == nil {
		quotes = []Quote{}
	}

	data, err := json.Marshal(quotes)
	if err != nil {
		return nil, fmt.Errorf("encoding quotes: %w", err)
	}

	return data, nil
}

// ExportQuotes serializes quotes as a pretty-printed JSON array.
func ExportQuotes(quotes []Quote) ([]byte, error) {
	if quotes == nil {
		quotes = []Quote{}
	}

	data, err := json.MarshalIndent(quotes, "", exportIndent)
	if err != nil {
		return nil, fmt.Errorf("exporting quotes: %w", err)
	}

	return data, nil
}
