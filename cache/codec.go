package cache

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
)

// EncodeResult serializes a tool result in its MCP wire shape.
func EncodeResult(result *mcp.CallToolResult) ([]byte, error) {
	if result == nil {
		return nil, ErrNilResult
	}
	return json.Marshal(result)
}

// DecodeResult parses an entry back into a tool result. Anything that is not
// UTF-8 JSON in the tool result shape is ErrMalformedEntry: content must be an
// array of typed blocks, text blocks must carry a string text, isError must
// be a boolean and structuredContent an object.
func DecodeResult(data []byte) (*mcp.CallToolResult, error) {
	// encoding/json would silently replace invalid bytes with U+FFFD
	if !utf8.Valid(data) {
		return nil, ErrMalformedEntry
	}
	var shape struct {
		Content           []map[string]json.RawMessage `json:"content"`
		IsError           *bool                        `json:"isError"`
		StructuredContent json.RawMessage              `json:"structuredContent"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, ErrMalformedEntry
	}
	if shape.Content == nil || !validStructured(shape.StructuredContent) {
		return nil, ErrMalformedEntry
	}
	for _, block := range shape.Content {
		if !validBlock(block) {
			return nil, ErrMalformedEntry
		}
	}

	var result mcp.CallToolResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, ErrMalformedEntry
	}
	return &result, nil
}

func validStructured(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null")) || raw[0] == '{'
}

func validBlock(block map[string]json.RawMessage) bool {
	if block == nil {
		return false
	}
	var typ string
	if err := json.Unmarshal(block["type"], &typ); err != nil {
		return false
	}
	if typ != "text" {
		return true
	}
	var text *string
	if err := json.Unmarshal(block["text"], &text); err != nil || text == nil {
		return false
	}
	return true
}
