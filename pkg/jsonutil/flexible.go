// Package jsonutil converts stored JSON row documents into cell text.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexibleStringValue converts a JSON value to the text Postgres returns for it with
// the #>> operator: strings unquoted, numbers exactly as written, booleans as
// true/false, null as empty. Objects and arrays are returned as compact JSON.
func FlexibleStringValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var strVal string
		if err := json.Unmarshal(trimmed, &strVal); err == nil {
			return strVal
		}
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			return buf.String()
		}
	case 't', 'f':
		var boolVal bool
		if err := json.Unmarshal(trimmed, &boolVal); err == nil {
			return fmt.Sprintf("%t", boolVal)
		}
	default:
		var numVal json.Number
		if err := json.Unmarshal(trimmed, &numVal); err == nil {
			return numVal.String()
		}
	}

	return string(trimmed)
}

// DecodeRow decodes a stored row document into column -> cell text. When path is set,
// the cells live in the nested object it names.
func DecodeRow(data []byte, path []string) (map[string]string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode row document: %w", err)
	}
	for _, key := range path {
		nested, ok := doc[key]
		if !ok {
			return map[string]string{}, nil
		}
		doc = nil
		if err := json.Unmarshal(nested, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode row document at %q: %w", key, err)
		}
	}

	row := make(map[string]string, len(doc))
	for k, v := range doc {
		row[k] = FlexibleStringValue(v)
	}
	return row, nil
}

// EncodeRow encodes cell text as a row document. Empty cells are stored as null.
func EncodeRow(row map[string]string) ([]byte, error) {
	doc := make(map[string]any, len(row))
	for k, v := range row {
		if v == "" {
			doc[k] = nil
			continue
		}
		doc[k] = v
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode row document: %w", err)
	}
	return data, nil
}
