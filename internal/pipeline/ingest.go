package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"ticketdash/internal"
)

var (
	ErrEmptyDocument    = errors.New("empty document")
	ErrInvalidEncoding  = errors.New("document is not valid UTF-8")
	ErrUnsupportedShape = errors.New("document is neither an object nor an array")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseDocument decodes a data document holding one JSON object or an array
// of objects. Array elements that are not objects are ignored.
func ParseDocument(content []byte) ([]internal.RawRecord, error) {
	if len(content) == 0 {
		return nil, ErrEmptyDocument
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var records []internal.RawRecord
	switch trimmed[0] {
	case '{':
		rec, err := internal.DecodeRawRecord(dec)
		if err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		records = append(records, rec)
	case '[':
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		for dec.More() {
			var elem json.RawMessage
			if err := dec.Decode(&elem); err != nil {
				return nil, fmt.Errorf("invalid json: %w", err)
			}
			elem = bytes.TrimSpace(elem)
			if len(elem) == 0 || elem[0] != '{' {
				continue
			}
			var rec internal.RawRecord
			if err := json.Unmarshal(elem, &rec); err != nil {
				return nil, fmt.Errorf("invalid json: %w", err)
			}
			records = append(records, rec)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	default:
		return nil, ErrUnsupportedShape
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid json: trailing data after document")
	}
	return records, nil
}
