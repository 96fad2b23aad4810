package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// RawRecord is one ticket object as found in a data document. Keys keeps the
// order the fields appeared in so exports can reproduce it.
type RawRecord struct {
	Keys   []string
	Values map[string]any
}

func NewRawRecord() RawRecord {
	return RawRecord{Values: map[string]any{}}
}

func (r *RawRecord) Set(key string, value any) {
	if r.Values == nil {
		r.Values = map[string]any{}
	}
	if _, ok := r.Values[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Values[key] = value
}

func (r RawRecord) Get(key string) (any, bool) {
	v, ok := r.Values[key]
	return v, ok
}

func (r RawRecord) Has(key string) bool {
	_, ok := r.Values[key]
	return ok
}

func (r RawRecord) SourceName() string {
	s, _ := r.Values[FieldSourceName].(string)
	return s
}

func (r RawRecord) CompanionID() string {
	s, _ := r.Values[FieldCompanionID].(string)
	return s
}

func (r RawRecord) Clone() RawRecord {
	out := RawRecord{Keys: append([]string(nil), r.Keys...), Values: make(map[string]any, len(r.Values))}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

func (r RawRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var ErrNotObject = errors.New("not a JSON object")

func (r *RawRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	rec, err := DecodeRawRecord(dec)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// DecodeRawRecord reads one object from dec, keeping top-level key order.
// Nested values decode to plain maps and slices.
func DecodeRawRecord(dec *json.Decoder) (RawRecord, error) {
	tok, err := dec.Token()
	if err != nil {
		return RawRecord{}, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return RawRecord{}, ErrNotObject
	}

	rec := NewRawRecord()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return RawRecord{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return RawRecord{}, fmt.Errorf("unexpected key token %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return RawRecord{}, err
		}
		rec.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return RawRecord{}, err
	}
	return rec, nil
}
