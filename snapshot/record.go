package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Record is the content of a response file. Only Response is meant to be compared; Query is
// there to make the files easier to read.
//
// Response holds a decoded JSON document made of nil, bool, string, json.Number, []any and
// map[string]any, as returned by ParseResponse. Numbers keep their exact text and objects are
// written with sorted keys, so the same response always gives the same file.
type Record struct {
	Query    string `json:"query"`
	Response any    `json:"response"`
}

// ParseResponse decodes a JSON document without losing the precision of its numbers. An empty
// or blank document is null.
func ParseResponse(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the JSON document")
	}
	return v, nil
}

// MarshalIndented returns the record as JSON with two-space indentation.
func (r Record) MarshalIndented() ([]byte, error) {
	return MarshalIndented(r)
}

// MarshalIndented writes a value the way response files are written: two-space indentation,
// object keys in sorted order, and no escaping of HTML characters.
func MarshalIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ReadRecord reads a response file.
func ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var r Record
	if err := dec.Decode(&r); err != nil {
		return Record{}, fmt.Errorf("malformed response file %s: %w", path, err)
	}
	return r, nil
}
