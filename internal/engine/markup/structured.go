package markup

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/buger/jsonparser"
)

// StructuredData is one parsed JSON-LD object
type StructuredData struct {
	raw []byte
}

// NewStructuredData wraps raw JSON. It returns false unless raw is a valid
// JSON object.
func NewStructuredData(raw []byte) (StructuredData, bool) {
	raw = bytes.TrimSpace(raw)
	if !json.Valid(raw) {
		return StructuredData{}, false
	}
	if _, typ, _, err := jsonparser.Get(raw); err != nil || typ != jsonparser.Object {
		return StructuredData{}, false
	}
	return StructuredData{raw: raw}, true
}

// Raw returns the JSON bytes of the block
func (s StructuredData) Raw() []byte {
	return s.raw
}

// Get returns the value at path and its type. Missing paths report
// jsonparser.NotExist.
func (s StructuredData) Get(keys ...string) ([]byte, jsonparser.ValueType) {
	if len(s.raw) == 0 {
		return nil, jsonparser.NotExist
	}
	value, typ, _, err := jsonparser.Get(s.raw, keys...)
	if err != nil {
		return nil, jsonparser.NotExist
	}
	return value, typ
}

// Has reports whether path exists
func (s StructuredData) Has(keys ...string) bool {
	_, typ := s.Get(keys...)
	return typ != jsonparser.NotExist
}

// Scalar returns a string or number at path as text
func (s StructuredData) Scalar(keys ...string) (string, bool) {
	value, typ := s.Get(keys...)
	switch typ {
	case jsonparser.String:
		str, err := jsonparser.ParseString(value)
		if err != nil {
			return "", false
		}
		str = strings.TrimSpace(str)
		return str, str != ""
	case jsonparser.Number:
		return string(value), true
	}
	return "", false
}

// Object returns the object at path. An array yields its first element.
func (s StructuredData) Object(keys ...string) (StructuredData, bool) {
	value, typ := s.Get(keys...)
	switch typ {
	case jsonparser.Object:
		return StructuredData{raw: value}, true
	case jsonparser.Array:
		first, firstType, _, err := jsonparser.Get(value, "[0]")
		if err == nil && firstType == jsonparser.Object {
			return StructuredData{raw: first}, true
		}
	}
	return StructuredData{}, false
}

// StructuredData returns every JSON-LD block of the page. A one-element
// array is unwrapped to its object; larger arrays and @graph containers
// are flattened. Blocks that fail to parse are skipped.
func (d *Document) StructuredData() []StructuredData {
	if d.IsEmpty() {
		return nil
	}

	var blocks []StructuredData
	d.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := bytes.TrimSpace([]byte(sel.Text()))
		if len(raw) == 0 || !json.Valid(raw) {
			return
		}
		blocks = append(blocks, flatten(raw)...)
	})
	return blocks
}

func flatten(raw []byte) []StructuredData {
	_, typ, _, err := jsonparser.Get(raw)
	if err != nil {
		return nil
	}

	var out []StructuredData
	switch typ {
	case jsonparser.Array:
		jsonparser.ArrayEach(raw, func(value []byte, valueType jsonparser.ValueType, _ int, err error) {
			if err == nil && valueType == jsonparser.Object {
				out = append(out, flatten(value)...)
			}
		})
	case jsonparser.Object:
		graph, graphType, _, err := jsonparser.Get(raw, "@graph")
		if err == nil && graphType == jsonparser.Array {
			out = append(out, flatten(graph)...)
			break
		}
		out = append(out, StructuredData{raw: raw})
	}
	return out
}
