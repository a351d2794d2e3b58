package core

import (
	"bytes"
	"encoding/json"
	"slices"
)

// DecodeMetadata parses JSON chunk metadata. Whole numbers at the top level
// decode as int so values such as page numbers survive a store round trip
// with the type they were written with.
func DecodeMetadata(data []byte) (map[string]any, error) {
	meta := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return meta, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&meta); err != nil {
		return nil, err
	}
	for k, v := range meta {
		num, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := num.Int64(); err == nil {
			meta[k] = int(i)
		} else if f, err := num.Float64(); err == nil {
			meta[k] = f
		}
	}
	return meta, nil
}

// MetadataString returns meta[key] when it holds a string.
func MetadataString(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

// Matches reports whether chunk metadata satisfies the filter. A nil or
// empty filter matches everything.
func (f *Filter) Matches(meta map[string]any) bool {
	if f.IsEmpty() {
		return true
	}
	if f.Bucket != "" && MetadataString(meta, MetadataBucket) != f.Bucket {
		return false
	}
	if len(f.DocIDs) == 0 {
		return true
	}
	return slices.Contains(f.DocIDs, MetadataString(meta, MetadataDocID))
}
