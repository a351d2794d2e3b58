package core

import (
	"testing"
)

func TestDecodeMetadata(t *testing.T) {
	meta, err := DecodeMetadata([]byte(`{"page":3,"score":0.5,"doc_id":"d1","tags":[1,2]}`))
	if err != nil {
		t.Fatalf("DecodeMetadata() error = %v", err)
	}
	if got, ok := meta["page"].(int); !ok || got != 3 {
		t.Errorf("page = %#v, want int 3", meta["page"])
	}
	if got, ok := meta["score"].(float64); !ok || got != 0.5 {
		t.Errorf("score = %#v, want float64 0.5", meta["score"])
	}
	if got := MetadataString(meta, "doc_id"); got != "d1" {
		t.Errorf("doc_id = %q, want d1", got)
	}

	for _, in := range []string{"", "null", "  "} {
		meta, err := DecodeMetadata([]byte(in))
		if err != nil || meta == nil || len(meta) != 0 {
			t.Errorf("DecodeMetadata(%q) = %v, %v; want empty map", in, meta, err)
		}
	}

	if _, err := DecodeMetadata([]byte("{")); err == nil {
		t.Error("DecodeMetadata() expected error for malformed input")
	}
}

func TestFilterMatches(t *testing.T) {
	meta := map[string]any{MetadataBucket: "b1", MetadataDocID: "d1"}

	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{"nil filter", nil, true},
		{"empty filter", &Filter{}, true},
		{"bucket match", &Filter{Bucket: "b1"}, true},
		{"bucket mismatch", &Filter{Bucket: "b2"}, false},
		{"doc id match", &Filter{DocIDs: []string{"d0", "d1"}}, true},
		{"doc id mismatch", &Filter{DocIDs: []string{"d2"}}, false},
		{"both match", &Filter{Bucket: "b1", DocIDs: []string{"d1"}}, true},
		{"bucket matches doc id does not", &Filter{Bucket: "b1", DocIDs: []string{"d2"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(meta); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
