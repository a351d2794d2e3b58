package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// Metadata keys attached to every indexed chunk.
const (
	MetadataDocID    = "doc_id"
	MetadataBucket   = "bucket"
	MetadataFileName = "file_name"
	MetadataSource   = "source"
	MetadataPage     = "page"
)

// DefaultCollection is the vector-store collection used when neither the
// caller nor the configuration names one.
const DefaultCollection = "index"

// DefaultTake is the number of search results returned when the caller
// does not ask for a specific amount.
const DefaultTake = 5

// Filter narrows a similarity search. Empty fields do not constrain results.
type Filter struct {
	// Bucket restricts results to chunks tagged with this bucket.
	Bucket string

	// DocIDs restricts results to chunks belonging to any of these documents.
	DocIDs []string
}

// IsEmpty reports whether the filter places no constraint on results.
func (f *Filter) IsEmpty() bool {
	return f == nil || (f.Bucket == "" && len(f.DocIDs) == 0)
}

// ChunkID derives a deterministic chunk identifier from the owning document,
// the chunk position and its text using BLAKE2b hashing.
// Re-ingesting identical content yields identical IDs.
func ChunkID(docID string, index int, text string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(docID))
	h.Write([]byte{0, byte(index >> 24), byte(index >> 16), byte(index >> 8), byte(index)})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
