// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"encoding/json"
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/folio/core"
)

// chunkRecord is the stored form of one chunk.
//
// Wire layout: ID, Content and Metadata (JSON text) as length-prefixed
// strings, then the vector length as a varint followed by the components
// as fixed-width float32 values.
type chunkRecord struct {
	ID       string
	Content  string
	Metadata map[string]any
	Vector   []float32
}

func marshalChunk(r chunkRecord) ([]byte, error) {
	meta, err := json.Marshal(r.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata of chunk %s: %v", ErrSerializationFailed, r.ID, err)
	}
	metaText := string(meta)

	size := ord.String.Size(r.ID) +
		ord.String.Size(r.Content) +
		ord.String.Size(metaText) +
		varint.Int.Size(len(r.Vector))
	for _, v := range r.Vector {
		size += raw.Float32.Size(v)
	}

	bs := make([]byte, size)
	n := ord.String.Marshal(r.ID, bs)
	n += ord.String.Marshal(r.Content, bs[n:])
	n += ord.String.Marshal(metaText, bs[n:])
	n += varint.Int.Marshal(len(r.Vector), bs[n:])
	for _, v := range r.Vector {
		n += raw.Float32.Marshal(v, bs[n:])
	}
	return bs[:n], nil
}

func unmarshalChunk(bs []byte) (chunkRecord, error) {
	var (
		r        chunkRecord
		metaText string
		dim      int
		n, m     int
		err      error
	)
	fail := func(field string, err error) (chunkRecord, error) {
		return chunkRecord{}, fmt.Errorf("%w: %s: %v", ErrSerializationFailed, field, err)
	}

	if r.ID, m, err = ord.String.Unmarshal(bs); err != nil {
		return fail("id", err)
	}
	n += m
	if r.Content, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return fail("content", err)
	}
	n += m
	if metaText, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return fail("metadata", err)
	}
	n += m
	if dim, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return fail("vector length", err)
	}
	n += m
	if dim < 0 || dim > (len(bs)-n)/4 {
		return fail("vector length", fmt.Errorf("invalid length %d", dim))
	}

	r.Vector = make([]float32, dim)
	for i := range r.Vector {
		if r.Vector[i], m, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return fail("vector", err)
		}
		n += m
	}

	if r.Metadata, err = core.DecodeMetadata([]byte(metaText)); err != nil {
		return fail("metadata", err)
	}
	return r, nil
}
