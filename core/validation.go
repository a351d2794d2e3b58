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


package core

import "fmt"

// ChunkParams holds resolved splitter settings.
type ChunkParams struct {
	Size    int
	Overlap int
}

// ValidateChunkSize resolves a requested chunk size against a provider default.
//
// Validation rules:
//   - nil resolves to def
//   - the resolved size must be > 0
func ValidateChunkSize(size *int, def int) (int, error) {
	v := def
	if size != nil {
		v = *size
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: chunk size must be > 0, got %d", ErrInvalidChunkingParameter, v)
	}
	return v, nil
}

// ValidateChunkOverlap resolves a requested chunk overlap against a provider default.
//
// Validation rules:
//   - nil resolves to def
//   - the resolved overlap must be >= 0
func ValidateChunkOverlap(overlap *int, def int) (int, error) {
	v := def
	if overlap != nil {
		v = *overlap
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: chunk overlap must be >= 0, got %d", ErrInvalidChunkingParameter, v)
	}
	return v, nil
}

// ValidateChunking resolves and validates both splitter settings.
// Once both values are resolved the overlap must be strictly smaller than
// the size; the combination is rejected rather than clamped.
func ValidateChunking(size, overlap *int, defSize, defOverlap int) (ChunkParams, error) {
	s, err := ValidateChunkSize(size, defSize)
	if err != nil {
		return ChunkParams{}, err
	}
	o, err := ValidateChunkOverlap(overlap, defOverlap)
	if err != nil {
		return ChunkParams{}, err
	}
	if o >= s {
		return ChunkParams{}, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			ErrInvalidChunkingParameter, o, s)
	}
	return ChunkParams{Size: s, Overlap: o}, nil
}
