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


package mock

import (
	"sync/atomic"

	"github.com/poiesic/folio/ai"
)

// MockProvider is a test double for ai.AIProvider that records Close.
type MockProvider struct {
	embedder *MockEmbedder
	closed   atomic.Int32
}

// NewMockProvider returns a provider backed by a default MockEmbedder.
// Assert on it through GetMockEmbedder.
func NewMockProvider() ai.AIProvider {
	return NewMockProviderWithEmbedder(NewMockEmbedder())
}

// NewMockProviderWithEmbedder wraps a preconfigured embedder.
func NewMockProviderWithEmbedder(embedder *MockEmbedder) ai.AIProvider {
	return &MockProvider{embedder: embedder}
}

func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *MockProvider) Close() error {
	p.closed.Add(1)
	return nil
}

// GetMockEmbedder returns the concrete embedder.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// CloseCount reports how often Close was called.
func (p *MockProvider) CloseCount() int {
	return int(p.closed.Load())
}
