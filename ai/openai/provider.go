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


package openai

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/folio/ai"
)

// Provider serves embeddings from one OpenAI-compatible endpoint.
type Provider struct {
	host     string
	model    string
	embedder *Embedder
	logger   *slog.Logger
}

// NewProvider validates config, which also normalizes the host, and
// connects an embedder to it.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, fmt.Errorf("openai provider: %w", err)
	}

	p := &Provider{
		host:     config.EmbeddingHost,
		model:    config.EmbeddingModel,
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-provider"),
	}
	p.logger.Debug("provider ready", "host", p.host, "model", p.model, "batch_size", config.BatchSize)
	return p, nil
}

// Embedder returns the embedder bound to the configured model.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Host returns the normalized base URL requests are sent to.
func (p *Provider) Host() string {
	return p.host
}

// Model returns the embedding model identifier.
func (p *Provider) Model() string {
	return p.model
}

// Close is a no-op; the HTTP client holds no per-provider resources.
func (p *Provider) Close() error {
	p.logger.Debug("provider closed", "model", p.model)
	return nil
}
