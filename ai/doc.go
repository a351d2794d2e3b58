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


// Package ai provides abstractions for the AI services used by folio.
//
// The only service folio needs is text embedding. Embedder is the narrow
// interface the rest of the module depends on; AsLangchain adapts any
// Embedder to the langchaingo embeddings.Embedder interface so vector
// stores built on langchaingo can use it directly.
//
// # Implementations
//
//   - openai: OpenAI-compatible embedding endpoints (OpenAI, Ollama, vLLM)
//   - mock: deterministic vectors for tests
//
// # Configuration
//
//	cfg := ai.NewConfig(
//	    ai.WithEmbeddingHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithEmbeddingModel("nomic-embed-text"),
//	)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package ai
