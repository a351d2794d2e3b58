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


// Package search retrieves indexed chunks by similarity to a query.
//
// A Searcher resolves the collection named by the query, narrows the
// vector search to a bucket and optionally to a set of documents, and
// returns the best chunks with their owning document. Chunks that contain
// every meaningful query word are flagged as verbatim hits.
package search
