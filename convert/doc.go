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


// Package convert produces PDF previews of source documents.
//
// # Conversion Paths
//
// Three paths exist, all reachable from a single Converter:
//
//   - Office documents are handed to a headless office suite running as a
//     subprocess (OfficeConverter). A non-zero exit is reported as a
//     core.ConversionError carrying the document ID.
//   - Markdown and source text are laid out in-process by Renderer, which
//     parses markdown with goldmark and draws pages with fpdf. Code blocks
//     are syntax highlighted with chroma.
//   - Plain text extracted from other formats (e.g. email) is written to a
//     scoped temporary file and passed through a DocumentConverter, either
//     the in-process RendererConverter or PandocConverter.
//
// # External Commands
//
// Subprocesses are described by Command and executed by a Runner, so tests
// and alternative converters can replace the process boundary without
// changing callers. Runners do not bound execution time unless
// Command.Timeout is set; callers that need a deadline pass one via
// WithTimeout or the context.
//
// # Ownership
//
// Converters never modify or delete their input. Every returned SourceFile
// is new and owned by the caller, and every intermediate temporary file is
// removed before the call returns.
package convert
