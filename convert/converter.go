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


package convert

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
)

// Converter bundles the conversion paths used by format providers.
// It is safe for concurrent use; every call works on its own files.
type Converter struct {
	office   *OfficeConverter
	renderer *Renderer
	document DocumentConverter
	logger   *slog.Logger
}

// settings collects option values. New applies them once every option has
// run, so the order options are given in does not matter.
type settings struct {
	runner    Runner
	soffice   string
	timeout   time.Duration
	codeStyle string
	document  DocumentConverter
	logger    *slog.Logger
}

// Option is a functional option for configuring a Converter.
type Option func(*settings) error

// WithRunner sets the command runner for every external converter: the
// office suite and, when installed, pandoc.
func WithRunner(runner Runner) Option {
	return func(s *settings) error {
		if runner == nil {
			return ErrRunnerRequired
		}
		s.runner = runner
		return nil
	}
}

// WithSofficeBinary sets the office suite binary.
func WithSofficeBinary(binary string) Option {
	return func(s *settings) error {
		s.soffice = binary
		return nil
	}
}

// WithTimeout bounds every external conversion.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) error {
		s.timeout = d
		return nil
	}
}

// WithDocumentConverter replaces the in-process document converter,
// e.g. with a PandocConverter.
func WithDocumentConverter(dc DocumentConverter) Option {
	return func(s *settings) error {
		if dc == nil {
			return ErrDocumentConverterRequired
		}
		s.document = dc
		return nil
	}
}

// WithCodeStyle selects the syntax highlighting style for code blocks.
func WithCodeStyle(name string) Option {
	return func(s *settings) error {
		s.codeStyle = name
		return nil
	}
}

// WithLogger sets the logger for conversion events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

// New creates a Converter. Without options it renders text in-process
// and shells out only for office documents.
func New(opts ...Option) (*Converter, error) {
	var s settings
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return nil, err
		}
	}

	renderer := NewRenderer(s.codeStyle)
	office := NewOfficeConverter(s.soffice, s.runner)
	office.Timeout = s.timeout

	document := s.document
	switch dc := document.(type) {
	case nil:
		document = &RendererConverter{Renderer: renderer}
	case *RendererConverter:
		if s.codeStyle != "" {
			dc.Renderer = renderer
		}
	case *PandocConverter:
		if s.runner != nil {
			dc.Runner = s.runner
		}
		if s.timeout != 0 {
			dc.Timeout = s.timeout
		}
	}

	logger := s.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		office:   office,
		renderer: renderer,
		document: document,
		logger:   logger.With("component", "converter"),
	}, nil
}

// OfficeToPDF converts an office document through the external office suite.
func (c *Converter) OfficeToPDF(ctx context.Context, f *source.SourceFile) (*source.SourceFile, error) {
	return c.office.ToPDF(ctx, f)
}

// TextToPDF renders the contents of f as PDF. With a language hint the
// text is shown verbatim in a highlighted code block; without one it is
// rendered as markdown.
func (c *Converter) TextToPDF(ctx context.Context, f *source.SourceFile, languageHint string) (*source.SourceFile, error) {
	buf, err := f.Buffer()
	if err != nil {
		return nil, err
	}
	if languageHint != "" {
		buf = []byte(Fence(languageHint, string(buf)))
	}
	return c.MarkdownToPDF(ctx, f.ID, f.FileName, buf)
}

// MarkdownToPDF renders markdown into a new PDF SourceFile carrying id and fileName.
func (c *Converter) MarkdownToPDF(_ context.Context, id, fileName string, markdown []byte) (*source.SourceFile, error) {
	var out bytes.Buffer
	if err := c.renderer.RenderMarkdown(markdown, &out); err != nil {
		return nil, &core.ConversionError{DocumentID: id, Err: err}
	}

	path, err := source.NewFilePath(uuid.NewString(), "pdf")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, out.Bytes(), 0o600); err != nil {
		return nil, err
	}
	return &source.SourceFile{ID: id, Path: path, MimeType: source.MimePDF, FileName: fileName}, nil
}

// PlainToPDF writes text to a scoped temporary file and runs it through the
// document converter. The temporary input is gone when PlainToPDF returns.
func (c *Converter) PlainToPDF(ctx context.Context, text, id, fileName string) (*source.SourceFile, error) {
	out, err := source.NewFilePath(uuid.NewString(), "pdf")
	if err != nil {
		return nil, err
	}

	err = source.WithTempFile([]byte(text), func(in *source.SourceFile) error {
		in.ID = id
		return c.document.Convert(ctx, in, FormatPlain, out)
	}, source.WithExt("txt"), source.WithMimeType("text/plain"))
	if err != nil {
		c.logger.Error("plain text conversion failed", "doc_id", id, "err", err)
		return nil, err
	}

	return &source.SourceFile{ID: id, Path: out, MimeType: source.MimePDF, FileName: fileName}, nil
}
