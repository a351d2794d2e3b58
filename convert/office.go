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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
)

// DefaultSofficeBinary is the headless office suite used for conversion.
const DefaultSofficeBinary = "soffice"

// OfficeConverter turns office documents into PDF by running a headless
// office suite as a subprocess.
type OfficeConverter struct {
	Binary  string
	Timeout time.Duration
	Runner  Runner
	logger  *slog.Logger
}

// NewOfficeConverter returns a converter for the given binary.
// An empty binary selects DefaultSofficeBinary; a nil runner selects ExecRunner.
func NewOfficeConverter(binary string, runner Runner) *OfficeConverter {
	if binary == "" {
		binary = DefaultSofficeBinary
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &OfficeConverter{
		Binary: binary,
		Runner: runner,
		logger: slog.Default().With("component", "office-converter"),
	}
}

// OutputPath computes where the converter writes its result for input path
// within outDir: the input's base name with a .pdf suffix.
func OutputPath(outDir, inputPath string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, base+".pdf")
}

// ToPDF converts f and returns a new caller-owned PDF SourceFile with the
// same ID and file name. Each call gets its own output directory, which is
// removed together with the returned file.
func (o *OfficeConverter) ToPDF(ctx context.Context, f *source.SourceFile) (*source.SourceFile, error) {
	outDir, err := os.MkdirTemp(source.TempRoot(), "office-*")
	if err != nil {
		return nil, err
	}
	// Concurrent instances must not share a user profile.
	profileDir, err := os.MkdirTemp(source.TempRoot(), "office-profile-*")
	if err != nil {
		os.RemoveAll(outDir)
		return nil, err
	}
	defer os.RemoveAll(profileDir)

	cmd := Command{
		Name: o.Binary,
		Args: []string{
			"-env:UserInstallation=file://" + filepath.ToSlash(profileDir),
			"--headless",
			"--convert-to", "pdf",
			"--outdir", outDir,
			f.Path,
		},
		Dir:     outDir,
		Timeout: o.Timeout,
	}

	o.logger.Debug("converting office document", "doc_id", f.ID, "file_name", f.FileName)
	res, err := o.Runner.Run(ctx, cmd)
	if err != nil {
		os.RemoveAll(outDir)
		return nil, &core.ConversionError{DocumentID: f.ID, Command: o.Binary, ExitCode: -1, Err: err}
	}
	if res.ExitCode != 0 {
		os.RemoveAll(outDir)
		o.logger.Error("office conversion failed", "doc_id", f.ID, "exit_code", res.ExitCode, "output", res.Output())
		return nil, &core.ConversionError{
			DocumentID: f.ID,
			Command:    o.Binary,
			ExitCode:   res.ExitCode,
			Output:     res.Output(),
		}
	}

	out := OutputPath(outDir, f.Path)
	if _, err := os.Stat(out); err != nil {
		os.RemoveAll(outDir)
		return nil, &core.ConversionError{
			DocumentID: f.ID,
			Command:    o.Binary,
			Output:     res.Output(),
			Err:        fmt.Errorf("expected output %s: %w", out, err),
		}
	}

	return &source.SourceFile{
		ID:        f.ID,
		Path:      out,
		MimeType:  source.MimePDF,
		FileName:  f.FileName,
		DeleteDir: true,
	}, nil
}
