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


package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/folio"
	"github.com/poiesic/folio/config"
	"github.com/poiesic/folio/ingestion"
	"github.com/poiesic/folio/mcp"
	"github.com/poiesic/folio/search"
	"github.com/poiesic/folio/source"
)

// libraryOptions are passed to every folio.Open call made by commands.
var libraryOptions []folio.Option

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "folio",
		Usage: "Index documents and search them for retrieval-augmented generation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"FOLIO_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Dotenv file read before the environment",
				Value: ".env",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Index one or more files into a bucket",
				ArgsUsage: "FILE...",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "bucket",
						Aliases:  []string{"b"},
						Usage:    "Bucket the documents belong to",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "index",
						Usage: "Collection to index into (defaults to the configured collection)",
					},
					&cli.StringFlag{
						Name:  "id",
						Usage: "Document id to use; only valid with a single file",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in characters (defaults per format)",
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Chunk overlap in characters (defaults per format)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report batch progress every N documents",
						Value: 1,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search a bucket for chunks similar to a query",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "bucket",
						Aliases: []string{"b"},
						Usage:   "Bucket to search",
					},
					&cli.StringFlag{
						Name:  "index",
						Usage: "Collection to search (defaults to the configured collection)",
					},
					&cli.StringSliceFlag{
						Name:  "doc",
						Usage: "Restrict results to these document ids",
					},
					&cli.IntFlag{
						Name:  "take",
						Usage: "Maximum number of results",
						Value: 5,
					},
				},
			},
			{
				Name:      "preview",
				Usage:     "Write the stored PDF preview of a document",
				ArgsUsage: "DOC_ID",
				Action:    previewCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, or - for stdout (defaults to DOC_ID.pdf)",
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Remove a document from the index and the file store",
				ArgsUsage: "DOC_ID",
				Action:    deleteCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "bucket",
						Aliases: []string{"b"},
						Usage:   "Bucket the document belongs to",
					},
					&cli.StringFlag{
						Name:  "index",
						Usage: "Collection holding the document",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the search tool over the Model Context Protocol",
				Action: mcpCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "http",
						Usage: "Listen address for streamable HTTP; stdio is used when empty",
					},
					&cli.StringFlag{
						Name:  "path",
						Usage: "HTTP path of the MCP endpoint",
						Value: "/mcp",
					},
				},
			},
		},
	}
}

// openLibrary loads configuration from the global flags and the environment.
func openLibrary(c *cli.Context, extra ...folio.Option) (*folio.Library, error) {
	cfg, err := config.Load(c.String("config"), config.WithDotEnv(c.String("env-file")))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	opts := append(append([]folio.Option(nil), libraryOptions...), extra...)
	lib, err := folio.Open(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	return lib, nil
}

func ingestCommand(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return errors.New("at least one file is required")
	}
	if c.IsSet("id") && len(paths) > 1 {
		return errors.New("--id can only be used with a single file")
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return err
		}
	}

	var extra []folio.Option
	if len(paths) > 1 {
		extra = append(extra, folio.WithProgress(c.App.ErrWriter, c.Int("report-interval")))
	}
	lib, err := openLibrary(c, extra...)
	if err != nil {
		return err
	}
	defer lib.Close()

	var chunkSize, chunkOverlap *int
	if c.IsSet("chunk-size") {
		v := c.Int("chunk-size")
		chunkSize = &v
	}
	if c.IsSet("chunk-overlap") {
		v := c.Int("chunk-overlap")
		chunkOverlap = &v
	}

	jobs := make([]ingestion.Job, len(paths))
	for i, p := range paths {
		var opts []source.Option
		if id := c.String("id"); id != "" {
			opts = append(opts, source.WithID(id))
		}
		jobs[i] = ingestion.Job{
			File:         source.New(p, mime.TypeByExtension(filepath.Ext(p)), filepath.Base(p), opts...),
			Bucket:       c.String("bucket"),
			IndexName:    c.String("index"),
			ChunkSize:    chunkSize,
			ChunkOverlap: chunkOverlap,
		}
	}

	ctx := c.Context
	if len(jobs) == 1 {
		j := jobs[0]
		res, err := lib.Ingest(ctx, j.File, j.Bucket, j.IndexName, j.Options()...)
		if err != nil {
			return fmt.Errorf("ingesting %s failed: %w", j.File.FileName, err)
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%d chunks\n", res.DocID, j.File.FileName, res.Chunks)
		return nil
	}

	res := lib.IngestBatch(ctx, jobs)
	for _, j := range jobs {
		if err, failed := res.Errors[j.File.ID]; failed {
			fmt.Fprintf(c.App.ErrWriter, "%s\t%s\tfailed: %v\n", j.File.ID, j.File.FileName, err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", j.File.ID, j.File.FileName)
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", res.Failed, len(jobs))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("a query is required")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	results, err := lib.Search(c.Context, search.Query{
		Text:      query,
		Bucket:    c.String("bucket"),
		IndexName: c.String("index"),
		DocIDs:    c.StringSlice("doc"),
		Take:      c.Int("take"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "No results.")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(c.App.Writer, "%d. [%.3f] %s (%s)\n%s\n\n", i+1, r.Score, r.FileName, r.DocID, r.Content)
	}
	return nil
}

func previewCommand(c *cli.Context) error {
	docID := c.Args().First()
	if docID == "" {
		return errors.New("a document id is required")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	pdf, err := lib.PreviewPDF(c.Context, docID)
	if err != nil {
		return fmt.Errorf("preview of %s failed: %w", docID, err)
	}

	out := c.String("output")
	switch out {
	case "-":
		_, err = c.App.Writer.Write(pdf)
		return err
	case "":
		out = docID + ".pdf"
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(c.App.ErrWriter, out)
	return nil
}

func deleteCommand(c *cli.Context) error {
	docID := c.Args().First()
	if docID == "" {
		return errors.New("a document id is required")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.Delete(c.Context, docID, c.String("bucket"), c.String("index")); err != nil {
		return fmt.Errorf("delete of %s failed: %w", docID, err)
	}
	return nil
}

func mcpCommand(c *cli.Context) error {
	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	server, err := mcp.NewServer(lib.Searcher())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	if addr := c.String("http"); addr != "" {
		return server.RunHTTP(ctx, addr, c.String("path"))
	}
	return server.Run(ctx)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// stdout carries command output and the MCP stdio stream.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
