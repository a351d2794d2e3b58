package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/search"
)

// SearchFilesInput is the input schema for get_data_all_files.
type SearchFilesInput struct {
	QueryOrKeyword string `json:"query_or_keyword" jsonschema:"relevant keywords or phrases from the input query"`
	Bucket         string `json:"bucket" jsonschema:"the identifier of the bucket to use"`
	BucketIndex    string `json:"bucket_index,omitempty" jsonschema:"index name of the bucket containing the files; empty uses the configured default"`
	BucketFiles    string `json:"bucket_files,omitempty" jsonschema:"comma separated document ids to search; empty searches all files"`
	Take           int    `json:"take,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchFilesOutput is the output schema for get_data_all_files.
type SearchFilesOutput struct {
	Results []FileChunk `json:"results"`
	Count   int         `json:"count"`
}

// FileChunk is one retrieved chunk.
type FileChunk struct {
	DocID    string  `json:"doc_id"`
	FileName string  `json:"file_name"`
	Content  string  `json:"content"`
	Score    float32 `json:"score"`
	Page     int     `json:"page,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "get_data_all_files",
		Description: "Retrieves data from the files of a bucket that match a search query. " +
			"Results can be limited in number and restricted to selected files.",
	}, s.handleSearchFiles)
}

func (s *Server) handleSearchFiles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchFilesInput,
) (*mcp.CallToolResult, SearchFilesOutput, error) {
	if strings.TrimSpace(input.Bucket) == "" {
		return nil, SearchFilesOutput{}, ErrBucketRequired
	}
	take := input.Take
	if take <= 0 {
		take = core.DefaultTake
	}

	results, err := s.searcher.Search(ctx, search.Query{
		Text:      input.QueryOrKeyword,
		Bucket:    input.Bucket,
		IndexName: input.BucketIndex,
		DocIDs:    splitFiles(input.BucketFiles),
		Take:      take,
	})
	if err != nil {
		s.logger.Error("search tool failed", "bucket", input.Bucket, "err", err)
		return nil, SearchFilesOutput{}, err
	}

	output := SearchFilesOutput{
		Results: make([]FileChunk, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		page, _ := r.Metadata[core.MetadataPage].(int)
		output.Results[i] = FileChunk{
			DocID:    r.DocID,
			FileName: r.FileName,
			Content:  r.Content,
			Score:    r.Score,
			Page:     page,
		}
	}

	return nil, output, nil
}

// splitFiles parses a comma separated id list, dropping blanks.
func splitFiles(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
