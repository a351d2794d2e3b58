// Package mcp exposes document search as a Model Context Protocol tool.
//
// The server registers a single tool, get_data_all_files, which searches
// the chunks of one bucket and can be narrowed to a list of documents.
// It runs over stdio for local assistants or over streamable HTTP.
package mcp

import "errors"

var (
	// ErrSearcherRequired is returned when no searcher is provided.
	ErrSearcherRequired = errors.New("mcp: searcher is required")

	// ErrBucketRequired is returned when a tool call names no bucket.
	ErrBucketRequired = errors.New("mcp: bucket is required")
)
