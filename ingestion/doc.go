// Package ingestion turns source files into indexed chunks.
//
// The Pipeline type drives a document through its format provider, tags
// every chunk with the owning document, replaces the document's previous
// chunks in the vector store and, when a file store is configured, persists
// a PDF preview. IngestBatch fans documents out over a worker pool; a
// failing document is logged and counted without stopping the others.
package ingestion
