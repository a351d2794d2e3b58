// Package folio indexes documents for retrieval-augmented generation.
//
// Open builds a Library from a config.Config. Files are parsed by a format
// provider chosen from their extension, split into chunks, embedded and
// stored in a vector store; a PDF preview of each document can be kept in
// a file store. Search returns the chunks most similar to a query,
// restricted to a bucket and optionally to a set of documents.
package folio
