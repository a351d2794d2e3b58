// Package filestore persists the PDF preview of each ingested document.
//
// Three backends share the Store interface: a local directory, an
// S3-compatible bucket and a Postgres placeholder that is not implemented
// yet. New picks one from configuration and returns nil when no file
// store is configured, which callers treat as the feature being off.
//
// GetDocument always returns a fresh copy under the temp root; the caller
// deletes it when done.
package filestore
