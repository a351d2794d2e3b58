// Package badger implements an embedded vector store on BadgerDB.
//
// Chunks are kept under chunk/<collection>/<id> with content-derived ids
// and scored by a cosine scan over the whole collection. Opener shares one
// database per path across collections; the path "memory" selects an
// in-memory database, which the tests use throughout.
package badger
