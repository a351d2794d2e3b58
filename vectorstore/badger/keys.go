package badger

import "net/url"

// Key layout:
//
//	collection/<name>            marker written on first insert
//	chunk/<collection>/<chunkID> serialized chunk record
//
// The collection segment is path-escaped, so a name holding "/" can never
// share a prefix with another collection.
const (
	collectionPrefix = "collection/"
	chunkPrefix      = "chunk/"
)

func makeCollectionKey(collection string) []byte {
	return []byte(collectionPrefix + url.PathEscape(collection))
}

// makeChunkPrefix returns the prefix shared by every chunk of collection.
// The trailing separator keeps "index" from matching "index2".
func makeChunkPrefix(collection string) []byte {
	return []byte(chunkPrefix + url.PathEscape(collection) + "/")
}

func makeChunkKey(collection, id string) []byte {
	return append(makeChunkPrefix(collection), id...)
}
