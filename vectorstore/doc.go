// Package vectorstore stores embedded chunks and answers similarity queries.
//
// Store is the contract every backend satisfies. Two backends exist:
// PGVector on Postgres and the embedded store in vectorstore/badger.
// Connector picks one by URL scheme and owns the underlying connections.
//
// Bindings caches one Store per (url, collection) pair. It is created by
// the caller and passed to whatever needs stores; there is no package
// level state.
//
//	conn, _ := vectorstore.NewConnector(embedder)
//	defer conn.Close()
//	bindings, _ := vectorstore.NewBindings(conn.Open, "index")
//	store, err := bindings.Get(ctx, "badger://memory", "")
package vectorstore
