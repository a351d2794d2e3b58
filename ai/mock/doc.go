// Package mock provides test doubles for the ai interfaces.
//
// MockEmbedder returns deterministic unit vectors derived from an FNV hash
// of the input, so identical texts always embed identically and a query
// equal to a stored chunk scores 1.0 against it.
//
//	e := mock.NewMockEmbedder()
//	v, _ := e.EmbedText(ctx, "hello")
//
// Behavior can be replaced per test through EmbedTextFunc and EmbedTextsFunc,
// and CallCount reports how often the embedder was used.
package mock
