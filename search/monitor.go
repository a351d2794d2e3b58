package search

// SearchMonitor provides hooks to observe a search.
// Implement this interface to trace queries and intermediate results.
type SearchMonitor interface {
	Start(query Query)
	AfterSimilaritySearch(collection string, hits int)
	VerbatimHit(result Result)
	Finish(results []Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ Query)                         {}
func (n *noopMonitor) AfterSimilaritySearch(_ string, _ int) {}
func (n *noopMonitor) VerbatimHit(_ Result)                  {}
func (n *noopMonitor) Finish(_ []Result)                     {}
