package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress is a point-in-time view of a batch.
type Progress struct {
	Done    int
	Failed  int
	Total   int
	Elapsed time.Duration
}

// Percent returns the handled share of the batch, 0 for an empty batch.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total) * 100
}

// Rate returns handled documents per second.
func (p Progress) Rate() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.Done) / p.Elapsed.Seconds()
}

func (p Progress) String() string {
	return fmt.Sprintf("Ingested: %d/%d (%.1f%%), %d failed - %.1f documents/s",
		p.Done, p.Total, p.Percent(), p.Failed, p.Rate())
}

// ProgressTracker rewrites a status line on w as pool workers finish
// documents. Done is safe for concurrent use.
type ProgressTracker struct {
	mu       sync.Mutex
	w        io.Writer
	every    int
	state    Progress
	reported int
	start    time.Time
	running  bool
}

// NewProgressTracker reports to w after every interval documents.
// Intervals below 1 report every document.
func NewProgressTracker(w io.Writer, total, interval int) *ProgressTracker {
	return &ProgressTracker{
		w:     w,
		every: max(interval, 1),
		state: Progress{Total: total},
	}
}

// Start resets the counters and the clock.
func (t *ProgressTracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = Progress{Total: t.state.Total}
	t.reported = 0
	t.start = time.Now()
	t.running = true
}

// Done records one handled document. Calls before Start or beyond the
// total are ignored.
func (t *ProgressTracker) Done(failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || t.state.Done >= t.state.Total {
		return
	}
	t.state.Done++
	if failed {
		t.state.Failed++
	}
	if t.state.Done-t.reported >= t.every {
		t.writeLocked()
		t.reported = t.state.Done
	}
}

// Finish writes the final status line and stops the clock.
func (t *ProgressTracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.writeLocked()
	fmt.Fprintln(t.w)
	t.running = false
}

// Snapshot returns the current progress.
func (t *ProgressTracker) Snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Counts returns the handled and failed document counts.
func (t *ProgressTracker) Counts() (done, failed int) {
	s := t.Snapshot()
	return s.Done, s.Failed
}

// Elapsed returns the time since Start, or zero when not running.
func (t *ProgressTracker) Elapsed() time.Duration {
	return t.Snapshot().Elapsed
}

func (t *ProgressTracker) snapshotLocked() Progress {
	s := t.state
	if t.running {
		s.Elapsed = time.Since(t.start)
	}
	return s
}

func (t *ProgressTracker) writeLocked() {
	fmt.Fprintf(t.w, "\r%s", t.snapshotLocked())
}
