package batch

import (
	"fmt"
	"io"
	"sync"
	"time"

	"lineage/internal/identity/models"
)

// progressEvery is how many occurrences pass between progress lines.
const progressEvery = 100

// Tally counts what a run did with each occurrence.
type Tally struct {
	Processed int64 `json:"processed"`
	Linked    int64 `json:"linked"`
	Queued    int64 `json:"queued"`
	Created   int64 `json:"created"`
	Skipped   int64 `json:"skipped"`
}

type progress struct {
	mu    sync.Mutex
	out   io.Writer
	start time.Time
	tally Tally
}

func newProgress(out io.Writer, start time.Time) *progress {
	return &progress{out: out, start: start}
}

func (p *progress) record(action models.Action) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch action {
	case models.ActionMatched:
		p.tally.Linked++
	case models.ActionQueuedForReview:
		p.tally.Queued++
	case models.ActionCreatedNew:
		p.tally.Created++
	}
	p.advance()
}

func (p *progress) skip() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tally.Skipped++
	p.advance()
}

// advance must be called with mu held.
func (p *progress) advance() {
	p.tally.Processed++
	if p.tally.Processed%progressEvery == 0 {
		p.printLine()
	}
}

func (p *progress) snapshot() Tally {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tally
}

func (p *progress) printLine() {
	t := p.tally
	fmt.Fprintf(p.out, "processed %d | linked %d | queued %d | new %d | skipped %d | %.1f/sec\n",
		t.Processed, t.Linked, t.Queued, t.Created, t.Skipped, rate(t.Processed, time.Since(p.start)))
}

func rate(n int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(n) / elapsed.Seconds()
}
