// Package batch implements the batch driver: bounded concurrent fan-out
// across input terms, chunked with an inter-chunk delay, order-preserving,
// with per-term failure isolation.
package batch

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/termmatch/internal/dispatch"
	"github.com/cognicore/termmatch/internal/engineerr"
	"github.com/cognicore/termmatch/internal/vocab"
)

const (
	// DefaultChunkSize is the number of terms looked up concurrently
	// within one chunk.
	DefaultChunkSize = 5
	// DefaultChunkDelay is the pause between consecutive chunks.
	DefaultChunkDelay = 500 * time.Millisecond
	// DefaultMinConfidence is the post-filter floor applied to every
	// result row.
	DefaultMinConfidence = 0.6
)

// Status classifies one term's outcome in a batch run.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusNoMappings Status = "no_mappings"
	StatusFailed     Status = "failed"
)

// TermResult is the per-term outcome of a batch run.
type TermResult struct {
	Term    string
	Results map[vocab.System][]dispatch.ResultRow
	Status  Status
	Error   string
}

// Lookup is the single-term call the driver fans out, matching
// Dispatcher.MapTerm's shape without binding to *dispatch.Dispatcher
// directly so tests can stub failures.
type Lookup func(ctx context.Context, term string) (map[vocab.System][]dispatch.ResultRow, error)

// Options configures a Run.
type Options struct {
	ChunkSize     int
	ChunkDelay    time.Duration
	MinConfidence float64
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.ChunkDelay <= 0 {
		o.ChunkDelay = DefaultChunkDelay
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = DefaultMinConfidence
	}
	return o
}

// Run partitions terms into fixed-size chunks, looks each chunk up
// concurrently via lookup, waits opts.ChunkDelay between chunks (none
// after the last), and returns one TermResult per input term in input
// order. A cancelled ctx stops scheduling further chunks; in-flight
// lookups within the current chunk are still awaited since errgroup
// only cancels gctx passed to lookup, it does not abandon goroutines.
func Run(ctx context.Context, terms []string, lookup Lookup, opts Options) []TermResult {
	opts = opts.withDefaults()
	out := make([]TermResult, len(terms))

	for start := 0; start < len(terms); start += opts.ChunkSize {
		if ctx.Err() != nil {
			return fillCancelled(out, terms, start)
		}

		end := start + opts.ChunkSize
		if end > len(terms) {
			end = len(terms)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			idx := i
			term := terms[i]
			g.Go(func() error {
				out[idx] = runOne(gctx, term, lookup, opts.MinConfidence)
				return nil
			})
		}
		_ = g.Wait()

		if end < len(terms) {
			if !sleep(ctx, opts.ChunkDelay) {
				return fillCancelled(out, terms, end)
			}
		}
	}

	return out
}

func runOne(ctx context.Context, term string, lookup Lookup, minConfidence float64) TermResult {
	if strings.TrimSpace(term) == "" {
		return TermResult{Term: term, Status: StatusFailed, Error: engineerr.ErrInvalidInput.Error()}
	}

	results, err := lookup(ctx, term)
	if err != nil {
		return TermResult{Term: term, Status: StatusFailed, Error: truncate(err.Error(), 200)}
	}

	filtered := postFilter(results, minConfidence)
	if len(filtered) == 0 {
		return TermResult{Term: term, Results: filtered, Status: StatusNoMappings}
	}
	return TermResult{Term: term, Results: filtered, Status: StatusSuccess}
}

// postFilter drops rows below minConfidence and drops vocabularies that
// become empty as a result.
func postFilter(results map[vocab.System][]dispatch.ResultRow, minConfidence float64) map[vocab.System][]dispatch.ResultRow {
	out := make(map[vocab.System][]dispatch.ResultRow)
	for sys, rows := range results {
		var kept []dispatch.ResultRow
		for _, r := range rows {
			if r.Confidence >= minConfidence {
				kept = append(kept, r)
			}
		}
		if len(kept) > 0 {
			out[sys] = kept
		}
	}
	return out
}

// fillCancelled marks every term from idx onward as failed with a
// cancellation error, preserving order and length.
func fillCancelled(out []TermResult, terms []string, idx int) []TermResult {
	for i := idx; i < len(terms); i++ {
		out[i] = TermResult{Term: terms[i], Status: StatusFailed, Error: truncate(context.Canceled.Error(), 200)}
	}
	return out
}

// sleep waits d or returns false early if ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
