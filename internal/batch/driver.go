// Package batch drives the resolver over the scraper-owned unconfirmed
// leads, page by page, with bounded concurrency and optional rate limiting.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"
	xrate "golang.org/x/time/rate"

	"lineage/internal/identity/models"
	"lineage/internal/identity/store"
	dErrors "lineage/pkg/domain-errors"
)

// Resolver resolves one occurrence.
type Resolver interface {
	ResolveOrCreate(ctx context.Context, occ models.NameOccurrence) (*models.ResolveResult, error)
}

// Options control one run. Zero values fall back to DefaultOptions.
type Options struct {
	BatchSize   int
	StartOffset int
	// MaxRecords bounds the run; 0 means unbounded.
	MaxRecords int
	Workers    int
	// Rate caps occurrences per second; 0 means unlimited.
	Rate float64
	// Timeout bounds each occurrence; one that exceeds it is skipped.
	Timeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		BatchSize: 1000,
		Workers:   4,
		Timeout:   30 * time.Second,
	}
}

// Counts are the table sizes reported before and after a run.
type Counts struct {
	Canonicals int64 `json:"canonicals"`
	Variants   int64 `json:"variants"`
	QueueItems int64 `json:"queue_items"`
}

// Summary describes a finished or aborted run.
type Summary struct {
	Initial    Counts        `json:"initial"`
	Final      Counts        `json:"final"`
	Tally      Tally         `json:"tally"`
	NextOffset int           `json:"next_offset"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Driver feeds leads to the resolver.
type Driver struct {
	leads      store.LeadSource
	resolver   Resolver
	counter    store.Counter
	checkpoint Checkpoint
	opts       Options
	out        io.Writer
	logger     *slog.Logger
}

type Option func(*Driver)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithOutput sets where progress lines and the summary are printed.
func WithOutput(w io.Writer) Option {
	return func(d *Driver) {
		d.out = w
	}
}

// WithCheckpoint resumes from and records progress in cp.
func WithCheckpoint(cp Checkpoint) Option {
	return func(d *Driver) {
		d.checkpoint = cp
	}
}

func New(leads store.LeadSource, resolver Resolver, counter store.Counter, opts Options, options ...Option) *Driver {
	def := DefaultOptions()
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	opts.StartOffset = max(opts.StartOffset, 0)
	opts.MaxRecords = max(opts.MaxRecords, 0)

	d := &Driver{
		leads:    leads,
		resolver: resolver,
		counter:  counter,
		opts:     opts,
		out:      io.Discard,
		logger:   slog.Default(),
	}
	for _, o := range options {
		o(d)
	}
	return d
}

// Run processes leads until the source is exhausted, MaxRecords is reached,
// or a fatal store error occurs. The summary is returned and printed in
// every case; the error is non-nil only for fatal failures.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	initial, err := d.counts(ctx)
	if err != nil {
		return nil, err
	}
	summary.Initial = initial

	offset, err := d.startOffset(ctx)
	if err != nil {
		return nil, err
	}

	var limiter *xrate.Limiter
	if d.opts.Rate > 0 {
		limiter = xrate.NewLimiter(xrate.Limit(d.opts.Rate), d.opts.Workers)
	}

	prog := newProgress(d.out, start)
	runErr := d.process(ctx, &offset, prog, limiter)

	summary.Tally = prog.snapshot()
	summary.NextOffset = offset
	summary.Elapsed = time.Since(start)
	// Final counts are taken even after a failed run; the store may be
	// reachable again.
	if final, err := d.counts(context.WithoutCancel(ctx)); err == nil {
		summary.Final = final
	} else if runErr == nil {
		runErr = err
	}
	d.printSummary(summary)
	return summary, runErr
}

func (d *Driver) process(ctx context.Context, offset *int, prog *progress, limiter *xrate.Limiter) error {
	processed := 0
	for {
		pageSize := d.opts.BatchSize
		if d.opts.MaxRecords > 0 {
			left := d.opts.MaxRecords - processed
			if left <= 0 {
				return nil
			}
			pageSize = min(pageSize, left)
		}

		leads, err := d.leads.ListLeads(ctx, *offset, pageSize)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to read leads")
		}
		if len(leads) == 0 {
			return nil
		}

		if err := d.processPage(ctx, leads, prog, limiter); err != nil {
			return err
		}
		*offset += len(leads)
		processed += len(leads)
		if d.checkpoint != nil {
			if err := d.checkpoint.Save(ctx, *offset); err != nil {
				d.logger.WarnContext(ctx, "checkpoint save failed", "offset", *offset, "error", err)
			}
		}
		if len(leads) < pageSize {
			return nil
		}
	}
}

func (d *Driver) processPage(ctx context.Context, leads []models.UnconfirmedPerson, prog *progress, limiter *xrate.Limiter) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)
	for _, lead := range leads {
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				break
			}
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return d.resolveOne(gctx, lead, prog)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// resolveOne returns an error only when the run must stop. A conflict with a
// concurrent worker is retried once on a fresh transaction before the lead is
// skipped.
func (d *Driver) resolveOne(ctx context.Context, lead models.UnconfirmedPerson, prog *progress) error {
	res, err := d.attempt(ctx, lead)
	if dErrors.HasCode(err, dErrors.CodeConflict) && ctx.Err() == nil {
		d.logger.DebugContext(ctx, "retrying lead after conflict", "lead_id", lead.LeadID, "error", err)
		res, err = d.attempt(ctx, lead)
	}
	switch {
	case err == nil:
		prog.record(res.Action)
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case skippable(err):
		d.logger.WarnContext(ctx, "lead skipped",
			"lead_id", lead.LeadID,
			"code", dErrors.CodeOf(err),
			"error", err,
		)
		prog.skip()
		return nil
	default:
		return fmt.Errorf("lead %d: %w", lead.LeadID, err)
	}
}

func (d *Driver) attempt(ctx context.Context, lead models.UnconfirmedPerson) (*models.ResolveResult, error) {
	occCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()
	return d.resolver.ResolveOrCreate(occCtx, lead.Occurrence)
}

// skippable errors concern one occurrence, not the store.
func skippable(err error) bool {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInvalidInput, dErrors.CodeValidation, dErrors.CodeInvariantViolation, dErrors.CodeTimeout, dErrors.CodeConflict:
		return true
	}
	return false
}

func (d *Driver) startOffset(ctx context.Context) (int, error) {
	if d.checkpoint == nil {
		return d.opts.StartOffset, nil
	}
	saved, ok, err := d.checkpoint.Load(ctx)
	if err != nil {
		return 0, err
	}
	if ok && saved > d.opts.StartOffset {
		d.logger.InfoContext(ctx, "resuming from checkpoint", "offset", saved)
		return saved, nil
	}
	return d.opts.StartOffset, nil
}

func (d *Driver) counts(ctx context.Context) (Counts, error) {
	var c Counts
	for _, f := range []struct {
		dst   *int64
		count func(context.Context) (int64, error)
	}{
		{&c.Canonicals, d.counter.CountCanonicals},
		{&c.Variants, d.counter.CountVariants},
		{&c.QueueItems, func(ctx context.Context) (int64, error) { return d.counter.CountQueueItems(ctx, "") }},
	} {
		n, err := f.count(ctx)
		if errors.Is(err, store.ErrMissingTable) {
			continue
		}
		if err != nil {
			return Counts{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to count identity tables")
		}
		*f.dst = n
	}
	return c, nil
}

func (d *Driver) printSummary(s *Summary) {
	t := s.Tally
	fmt.Fprintf(d.out, "processed %d | linked %d | queued %d | new %d | skipped %d | %.1f/sec\n",
		t.Processed, t.Linked, t.Queued, t.Created, t.Skipped, rate(t.Processed, s.Elapsed))

	tw := tabwriter.NewWriter(d.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tinitial\tfinal\t")
	fmt.Fprintf(tw, "canonicals\t%d\t%d\t\n", s.Initial.Canonicals, s.Final.Canonicals)
	fmt.Fprintf(tw, "variants\t%d\t%d\t\n", s.Initial.Variants, s.Final.Variants)
	fmt.Fprintf(tw, "queue items\t%d\t%d\t\n", s.Initial.QueueItems, s.Final.QueueItems)
	_ = tw.Flush()
}
