// Package runner enumerates every protein of a catalog set on a bounded
// worker pool and merges the per-protein outcomes.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/StinkyLord/glycoproteoform-builder/internal/catalog"
	"github.com/StinkyLord/glycoproteoform-builder/internal/enumerate"
	"github.com/StinkyLord/glycoproteoform-builder/internal/logging"
	"github.com/StinkyLord/glycoproteoform-builder/internal/metrics"
	"github.com/StinkyLord/glycoproteoform-builder/internal/model"
)

// ProteinResult is the outcome of one successfully enumerated protein. It
// keeps the catalog and the counts, never the proteoforms themselves.
type ProteinResult struct {
	Catalog *model.SiteCatalog
	Summary model.ProteinCombinationSummary
}

// Proteoforms streams the generated proteoforms of p to fn in order. They
// are recomputed from the catalog on every call.
func (p *ProteinResult) Proteoforms(fn func(model.ProteoformAssignment) error) error {
	_, err := enumerate.Each(p.Catalog, p.Summary.GeneratedCount, fn)
	return err
}

// ProteoformWriter receives the proteoforms of one protein in order.
type ProteoformWriter interface {
	Write(model.ProteoformAssignment) error
	Close() error
}

// Sink opens a writer per protein. Open is called from worker goroutines,
// concurrently for different proteins.
type Sink interface {
	Open(c *model.SiteCatalog) (ProteoformWriter, error)
}

// Failure records a protein that produced no proteoforms, and why.
// ProteinID is empty for input rows that carried no protein id.
type Failure struct {
	ProteinID string
	Row       int
	Reason    string
	Err       error
}

// Result holds every protein outcome of a run.
type Result struct {
	// Proteins follows first-seen protein order, regardless of which worker
	// finished first.
	Proteins []*ProteinResult

	// Failures lists data-format errors in input order, followed by proteins
	// that failed enumeration in catalog order.
	Failures []Failure

	Limit int
}

// Generated returns the total number of proteoforms across all proteins.
func (r *Result) Generated() int {
	n := 0
	for _, p := range r.Proteins {
		n += p.Summary.GeneratedCount
	}
	return n
}

// Runner enumerates proteins concurrently.
type Runner struct {
	Limit   int
	Workers int

	// Logger defaults to a discarding logger when nil.
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *metrics.Recorder

	// Sink receives every proteoform as it is enumerated. Without a sink
	// only the counts are computed.
	Sink Sink
}

// New creates a Runner.
func New(limit, workers int) *Runner {
	return &Runner{Limit: limit, Workers: workers}
}

// outcome is what a worker hands back to the collector.
type outcome struct {
	pos     int
	result  *ProteinResult
	failure *Failure
}

// Run enumerates every catalog in set. An invalid limit aborts before any
// work starts. Per-protein failures are recorded in the result and never stop
// the other proteins. When ctx is cancelled no further proteins are started;
// the ones not started are reported as failures and ctx.Err() is returned
// together with the partial result.
func (r *Runner) Run(ctx context.Context, set *catalog.Set) (*Result, error) {
	if r.Limit < 1 {
		return nil, model.Usagef("limit must be at least 1, got %d", r.Limit)
	}
	log := r.Logger
	if log == nil {
		log = logging.Discard()
	}
	workers := max(r.Workers, 1)

	res := &Result{Limit: r.Limit}
	for _, e := range set.Errors() {
		res.Failures = append(res.Failures, Failure{
			ProteinID: e.ProteinID,
			Row:       e.Row,
			Reason:    e.Error(),
			Err:       e,
		})
		log.Warn("rejected input", "protein", e.ProteinID, "row", e.Row, "missing", e.Field)
	}

	cats := set.Catalogs()
	outCh := make(chan outcome, workers)
	collected := make([]*outcome, len(cats))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for o := range outCh {
			collected[o.pos] = &o
		}
	}()

	var g errgroup.Group
	g.SetLimit(workers)
	for i, c := range cats {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outCh <- r.enumerate(ctx, log, i, c)
			return nil
		})
	}
	_ = g.Wait()
	close(outCh)
	<-done

	for i, o := range collected {
		switch {
		case o == nil:
			err := context.Cause(ctx)
			res.Failures = append(res.Failures, Failure{
				ProteinID: cats[i].ProteinID,
				Reason:    "not started: " + err.Error(),
				Err:       err,
			})
		case o.failure != nil:
			res.Failures = append(res.Failures, *o.failure)
		default:
			res.Proteins = append(res.Proteins, o.result)
		}
	}
	for range res.Failures {
		r.Metrics.ObserveFailure()
	}

	log.Info("enumeration finished",
		"proteins", len(res.Proteins),
		"failed", len(res.Failures),
		"proteoforms", res.Generated(),
		"limit", r.Limit,
	)
	return res, ctx.Err()
}

// enumerate runs the enumerator for one protein.
func (r *Runner) enumerate(ctx context.Context, log *slog.Logger, pos int, c *model.SiteCatalog) outcome {
	if err := ctx.Err(); err != nil {
		return outcome{pos: pos, failure: &Failure{
			ProteinID: c.ProteinID,
			Reason:    "not started: " + err.Error(),
			Err:       err,
		}}
	}

	start := time.Now()
	summary, err := enumerate.Summarize(c, r.Limit)
	if err != nil {
		log.Warn("protein skipped", "protein", c.ProteinID, "error", err)
		return outcome{pos: pos, failure: &Failure{ProteinID: c.ProteinID, Reason: err.Error(), Err: err}}
	}
	if r.Sink != nil {
		if err := r.stream(ctx, c); err != nil {
			log.Warn("protein failed", "protein", c.ProteinID, "error", err)
			return outcome{pos: pos, failure: &Failure{ProteinID: c.ProteinID, Reason: err.Error(), Err: err}}
		}
	}
	elapsed := time.Since(start)

	r.Metrics.ObserveProtein(summary.GeneratedCount, summary.Truncated(), elapsed)
	log.Debug("protein enumerated",
		"protein", c.ProteinID,
		"sites", summary.TotalSites,
		"total", summary.TrueTotal.String(),
		"generated", summary.GeneratedCount,
		"elapsed", elapsed,
	)
	return outcome{pos: pos, result: &ProteinResult{Catalog: c, Summary: summary}}
}

// stream feeds the proteoforms of c to a writer from the sink, one at a time.
func (r *Runner) stream(ctx context.Context, c *model.SiteCatalog) error {
	w, err := r.Sink.Open(c)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	_, err = enumerate.Each(c, r.Limit, func(p model.ProteoformAssignment) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interrupted after %d proteoform(s): %w", p.Index-1, err)
		}
		return w.Write(p)
	})
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}
