package takeout

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bleemesser/photoexif/util"
)

// Reconciler handles a single unit. *Engine is the production implementation.
type Reconciler interface {
	Reconcile(unit FileUnit) Result
}

// Recorder receives every result as soon as it is known.
type Recorder interface {
	Record(res Result) error
}

// Progress is the observable progress of one run. It is safe to read from
// another goroutine while the batch runs.
type Progress struct {
	done  atomic.Int64
	total atomic.Int64
}

// Done returns the number of units processed so far.
func (p *Progress) Done() int { return int(p.done.Load()) }

// Total returns the number of units in the run.
func (p *Progress) Total() int { return int(p.total.Load()) }

// Fraction returns Done/Total, or 0 before the run starts.
func (p *Progress) Fraction() float64 {
	total := p.total.Load()
	if total == 0 {
		return 0
	}
	return float64(p.done.Load()) / float64(total)
}

// Summary aggregates the results of a run.
type Summary struct {
	Total       int
	Counts      map[Action]int
	Failures    []Result
	CopiedBytes int64
	Duration    time.Duration
}

func newSummary(total int) Summary {
	return Summary{Total: total, Counts: make(map[Action]int)}
}

func (s *Summary) add(res Result) {
	s.Counts[res.Action]++
	s.CopiedBytes += res.CopiedBytes
	if res.Failed() {
		s.Failures = append(s.Failures, res)
	}
}

// Processed returns how many units have a result.
func (s Summary) Processed() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// Routed returns how many failed files were copied to the error directory.
func (s Summary) Routed() int {
	n := 0
	for _, f := range s.Failures {
		if f.Routed {
			n++
		}
	}
	return n
}

// ProcessorOptions configures a Processor.
type ProcessorOptions struct {
	// OnProgress is called after every unit with the completed and total counts.
	OnProgress func(done, total int)
	// Recorder, when set, is handed every result.
	Recorder Recorder
}

// Processor runs a Reconciler over a file set, one unit at a time.
type Processor struct {
	reconciler Reconciler
	opts       ProcessorOptions
	logger     *slog.Logger
	progress   *Progress
}

// NewProcessor returns a processor for a single run.
func NewProcessor(r Reconciler, opts ProcessorOptions, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = util.DiscardLogger()
	}
	return &Processor{reconciler: r, opts: opts, logger: logger, progress: &Progress{}}
}

// Progress exposes the run's progress for polling.
func (p *Processor) Progress() *Progress {
	return p.progress
}

// Process reconciles every unit in order. A failing unit never stops the
// batch; only a cancelled ctx does, checked between units, in which case the
// partial summary is returned with ctx.Err().
func (p *Processor) Process(ctx context.Context, units []FileUnit) (Summary, error) {
	start := time.Now()
	total := len(units)
	summary := newSummary(total)
	p.progress.total.Store(int64(total))
	p.progress.done.Store(0)

	p.logger.Info("--- Processing media files ---", slog.Int("total", total))
	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			p.logger.Warn("processing interrupted", slog.Int("done", i), slog.Int("total", total))
			return summary, err
		}

		p.logger.Info("processing file", slog.Int("index", i+1), slog.Int("total", total), slog.String("path", unit.Media.Path))
		res := p.reconciler.Reconcile(unit)
		summary.add(res)

		if p.opts.Recorder != nil {
			if err := p.opts.Recorder.Record(res); err != nil {
				p.logger.Warn("could not record result", slog.String("path", unit.Media.Path), slog.String("error", err.Error()))
			}
		}

		done := int(p.progress.done.Add(1))
		if p.opts.OnProgress != nil {
			p.opts.OnProgress(done, total)
		}
	}

	summary.Duration = time.Since(start)
	p.logger.Info("--- Finished processing media files ---",
		slog.Int("processed", summary.Processed()),
		slog.Int("failed", len(summary.Failures)))
	return summary, nil
}
