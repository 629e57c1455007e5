// Package batch drives the annotator over a whole label sheet.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/kikiluvv/vidlabel/internal/records"
	"github.com/kikiluvv/vidlabel/internal/video"
	"github.com/rs/zerolog"
)

// Processor handles one record. *video.Annotator satisfies it.
type Processor interface {
	Process(ctx context.Context, rec records.LabelRecord, mode video.Mode) video.Outcome
}

// Pipeline runs records one after another
type Pipeline struct {
	logger    zerolog.Logger
	processor Processor
}

// New creates a new pipeline instance
func New(logger zerolog.Logger, proc Processor) *Pipeline {
	return &Pipeline{
		logger:    logger.With().Str("component", "batch").Logger(),
		processor: proc,
	}
}

// Run processes recs in order. A failed record never stops the run unless
// FailFast is set. When ctx ends, the remaining records are counted as not
// run and the context error is returned with the partial summary.
func (p *Pipeline) Run(ctx context.Context, recs []records.LabelRecord, opts Options) (*Summary, error) {
	summary := newSummary(opts.Mode, len(recs))
	summary.addRejected(opts.Rejected)
	defer func() { summary.FinishedAt = time.Now() }()

	p.logger.Info().
		Str("run_id", summary.RunID).
		Str("mode", opts.Mode.String()).
		Int("records", len(recs)).
		Int("rejected", summary.Rejected).
		Msg("starting batch")

	for i, rec := range recs {
		if err := ctx.Err(); err != nil {
			summary.NotRun = len(recs) - i
			p.logger.Warn().Err(err).Int("not_run", summary.NotRun).Msg("batch interrupted")
			return summary, fmt.Errorf("batch interrupted: %w", err)
		}

		out := p.processOne(ctx, rec, opts)
		summary.add(out)

		if opts.FailFast && out.Status == video.StatusFailed {
			summary.NotRun = len(recs) - i - 1
			summary.StoppedEarly = true
			p.logger.Warn().
				Int("line", rec.Line).
				Int("not_run", summary.NotRun).
				Msg("stopping after first failure")
			break
		}
	}

	p.logger.Info().
		Str("run_id", summary.RunID).
		Int("succeeded", summary.Succeeded).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int("not_run", summary.NotRun).
		Msg("batch complete")

	return summary, nil
}

func (p *Pipeline) processOne(ctx context.Context, rec records.LabelRecord, opts Options) (out video.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Interface("panic", r).
				Int("line", rec.Line).
				Str("video", rec.VideoPath).
				Msg("record panicked")
			out = video.Outcome{
				Record: rec,
				Mode:   opts.Mode,
				Status: video.StatusFailed,
				Reason: "internal error",
				Err:    fmt.Errorf("%w: %v", video.ErrInternal, r),
			}
		}
	}()

	if opts.RecordTimeout <= 0 {
		return p.processor.Process(ctx, rec, opts.Mode)
	}
	rctx, cancel := context.WithTimeout(ctx, opts.RecordTimeout)
	defer cancel()
	return p.processor.Process(rctx, rec, opts.Mode)
}
