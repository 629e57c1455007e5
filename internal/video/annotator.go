// Package video runs the decode, annotate and encode loop for one label record.
package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"time"

	"github.com/kikiluvv/vidlabel/internal/frametime"
	"github.com/kikiluvv/vidlabel/internal/records"
	"github.com/kikiluvv/vidlabel/pkg/util"
	"github.com/rs/zerolog"
)

// Config controls where and how outputs are written
type Config struct {
	OutputDir   string
	Extension   string
	OnCollision CollisionPolicy
}

// Annotator processes one record at a time. It holds no per-record state
// between calls, but the overlay it wraps may not be safe for concurrent use.
type Annotator struct {
	logger   zerolog.Logger
	decoder  Decoder
	encoder  Encoder
	overlay  Overlay
	preview  PreviewWriter
	observer Observer
	cfg      Config
}

// Option customizes an Annotator
type Option func(*Annotator)

// WithObserver registers an event observer
func WithObserver(o Observer) Option {
	return func(a *Annotator) {
		if o != nil {
			a.observer = o
		}
	}
}

// WithPreview saves a still of the first annotated frame next to each output
func WithPreview(p PreviewWriter) Option {
	return func(a *Annotator) {
		a.preview = p
	}
}

// NewAnnotator creates an annotator
func NewAnnotator(logger zerolog.Logger, dec Decoder, enc Encoder, ov Overlay, cfg Config, opts ...Option) *Annotator {
	if cfg.OnCollision == "" {
		cfg.OnCollision = CollisionOverwrite
	}
	a := &Annotator{
		logger:   logger.With().Str("component", "annotator").Logger(),
		decoder:  dec,
		encoder:  enc,
		overlay:  ov,
		observer: NopObserver{},
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OutputPath returns the destination a record will be written to
func (a *Annotator) OutputPath(rec records.LabelRecord) string {
	return filepath.Join(a.cfg.OutputDir, rec.DestName(a.cfg.Extension))
}

// Process annotates one record end to end. A panic in a collaborator is
// reported as a failed outcome wrapping ErrInternal. The source and sink it
// opened are closed before it returns.
func (a *Annotator) Process(ctx context.Context, rec records.LabelRecord, mode Mode) (out Outcome) {
	started := time.Now()
	out = Outcome{
		Record: rec,
		Mode:   mode,
		Output: a.OutputPath(rec),
	}

	a.observer.OnRecordStart(rec)
	defer func() {
		out.Elapsed = time.Since(started)
		a.observer.OnOutcome(out)
	}()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().
				Interface("panic", r).
				Str("video", rec.VideoPath).
				Msg("recovered from panic")
			out = out.failed(fmt.Errorf("%w: %v", ErrInternal, r), "internal error")
		}
	}()

	if a.cfg.OnCollision == CollisionSkip && util.FileExists(out.Output) {
		return out.skipped(ErrDestinationExists, "destination exists")
	}

	src, err := a.decoder.Open(ctx, rec.VideoPath)
	if err != nil {
		return out.failed(fmt.Errorf("%w: %v", ErrOpen, err), "cannot open source")
	}
	defer func() {
		if err := src.Close(); err != nil {
			a.logger.Warn().Err(err).Str("video", rec.VideoPath).Msg("closing source")
		}
	}()

	info := src.Info()
	if err := frametime.ValidateRate(info.FPS); err != nil {
		return out.failed(err, "invalid frame rate")
	}

	a.logger.Debug().
		Str("video", rec.VideoPath).
		Str("mode", mode.String()).
		Float64("fps", info.FPS).
		Float64("start", rec.Start).
		Float64("end", rec.End).
		Msg("processing record")

	run := &frameLoop{
		annotator: a,
		ctx:       ctx,
		rec:       rec,
		mode:      mode,
		info:      info,
		src:       src,
		out:       &out,
	}
	defer func() { _ = run.closeSink() }()

	failure := run.loop()

	if cerr := run.closeSink(); cerr != nil && failure == nil {
		failure = &loopFailure{err: fmt.Errorf("%w: %v", ErrWrite, cerr), reason: "cannot finalize output"}
	}

	if failure != nil {
		return out.failed(failure.err, failure.reason)
	}

	if out.FramesWritten == 0 {
		if mode == ClipOnly {
			return out.skipped(ErrEmptyWindow, "empty window — no frames matched")
		}
		return out.skipped(ErrEmptyWindow, "no frames decoded")
	}

	out.Status = StatusSuccess
	return out
}

type loopFailure struct {
	err    error
	reason string
}

// frameLoop is the state of one Process call
type frameLoop struct {
	annotator *Annotator
	ctx       context.Context
	rec       records.LabelRecord
	mode      Mode
	info      StreamInfo
	src       Source
	sink      Sink
	out       *Outcome
	previewed bool
}

func (l *frameLoop) loop() *loopFailure {
	a := l.annotator
	for i := 0; ; i++ {
		if f := l.cancelled(); f != nil {
			return f
		}

		frame, err := l.src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// a killed decoder reports a broken pipe, not the real cause
			if f := l.cancelled(); f != nil {
				return f
			}
			a.observer.OnDecodeError(l.rec, i, err)
			return &loopFailure{
				err:    fmt.Errorf("%w at frame %d: %v", ErrDecode, i, err),
				reason: fmt.Sprintf("decode error at frame %d", i),
			}
		}
		l.out.FramesRead++

		t, _ := frametime.Timestamp(i, l.info.FPS)
		inside := frametime.InWindow(t, l.rec.Start, l.rec.End)

		switch l.mode {
		case ClipOnly:
			if !inside {
				if t > l.rec.End && l.out.FramesWritten > 0 {
					return nil
				}
				continue
			}
		default:
			if inside {
				frame = a.overlay.Apply(frame, l.rec.LabelText)
				l.out.FramesOverlaid++
			}
		}

		if l.sink == nil {
			sink, err := a.encoder.Create(l.ctx, l.out.Output, l.info)
			if err != nil {
				return &loopFailure{err: fmt.Errorf("%w: %v", ErrWrite, err), reason: "cannot open output"}
			}
			l.sink = sink
		}

		if err := l.sink.WriteFrame(frame); err != nil {
			return &loopFailure{
				err:    fmt.Errorf("%w at frame %d: %v", ErrWrite, i, err),
				reason: fmt.Sprintf("write error at frame %d", i),
			}
		}
		l.out.FramesWritten++

		if inside && !l.previewed {
			l.previewed = true
			l.writePreview(frame)
		}
	}
}

func (l *frameLoop) cancelled() *loopFailure {
	err := l.ctx.Err()
	if err == nil {
		return nil
	}
	reason := "cancelled"
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "timed out"
	}
	return &loopFailure{err: fmt.Errorf("%w: %w", ErrCancelled, err), reason: reason}
}

func (l *frameLoop) writePreview(frame *image.RGBA) {
	a := l.annotator
	if a.preview == nil {
		return
	}
	path := filepath.Join(a.cfg.OutputDir, l.rec.DestName("jpg"))
	if err := a.preview.WritePreview(path, frame); err != nil {
		a.logger.Warn().Err(err).Str("preview", path).Msg("preview failed")
	}
}

func (l *frameLoop) closeSink() error {
	if l.sink == nil {
		return nil
	}
	err := l.sink.Close()
	l.sink = nil
	return err
}

func (o Outcome) failed(err error, reason string) Outcome {
	o.Status = StatusFailed
	o.Err = err
	o.Reason = reason
	return o
}

func (o Outcome) skipped(err error, reason string) Outcome {
	o.Status = StatusSkipped
	o.Err = err
	o.Reason = reason
	return o
}
