package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/kikiluvv/vidlabel/internal/records"
)

// Mode selects what is written for each record.
type Mode int

const (
	// FullVideo writes every frame and overlays the label inside the window.
	FullVideo Mode = iota
	// ClipOnly writes only the frames inside the window, without overlay.
	ClipOnly
)

func (m Mode) String() string {
	switch m {
	case FullVideo:
		return "full"
	case ClipOnly:
		return "clip"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "full" or "clip".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full", "full_video", "fullvideo":
		return FullVideo, nil
	case "clip", "clip_only", "cliponly":
		return ClipOnly, nil
	}
	return FullVideo, fmt.Errorf("unknown mode %q", s)
}

// Status is the coarse result of processing one record.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Failure taxonomy. Outcome.Err wraps exactly one of these, or
// frametime.ErrInvalidRate.
var (
	ErrOpen              = errors.New("cannot open source")
	ErrDecode            = errors.New("decode failure")
	ErrEmptyWindow       = errors.New("empty window")
	ErrWrite             = errors.New("write failure")
	ErrDestinationExists = errors.New("destination exists")
	ErrCancelled         = errors.New("cancelled")
	ErrInternal          = errors.New("internal error")
)

// Outcome is the result of processing one record. It is never mutated after
// Process returns it.
type Outcome struct {
	Record records.LabelRecord
	Mode   Mode
	Status Status
	Reason string
	Err    error

	// Output is the destination path derived for the record.
	Output         string
	FramesRead     int
	FramesWritten  int
	FramesOverlaid int
	Elapsed        time.Duration
}

// OK reports whether the record succeeded.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

// StreamInfo describes an open source stream; sinks copy it.
type StreamInfo struct {
	Width     int
	Height    int
	FPS       float64
	FrameRate string
}

// Source is an open video being decoded in order.
type Source interface {
	Info() StreamInfo
	// Next returns io.EOF after the last frame.
	Next() (*image.RGBA, error)
	Close() error
}

// Decoder opens sources.
type Decoder interface {
	Open(ctx context.Context, path string) (Source, error)
}

// Sink receives encoded frames for one output file.
type Sink interface {
	WriteFrame(frame *image.RGBA) error
	Close() error
}

// Encoder creates sinks sized and timed like a source.
type Encoder interface {
	Create(ctx context.Context, path string, info StreamInfo) (Sink, error)
}

// Overlay burns text into a frame and returns the result.
type Overlay interface {
	Apply(frame *image.RGBA, text string) *image.RGBA
}

// PreviewWriter saves a still of an annotated frame.
type PreviewWriter interface {
	WritePreview(path string, frame *image.RGBA) error
}

// CollisionPolicy decides what happens when the derived output already exists.
type CollisionPolicy string

const (
	CollisionOverwrite CollisionPolicy = "overwrite"
	CollisionSkip      CollisionPolicy = "skip"
)

// ParseCollisionPolicy accepts "overwrite" (default) or "skip".
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CollisionOverwrite:
		return CollisionOverwrite, nil
	case CollisionSkip:
		return CollisionSkip, nil
	}
	return CollisionOverwrite, fmt.Errorf("unknown collision policy %q", s)
}
