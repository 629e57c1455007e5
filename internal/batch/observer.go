package batch

import (
	"github.com/kikiluvv/vidlabel/internal/records"
	"github.com/kikiluvv/vidlabel/internal/video"
	"github.com/rs/zerolog"
)

// LogObserver writes annotator events to a zerolog logger
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver creates a log observer
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger.With().Str("component", "batch").Logger()}
}

func (o *LogObserver) OnRecordStart(rec records.LabelRecord) {
	o.logger.Debug().
		Int("line", rec.Line).
		Str("video", rec.VideoPath).
		Str("label", rec.LabelText).
		Msg("record started")
}

func (o *LogObserver) OnDecodeError(rec records.LabelRecord, frame int, err error) {
	o.logger.Warn().
		Err(err).
		Str("video", rec.VideoPath).
		Int("frame", frame).
		Msg("decode error")
}

func (o *LogObserver) OnOutcome(out video.Outcome) {
	var ev *zerolog.Event
	switch out.Status {
	case video.StatusSuccess:
		ev = o.logger.Info()
	case video.StatusSkipped:
		ev = o.logger.Warn()
	default:
		ev = o.logger.Error().Err(out.Err)
	}

	ev.Str("subject", out.Record.Subject).
		Str("camera", out.Record.Camera).
		Str("label", out.Record.LabelText).
		Str("status", string(out.Status)).
		Str("output", out.Output).
		Int("frames", out.FramesWritten).
		Dur("elapsed", out.Elapsed)
	if out.Reason != "" {
		ev = ev.Str("reason", out.Reason)
	}
	ev.Msg("record processed")
}
