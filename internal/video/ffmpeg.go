package video

import (
	"context"

	"github.com/kikiluvv/vidlabel/internal/ffmpeg"
)

// FFmpegCodec decodes and encodes through ffmpeg subprocesses
type FFmpegCodec struct {
	exec        *ffmpeg.Executor
	videoCodec  string
	pixelFormat string
}

// NewFFmpegCodec creates a codec that writes videoCodec/pixelFormat outputs
func NewFFmpegCodec(exec *ffmpeg.Executor, videoCodec, pixelFormat string) *FFmpegCodec {
	return &FFmpegCodec{
		exec:        exec,
		videoCodec:  videoCodec,
		pixelFormat: pixelFormat,
	}
}

// Open starts decoding path
func (c *FFmpegCodec) Open(ctx context.Context, path string) (Source, error) {
	r, err := c.exec.OpenReader(ctx, path)
	if err != nil {
		return nil, err
	}
	return ffmpegSource{r}, nil
}

// Create starts an encoder sized and timed like info
func (c *FFmpegCodec) Create(ctx context.Context, path string, info StreamInfo) (Sink, error) {
	return c.exec.OpenWriter(ctx, path, ffmpeg.WriterOptions{
		Width:       info.Width,
		Height:      info.Height,
		FPS:         info.FPS,
		FrameRate:   info.FrameRate,
		VideoCodec:  c.videoCodec,
		PixelFormat: c.pixelFormat,
	})
}

type ffmpegSource struct {
	*ffmpeg.FrameReader
}

func (s ffmpegSource) Info() StreamInfo {
	info := s.FrameReader.Info()
	return StreamInfo{
		Width:     info.Width,
		Height:    info.Height,
		FPS:       info.FPS,
		FrameRate: info.FrameRate,
	}
}
