package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
)

// FrameReader decodes a video file into rgba frames, in presentation order.
type FrameReader struct {
	info   *VideoInfo
	proc   *process
	out    *bufio.Reader
	frames int
	closed bool
}

// OpenReader probes path and starts a decoder that streams raw rgba frames.
func (e *Executor) OpenReader(ctx context.Context, path string) (*FrameReader, error) {
	info, err := e.ProbeVideo(ctx, path)
	if err != nil {
		return nil, err
	}

	args := []string{}
	if e.strictDecode {
		args = append(args, "-xerror")
	}
	args = append(args,
		"-noautorotate",
		"-i", path,
		"-map", "0:v:0",
		"-an", "-sn",
		"-vsync", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)

	var stdout io.ReadCloser
	proc, err := e.start(ctx, args, func(cmd *exec.Cmd) error {
		var err error
		stdout, err = cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("failed to create stdout pipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("input", path).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", info.FPS).
		Msg("decoder started")

	return &FrameReader{
		info: info,
		proc: proc,
		out:  bufio.NewReaderSize(stdout, info.Width*info.Height*bytesPerPixel),
	}, nil
}

// Info returns the probed stream metadata
func (r *FrameReader) Info() *VideoInfo {
	return r.info
}

// Frames returns how many frames have been decoded so far
func (r *FrameReader) Frames() int {
	return r.frames
}

// Next decodes the next frame. It returns io.EOF after the last frame when the
// decoder exited cleanly; any other error means the stream is broken at the
// current frame index.
func (r *FrameReader) Next() (*image.RGBA, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	img := image.NewRGBA(image.Rect(0, 0, r.info.Width, r.info.Height))
	_, err := io.ReadFull(r.out, img.Pix)
	switch {
	case err == nil:
		r.frames++
		return img, nil
	case errors.Is(err, io.EOF):
		if werr := r.proc.wait(); werr != nil {
			return nil, fmt.Errorf("decode failed after %d frames: %w", r.frames, werr)
		}
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		werr := r.proc.wait()
		return nil, fmt.Errorf("truncated frame %d: %w", r.frames, errors.Join(err, werr))
	default:
		return nil, fmt.Errorf("failed to read frame %d: %w", r.frames, err)
	}
}

// Close stops the decoder if it is still running. Safe to call more than once.
func (r *FrameReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.proc.kill()
	return nil
}
