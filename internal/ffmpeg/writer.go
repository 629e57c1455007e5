package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"

	"github.com/kikiluvv/vidlabel/pkg/util"
)

// FrameWriter encodes rgba frames into a video file.
type FrameWriter struct {
	opts   WriterOptions
	output string
	proc   *process
	in     io.WriteCloser
	frames int
	closed bool
	err    error
}

// OpenWriter starts an encoder writing to output. An existing file is overwritten.
func (e *Executor) OpenWriter(ctx context.Context, output string, opts WriterOptions) (*FrameWriter, error) {
	if output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", opts.Width, opts.Height)
	}

	rate := opts.FrameRate
	if util.ParseFrameRate(rate) <= 0 {
		if opts.FPS <= 0 {
			return nil, fmt.Errorf("invalid frame rate %v", opts.FPS)
		}
		rate = strconv.FormatFloat(opts.FPS, 'f', -1, 64)
	}

	codec := opts.VideoCodec
	if codec == "" {
		codec = DefaultVideoCodec
	}
	pixFmt := opts.PixelFormat
	if pixFmt == "" {
		pixFmt = DefaultPixelFormat
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", rate,
		"-i", "-",
		"-an",
		"-c:v", codec,
		"-pix_fmt", pixFmt,
		output,
	}

	var stdin io.WriteCloser
	proc, err := e.start(ctx, args, func(cmd *exec.Cmd) error {
		var err error
		stdin, err = cmd.StdinPipe()
		if err != nil {
			return fmt.Errorf("failed to create stdin pipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("output", output).
		Str("codec", codec).
		Str("rate", rate).
		Msg("encoder started")

	return &FrameWriter{
		opts:   opts,
		output: output,
		proc:   proc,
		in:     stdin,
	}, nil
}

// WriteFrame sends one frame to the encoder. The frame must match the
// writer's size.
func (w *FrameWriter) WriteFrame(img *image.RGBA) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}
	if w.err != nil {
		return w.err
	}

	b := img.Bounds()
	if b.Dx() != w.opts.Width || b.Dy() != w.opts.Height {
		return fmt.Errorf("frame size %dx%d does not match output %dx%d",
			b.Dx(), b.Dy(), w.opts.Width, w.opts.Height)
	}

	rowBytes := b.Dx() * bytesPerPixel
	if img.Stride == rowBytes {
		_, w.err = w.in.Write(img.Pix[:rowBytes*b.Dy()])
	} else {
		for y := 0; y < b.Dy() && w.err == nil; y++ {
			off := y * img.Stride
			_, w.err = w.in.Write(img.Pix[off : off+rowBytes])
		}
	}
	if w.err != nil {
		w.err = fmt.Errorf("failed to write frame %d: %w", w.frames, w.err)
		return w.err
	}

	w.frames++
	return nil
}

// Frames returns how many frames were accepted
func (w *FrameWriter) Frames() int {
	return w.frames
}

// Close flushes the encoder and waits for it to finish the container.
// Safe to call more than once.
func (w *FrameWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	cerr := w.in.Close()
	if cerr != nil {
		cerr = fmt.Errorf("failed to close encoder input: %w", cerr)
	}
	if err := errors.Join(w.proc.wait(), cerr); err != nil {
		return fmt.Errorf("encoder failed for %s: %w", w.output, err)
	}
	return nil
}
