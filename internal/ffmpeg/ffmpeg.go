package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Executor handles all ffmpeg operations
type Executor struct {
	logger       zerolog.Logger
	ffmpegPath   string
	ffprobePath  string
	threads      int
	strictDecode bool
}

// New creates a new ffmpeg executor
func New(logger zerolog.Logger, opts Options) (*Executor, error) {
	ffmpegBin := opts.FFmpegPath
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	ffprobeBin := opts.FFprobePath
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}

	ffmpegPath, err := exec.LookPath(ffmpegBin)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	ffprobePath, err := exec.LookPath(ffprobeBin)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}

	return &Executor{
		logger:       logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:   ffmpegPath,
		ffprobePath:  ffprobePath,
		threads:      opts.Threads,
		strictDecode: opts.StrictDecode,
	}, nil
}

// baseArgs are prepended to every ffmpeg invocation
func (e *Executor) baseArgs() []string {
	args := []string{"-hide_banner", "-nostdin", "-loglevel", "error"}
	if e.threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", e.threads))
	}
	return args
}

// process is a running ffmpeg child whose stderr is drained in the background
type process struct {
	cmd    *exec.Cmd
	tail   *lineTail
	done   chan struct{}
	once   sync.Once
	err    error
	logger zerolog.Logger
}

// start launches ffmpeg with args. stdin/stdout pipes are created by the caller
// before start is called.
func (e *Executor) start(ctx context.Context, args []string, configure func(cmd *exec.Cmd) error) (*process, error) {
	args = append(e.baseArgs(), args...)

	e.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	if err := configure(cmd); err != nil {
		return nil, err
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	p := &process{
		cmd:    cmd,
		tail:   newLineTail(stderrTailLines),
		done:   make(chan struct{}),
		logger: e.logger,
	}

	go func() {
		defer close(p.done)
		p.streamOutput(stderr)
	}()

	return p, nil
}

// streamOutput logs ffmpeg stderr and keeps the last lines for error reports
func (p *process) streamOutput(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		p.tail.add(line)
		p.logger.Debug().Str("ffmpeg", line).Msg("stderr")
	}
}

// wait reaps the process once and reports a non-zero exit with its stderr tail
func (p *process) wait() error {
	p.once.Do(func() {
		<-p.done
		if err := p.cmd.Wait(); err != nil {
			if msg := p.tail.String(); msg != "" {
				p.err = fmt.Errorf("ffmpeg execution failed: %w: %s", err, msg)
			} else {
				p.err = fmt.Errorf("ffmpeg execution failed: %w", err)
			}
		}
	})
	return p.err
}

// kill stops a still-running process and reaps it
func (p *process) kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.wait()
}

// lineTail is a bounded ring of the most recent lines
type lineTail struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func newLineTail(max int) *lineTail {
	return &lineTail{max: max}
}

func (t *lineTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "; ")
}
