package ffmpeg

import "time"

// VideoInfo contains metadata about the first video stream of a file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	FrameRate  string // rational as reported by ffprobe, e.g. "30000/1001"
	Frames     int64  // 0 when the container does not say
	VideoCodec string
	HasAudio   bool
}

// Options configures the executor
type Options struct {
	FFmpegPath  string
	FFprobePath string
	Threads     int

	// StrictDecode makes the decoder exit on the first corrupt packet
	// instead of concealing it. Off, concealed corruption decodes as
	// ordinary frames and only a truncated stream or non-zero exit fails.
	StrictDecode bool
}

// WriterOptions configures an encoder process
type WriterOptions struct {
	Width       int
	Height      int
	FPS         float64
	FrameRate   string // preferred over FPS when set
	VideoCodec  string
	PixelFormat string
}

// Default encoding settings
const (
	DefaultVideoCodec  = "libx264"
	DefaultPixelFormat = "yuv420p"
	DefaultContainer   = "mp4"
)

// bytesPerPixel of the rgba raw frames exchanged with ffmpeg
const bytesPerPixel = 4

// stderrTailLines is how many trailing stderr lines are kept for error messages
const stderrTailLines = 8
