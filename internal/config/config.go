package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kikiluvv/vidlabel/internal/ffmpeg"
	"github.com/kikiluvv/vidlabel/internal/overlay"
	"github.com/kikiluvv/vidlabel/internal/preview"
	"github.com/kikiluvv/vidlabel/internal/video"
	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Input settings
	Input InputConfig `yaml:"input"`

	// Output settings
	Output OutputConfig `yaml:"output"`

	// Overlay styling
	Overlay overlay.Style `yaml:"overlay"`

	// Extra fonts by name -> ttf/otf path
	Fonts map[string]string `yaml:"fonts,omitempty"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Batch behavior
	Batch BatchConfig `yaml:"batch"`
}

type InputConfig struct {
	BaseDir string `yaml:"base_dir"`
	Suffix  string `yaml:"suffix"`
}

type OutputConfig struct {
	Dir            string `yaml:"dir"`
	Extension      string `yaml:"extension"`
	VideoCodec     string `yaml:"video_codec"`
	PixelFormat    string `yaml:"pixel_format"`
	OnCollision    string `yaml:"on_collision"`
	Preview        bool   `yaml:"preview"`
	PreviewWidth   int    `yaml:"preview_width"`
	PreviewQuality int    `yaml:"preview_quality"`
	SummaryFile    string `yaml:"summary_file"`
}

type FFmpegConfig struct {
	BinaryPath   string `yaml:"binary_path"`
	ProbePath    string `yaml:"probe_path"`
	Threads      int    `yaml:"threads"`
	StrictDecode bool   `yaml:"strict_decode"`
}

type BatchConfig struct {
	Mode          string        `yaml:"mode"`
	Strict        bool          `yaml:"strict"`
	FailFast      bool          `yaml:"fail_fast"`
	RecordTimeout time.Duration `yaml:"record_timeout"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	if c.Output.Extension == "" {
		return fmt.Errorf("output.extension is required")
	}
	if _, err := video.ParseCollisionPolicy(c.Output.OnCollision); err != nil {
		return fmt.Errorf("output.on_collision: %w", err)
	}
	if _, err := video.ParseMode(c.Batch.Mode); err != nil {
		return fmt.Errorf("batch.mode: %w", err)
	}
	if c.Batch.RecordTimeout < 0 {
		return fmt.Errorf("batch.record_timeout must not be negative")
	}
	if c.FFmpeg.Threads < 0 {
		return fmt.Errorf("ffmpeg.threads must not be negative")
	}
	if err := c.Overlay.Validate(); err != nil {
		return fmt.Errorf("overlay: %w", err)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Input: InputConfig{},
		Output: OutputConfig{
			Dir:            "output_videos",
			Extension:      ffmpeg.DefaultContainer,
			VideoCodec:     ffmpeg.DefaultVideoCodec,
			PixelFormat:    ffmpeg.DefaultPixelFormat,
			OnCollision:    string(video.CollisionOverwrite),
			PreviewWidth:   preview.DefaultWidth,
			PreviewQuality: preview.DefaultQuality,
		},
		Overlay: overlay.DefaultStyle(),
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
		},
		Batch: BatchConfig{
			Mode: video.FullVideo.String(),
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./vidlabel.yaml",
		"./vidlabel.yml",
		filepath.Join(os.Getenv("HOME"), ".vidlabel", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
