package main

import (
	"fmt"
	"time"

	"github.com/kikiluvv/vidlabel/internal/batch"
	"github.com/kikiluvv/vidlabel/internal/config"
	"github.com/kikiluvv/vidlabel/internal/ffmpeg"
	"github.com/kikiluvv/vidlabel/internal/logging"
	"github.com/kikiluvv/vidlabel/internal/overlay"
	"github.com/kikiluvv/vidlabel/internal/preview"
	"github.com/kikiluvv/vidlabel/internal/records"
	"github.com/kikiluvv/vidlabel/internal/video"
	"github.com/kikiluvv/vidlabel/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var annotateFlags struct {
	outputDir     string
	baseDir       string
	suffix        string
	onCollision   string
	summary       string
	clipOnly      bool
	strict        bool
	strictDecode  bool
	failFast      bool
	preview       bool
	progress      bool
	recordTimeout time.Duration
}

var annotateCmd = &cobra.Command{
	Use:   "annotate [label sheet csv]",
	Short: "Annotate every video listed in a label sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.WithComponent("cli")
		cfg := *config.FromContext(cmd.Context())
		applyAnnotateFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		mode, err := video.ParseMode(cfg.Batch.Mode)
		if err != nil {
			return err
		}
		policy, err := video.ParseCollisionPolicy(cfg.Output.OnCollision)
		if err != nil {
			return err
		}

		sheet, err := records.NewReader(records.Resolver{
			BaseDir: cfg.Input.BaseDir,
			Suffix:  cfg.Input.Suffix,
		}).ReadFile(args[0])
		if err != nil {
			return err
		}
		for _, row := range sheet.Rejected {
			logger.Warn().Int("line", row.Line).Str("reason", row.Reason).Msg("skipping row")
		}

		if !util.FileExists(cfg.Output.Dir) {
			if err := util.EnsureDir(cfg.Output.Dir); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			logger.Info().Str("dir", cfg.Output.Dir).Msg("created output directory")
		}

		exec, err := ffmpeg.New(log.Logger, ffmpeg.Options{
			FFmpegPath:   cfg.FFmpeg.BinaryPath,
			FFprobePath:  cfg.FFmpeg.ProbePath,
			Threads:      cfg.FFmpeg.Threads,
			StrictDecode: cfg.FFmpeg.StrictDecode,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize ffmpeg: %w", err)
		}

		fonts := overlay.NewRegistry()
		for name, path := range cfg.Fonts {
			fonts.Register(name, path)
		}
		renderer, err := overlay.NewRenderer(cfg.Overlay, fonts)
		if err != nil {
			return err
		}
		defer renderer.Close()

		observers := video.Observers{batch.NewLogObserver(log.Logger)}
		var bar *progressObserver
		if annotateFlags.progress {
			bar = newProgressObserver(len(sheet.Records), cmd.ErrOrStderr())
			observers = append(observers, bar)
		}

		opts := []video.Option{video.WithObserver(observers)}
		if cfg.Output.Preview {
			opts = append(opts, video.WithPreview(preview.New(cfg.Output.PreviewWidth, cfg.Output.PreviewQuality)))
		}

		codec := video.NewFFmpegCodec(exec, cfg.Output.VideoCodec, cfg.Output.PixelFormat)
		annotator := video.NewAnnotator(log.Logger, codec, codec, renderer, video.Config{
			OutputDir:   cfg.Output.Dir,
			Extension:   cfg.Output.Extension,
			OnCollision: policy,
		}, opts...)

		summary, runErr := batch.New(log.Logger, annotator).Run(cmd.Context(), sheet.Records, batch.Options{
			Mode:          mode,
			FailFast:      cfg.Batch.FailFast,
			RecordTimeout: cfg.Batch.RecordTimeout,
			Rejected:      sheet.Rejected,
		})
		if bar != nil {
			bar.finish()
		}

		if cfg.Output.SummaryFile != "" {
			if err := summary.Save(cfg.Output.SummaryFile); err != nil {
				logger.Error().Err(err).Str("path", cfg.Output.SummaryFile).Msg("failed to write summary")
			} else {
				logger.Info().Str("path", cfg.Output.SummaryFile).Msg("summary written")
			}
		}

		logger.Info().Str("run_id", summary.RunID).Msg(summary.String())

		if runErr != nil {
			return runErr
		}
		if cfg.Batch.Strict && !summary.Clean() {
			return fmt.Errorf("strict mode: %s", summary)
		}
		return nil
	},
}

// applyAnnotateFlags overrides config values with flags given on the command line
func applyAnnotateFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.Output.Dir = annotateFlags.outputDir
	}
	if flags.Changed("base-dir") {
		cfg.Input.BaseDir = annotateFlags.baseDir
	}
	if flags.Changed("suffix") {
		cfg.Input.Suffix = annotateFlags.suffix
	}
	if flags.Changed("on-collision") {
		cfg.Output.OnCollision = annotateFlags.onCollision
	}
	if flags.Changed("summary") {
		cfg.Output.SummaryFile = annotateFlags.summary
	}
	if flags.Changed("clip-only") {
		cfg.Batch.Mode = video.FullVideo.String()
		if annotateFlags.clipOnly {
			cfg.Batch.Mode = video.ClipOnly.String()
		}
	}
	if flags.Changed("strict") {
		cfg.Batch.Strict = annotateFlags.strict
	}
	if flags.Changed("strict-decode") {
		cfg.FFmpeg.StrictDecode = annotateFlags.strictDecode
	}
	if flags.Changed("fail-fast") {
		cfg.Batch.FailFast = annotateFlags.failFast
	}
	if flags.Changed("preview") {
		cfg.Output.Preview = annotateFlags.preview
	}
	if flags.Changed("record-timeout") {
		cfg.Batch.RecordTimeout = annotateFlags.recordTimeout
	}
}

func init() {
	f := annotateCmd.Flags()
	f.StringVarP(&annotateFlags.outputDir, "output-dir", "o", "output_videos", "directory for annotated videos")
	f.StringVar(&annotateFlags.baseDir, "base-dir", "", "base directory prepended to relative video paths")
	f.StringVar(&annotateFlags.suffix, "suffix", "", "suffix appended to video paths, e.g. .mp4")
	f.StringVar(&annotateFlags.onCollision, "on-collision", "overwrite", "when the output exists: overwrite or skip")
	f.StringVar(&annotateFlags.summary, "summary", "", "write a YAML run summary to this file")
	f.BoolVar(&annotateFlags.clipOnly, "clip-only", false, "write only the labelled window instead of the full video")
	f.BoolVar(&annotateFlags.strict, "strict", false, "exit non-zero if any row is rejected or any record fails")
	f.BoolVar(&annotateFlags.strictDecode, "strict-decode", false, "fail a record on the first corrupt packet instead of concealing it")
	f.BoolVar(&annotateFlags.failFast, "fail-fast", false, "stop after the first failed record")
	f.BoolVar(&annotateFlags.preview, "preview", false, "save a JPEG preview of the first labelled frame")
	f.BoolVar(&annotateFlags.progress, "progress", false, "show a progress bar")
	f.DurationVar(&annotateFlags.recordTimeout, "record-timeout", 0, "per-record time limit (0 = none)")
}
