package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/kikiluvv/vidlabel/internal/config"
	"github.com/kikiluvv/vidlabel/internal/ffmpeg"
	"github.com/kikiluvv/vidlabel/internal/logging"
	"github.com/kikiluvv/vidlabel/internal/records"
	"github.com/kikiluvv/vidlabel/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var probeCmd = &cobra.Command{
	Use:   "probe [video]",
	Short: "Show the stream properties used for frame timing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := ffmpeg.New(log.Logger, ffmpeg.Options{
			FFmpegPath:  cfg.FFmpeg.BinaryPath,
			FFprobePath: cfg.FFmpeg.ProbePath,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize ffmpeg: %w", err)
		}

		info, err := exec.ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "file\t%s\n", info.FilePath)
		fmt.Fprintf(w, "size\t%dx%d\n", info.Width, info.Height)
		fmt.Fprintf(w, "frame rate\t%s (%.3f fps)\n", info.FrameRate, info.FPS)
		fmt.Fprintf(w, "duration\t%s\n", util.FormatSeconds(info.Duration.Seconds()))
		if info.Frames > 0 {
			fmt.Fprintf(w, "frames\t%d\n", info.Frames)
		}
		fmt.Fprintf(w, "codec\t%s\n", info.VideoCodec)
		fmt.Fprintf(w, "audio\t%t\n", info.HasAudio)
		return w.Flush()
	},
}

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List the label codes accepted in label sheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tLABEL")
		for _, l := range records.Labels() {
			fmt.Fprintf(w, "%d\t%s\n", l.Code, l.Text)
		}
		return w.Flush()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "vidlabel.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if util.FileExists(path) {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.FromContext(cmd.Context()).Save(path); err != nil {
			return err
		}
		logger := logging.WithComponent("cli")
		logger.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
