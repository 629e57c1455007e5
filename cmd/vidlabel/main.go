package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kikiluvv/vidlabel/internal/config"
	"github.com/kikiluvv/vidlabel/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string
	logPath   string
	logFile   *os.File
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if logFile != nil {
		_ = logFile.Close()
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vidlabel",
	Short: "vidlabel - burn activity labels into video clips",
	Long: "Reads a label sheet of (video, label, start, end, subject, camera) rows and writes\n" +
		"annotated videos or labelled clips, one per row, into an output directory.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		opts := logging.Options{Verbose: verbose, Format: logFormat}
		if logPath != "" && logFile == nil {
			f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			logFile = f
		}
		if logFile != nil {
			opts.File = logFile
		}
		if err := logging.Setup(opts); err != nil {
			return err
		}

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./vidlabel.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console or json")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-file", "", "also append JSON logs to this file")

	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(labelsCmd)
	rootCmd.AddCommand(configCmd)
}
