package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kikiluvv/vidlabel/internal/batch"
	"github.com/kikiluvv/vidlabel/internal/config"
	"github.com/kikiluvv/vidlabel/internal/ffmpeg"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "vidlabel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLabelsCommand(t *testing.T) {
	cfg := writeConfig(t, t.TempDir(), "")
	out, err := runCLI(t, "labels", "--config", cfg)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 11)
	assert.Contains(t, lines[1], "walk")
	assert.Contains(t, lines[10], "other")
}

func TestConfigShowReflectsFile(t *testing.T) {
	cfg := writeConfig(t, t.TempDir(), "output:\n  on_collision: skip\n")
	out, err := runCLI(t, "config", "show", "--config", cfg)
	require.NoError(t, err)

	var shown config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "skip", shown.Output.OnCollision)
	assert.Equal(t, "mp4", shown.Output.Extension)
}

func TestApplyAnnotateFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "annotate"}
	cmd.Flags().AddFlagSet(annotateCmd.Flags())
	require.NoError(t, cmd.ParseFlags([]string{"--clip-only", "--output-dir", "out", "--record-timeout", "30s", "--suffix", "avi", "--strict-decode"}))

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	applyAnnotateFlags(cmd, cfg)

	assert.Equal(t, "clip", cfg.Batch.Mode)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, 30*time.Second, cfg.Batch.RecordTimeout)
	assert.Equal(t, "avi", cfg.Input.Suffix)
	assert.Equal(t, "overwrite", cfg.Output.OnCollision)
	assert.False(t, cfg.Batch.FailFast)
	assert.True(t, cfg.FFmpeg.StrictDecode)
}

func TestAnnotateEndToEnd(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "videos", "take1.mp4")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0755))
	gen := exec.Command("ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration=5:size=64x48:rate=10",
		"-c:v", "mpeg4", "-pix_fmt", "yuv420p", src)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("could not generate test video: %v: %s", err, out)
	}

	sheet := filepath.Join(dir, "labels.csv")
	require.NoError(t, os.WriteFile(sheet, []byte(strings.Join([]string{
		"path,label,start,end,subject,camera",
		"take1,1,1.0,2.0,s01,cam1",
		"take1,0,6.0,7.0,s01,cam2",
		"missing,2,0,1,s02,cam1",
		"take1,42,0,1,s03,cam1",
	}, "\n")), 0644))

	cfg := writeConfig(t, dir, "output:\n  video_codec: mpeg4\n")
	outDir := filepath.Join(dir, "out")
	summaryPath := filepath.Join(dir, "summary.yaml")

	_, err := runCLI(t, "annotate", sheet,
		"--config", cfg,
		"--base-dir", filepath.Join(dir, "videos"),
		"--suffix", "mp4",
		"--output-dir", outDir,
		"--clip-only",
		"--preview",
		"--summary", summaryPath,
		"--strict",
	)
	require.Error(t, err, "strict mode must fail with a rejected row and a missing video")

	data, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	var summary batch.Summary
	require.NoError(t, yaml.Unmarshal(data, &summary))
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Rejected)

	clip := filepath.Join(outDir, "s01_cam1_fall.mp4")
	require.FileExists(t, clip)
	assert.FileExists(t, filepath.Join(outDir, "s01_cam1_fall.jpg"))
	assert.NoFileExists(t, filepath.Join(outDir, "s01_cam2_walk.mp4"))

	probe, err := ffmpeg.New(zerolog.Nop(), ffmpeg.Options{})
	require.NoError(t, err)
	info, err := probe.ProbeVideo(context.Background(), clip)
	require.NoError(t, err)
	assert.Equal(t, 64, info.Width)
	assert.Equal(t, 48, info.Height)
	if info.Frames > 0 {
		assert.Equal(t, int64(11), info.Frames, fmt.Sprintf("clip %s", clip))
	}
}

func TestLogFileReceivesCLIEvents(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	logOut := filepath.Join(dir, "run.log")
	target := filepath.Join(dir, "generated.yaml")
	t.Cleanup(func() {
		if logFile != nil {
			_ = logFile.Close()
			logFile = nil
		}
		_ = rootCmd.PersistentFlags().Set("log-file", "")
	})

	_, err := runCLI(t, "config", "init", target, "--config", cfg, "--log-file", logOut)
	require.NoError(t, err)
	require.FileExists(t, target)

	data, err := os.ReadFile(logOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"cli"`)
	assert.Contains(t, string(data), "config written")
}
