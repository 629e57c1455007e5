package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kikiluvv/vidlabel/internal/records"
	"github.com/kikiluvv/vidlabel/internal/video"
	"gopkg.in/yaml.v3"
)

// Options configures one batch run
type Options struct {
	Mode     video.Mode
	FailFast bool
	// RecordTimeout bounds each record; zero means no limit
	RecordTimeout time.Duration
	// Rejected rows are carried into the summary only
	Rejected []*records.RowError
}

// Summary is the aggregate result of a batch run
type Summary struct {
	RunID      string    `yaml:"run_id"`
	Mode       string    `yaml:"mode"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`

	Total     int `yaml:"total"`
	Succeeded int `yaml:"succeeded"`
	Skipped   int `yaml:"skipped"`
	Failed    int `yaml:"failed"`
	Rejected  int `yaml:"rejected"`
	NotRun    int `yaml:"not_run"`

	StoppedEarly bool `yaml:"stopped_early,omitempty"`

	Items        []ItemResult  `yaml:"items"`
	RejectedRows []RejectedRow `yaml:"rejected_rows,omitempty"`
}

// ItemResult is the serialisable form of one outcome
type ItemResult struct {
	Line           int     `yaml:"line"`
	Video          string  `yaml:"video"`
	Subject        string  `yaml:"subject"`
	Camera         string  `yaml:"camera"`
	Label          string  `yaml:"label"`
	Start          float64 `yaml:"start"`
	End            float64 `yaml:"end"`
	Status         string  `yaml:"status"`
	Reason         string  `yaml:"reason,omitempty"`
	Error          string  `yaml:"error,omitempty"`
	Output         string  `yaml:"output"`
	FramesRead     int     `yaml:"frames_read"`
	FramesWritten  int     `yaml:"frames_written"`
	FramesOverlaid int     `yaml:"frames_overlaid"`
	Elapsed        string  `yaml:"elapsed"`
}

// RejectedRow is a label sheet row that never reached the annotator
type RejectedRow struct {
	Line   int    `yaml:"line"`
	Reason string `yaml:"reason"`
}

func newSummary(mode video.Mode, total int) *Summary {
	return &Summary{
		RunID:     uuid.NewString(),
		Mode:      mode.String(),
		StartedAt: time.Now(),
		Total:     total,
		Items:     make([]ItemResult, 0, total),
	}
}

func (s *Summary) add(out video.Outcome) {
	switch out.Status {
	case video.StatusSuccess:
		s.Succeeded++
	case video.StatusSkipped:
		s.Skipped++
	default:
		s.Failed++
	}

	item := ItemResult{
		Line:           out.Record.Line,
		Video:          out.Record.VideoPath,
		Subject:        out.Record.Subject,
		Camera:         out.Record.Camera,
		Label:          out.Record.LabelText,
		Start:          out.Record.Start,
		End:            out.Record.End,
		Status:         string(out.Status),
		Reason:         out.Reason,
		Output:         out.Output,
		FramesRead:     out.FramesRead,
		FramesWritten:  out.FramesWritten,
		FramesOverlaid: out.FramesOverlaid,
		Elapsed:        out.Elapsed.Round(time.Millisecond).String(),
	}
	if out.Err != nil {
		item.Error = out.Err.Error()
	}
	s.Items = append(s.Items, item)
}

func (s *Summary) addRejected(rows []*records.RowError) {
	for _, r := range rows {
		s.RejectedRows = append(s.RejectedRows, RejectedRow{Line: r.Line, Reason: r.Reason})
	}
	s.Rejected = len(s.RejectedRows)
}

// HasFailures reports whether any record failed
func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

// Clean reports a run with no failures, no rejected rows and nothing left unrun
func (s *Summary) Clean() bool {
	return s.Failed == 0 && s.Rejected == 0 && s.NotRun == 0
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d records: %d succeeded, %d skipped, %d failed, %d not run, %d rows rejected",
		s.Total, s.Succeeded, s.Skipped, s.Failed, s.NotRun, s.Rejected)
}

// Save writes the summary as YAML
func (s *Summary) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create summary dir: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}
