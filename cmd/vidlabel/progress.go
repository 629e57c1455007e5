package main

import (
	"fmt"
	"io"

	"github.com/kikiluvv/vidlabel/internal/records"
	"github.com/kikiluvv/vidlabel/internal/video"
	"github.com/schollz/progressbar/v3"
)

// progressObserver advances a progress bar once per record
type progressObserver struct {
	bar *progressbar.ProgressBar
}

func newProgressObserver(total int, w io.Writer) *progressObserver {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Annotating"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
	return &progressObserver{bar: bar}
}

func (p *progressObserver) OnRecordStart(rec records.LabelRecord) {
	p.bar.Describe(rec.DestName(""))
}

func (p *progressObserver) OnDecodeError(records.LabelRecord, int, error) {}

func (p *progressObserver) OnOutcome(video.Outcome) {
	_ = p.bar.Add(1)
}

func (p *progressObserver) finish() {
	_ = p.bar.Finish()
}
