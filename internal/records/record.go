// Package records holds the LabelRecord model, the fixed label table and the
// CSV reader that turns label sheets into validated records.
package records

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/kikiluvv/vidlabel/pkg/util"
)

// LabelRecord is one validated row of a label sheet.
type LabelRecord struct {
	VideoPath string
	LabelCode int
	LabelText string
	Start     float64
	End       float64
	Subject   string
	Camera    string

	// Line is the 1-based CSV line the record came from, 0 if built in code.
	Line int
}

// New validates its arguments and builds a LabelRecord.
func New(videoPath string, code int, start, end float64, subject, camera string) (LabelRecord, error) {
	text, err := LabelText(code)
	if err != nil {
		return LabelRecord{}, err
	}
	if start < 0 {
		return LabelRecord{}, fmt.Errorf("start %.3f is negative", start)
	}
	if end < start {
		return LabelRecord{}, fmt.Errorf("end %.3f is before start %.3f", end, start)
	}
	return LabelRecord{
		VideoPath: videoPath,
		LabelCode: code,
		LabelText: text,
		Start:     start,
		End:       end,
		Subject:   subject,
		Camera:    camera,
	}, nil
}

// String identifies the record in logs.
func (r LabelRecord) String() string {
	return fmt.Sprintf("%s/%s/%s [%s-%s]", r.Subject, r.Camera, r.LabelText,
		util.FormatSeconds(r.Start), util.FormatSeconds(r.End))
}

// DestName derives the output file name from subject, camera and label text.
// Records sharing all three map to the same name.
func DestName(subject, camera, label, ext string) string {
	name := strings.Join([]string{util.SafeName(subject), util.SafeName(camera), util.SafeName(label)}, "_")
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// DestName derives the record's output file name.
func (r LabelRecord) DestName(ext string) string {
	return DestName(r.Subject, r.Camera, r.LabelText, ext)
}

// Resolver builds video paths from the path column of a label sheet.
type Resolver struct {
	BaseDir string
	Suffix  string
}

// Resolve joins BaseDir and appends Suffix. Absolute paths skip BaseDir.
// A bare extension suffix such as "mp4" gets its leading dot.
func (r Resolver) Resolve(p string) string {
	p = strings.TrimSpace(p)
	if suffix := r.suffix(); suffix != "" && !strings.HasSuffix(p, suffix) {
		p += suffix
	}
	if r.BaseDir == "" || filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.BaseDir, p)
}

func (r Resolver) suffix() string {
	s := strings.TrimSpace(r.Suffix)
	if s == "" || strings.HasPrefix(s, ".") {
		return s
	}
	if !strings.Contains(path.Base(filepath.ToSlash(s)), ".") {
		return "." + s
	}
	return s
}
