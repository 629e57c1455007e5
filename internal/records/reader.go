package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kikiluvv/vidlabel/pkg/util"
)

// Columns is the expected column count of a label sheet:
// path, label, start, end, subject, camera.
const Columns = 6

// RowError describes a label sheet row that was rejected.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ReadResult holds accepted records and rejected rows in file order.
type ReadResult struct {
	Records  []LabelRecord
	Rejected []*RowError
}

// Reader parses label sheets.
type Reader struct {
	Resolver Resolver
}

// NewReader creates a reader that resolves video paths with res.
func NewReader(res Resolver) *Reader {
	return &Reader{Resolver: res}
}

// ReadFile opens path and parses it.
func (rd *Reader) ReadFile(path string) (*ReadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open label sheet: %w", err)
	}
	defer f.Close()

	return rd.Read(f)
}

// Read parses a label sheet. A malformed row is rejected and parsing continues;
// only an unreadable stream is returned as an error.
func (rd *Reader) Read(r io.Reader) (*ReadResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	res := &ReadResult{}
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Rejected = append(res.Rejected, &RowError{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("failed to read label sheet: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if isBlank(row) {
			continue
		}
		if first {
			first = false
			if isHeader(row) {
				continue
			}
		}

		rec, rerr := rd.parseRow(row)
		if rerr != "" {
			res.Rejected = append(res.Rejected, &RowError{Line: line, Reason: rerr})
			continue
		}
		rec.Line = line
		res.Records = append(res.Records, rec)
	}

	return res, nil
}

func (rd *Reader) parseRow(row []string) (LabelRecord, string) {
	if len(row) != Columns {
		return LabelRecord{}, fmt.Sprintf("expected %d columns, got %d", Columns, len(row))
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	path := row[0]
	if path == "" {
		return LabelRecord{}, "empty video path"
	}

	code, err := strconv.Atoi(row[1])
	if err != nil {
		return LabelRecord{}, fmt.Sprintf("label %q is not an integer", row[1])
	}

	start, err := util.ParseSeconds(row[2])
	if err != nil {
		return LabelRecord{}, fmt.Sprintf("start: %v", err)
	}
	end, err := util.ParseSeconds(row[3])
	if err != nil {
		return LabelRecord{}, fmt.Sprintf("end: %v", err)
	}

	if row[4] == "" || row[5] == "" {
		return LabelRecord{}, "subject and camera are required"
	}

	rec, err := New(rd.Resolver.Resolve(path), code, start, end, row[4], row[5])
	if err != nil {
		return LabelRecord{}, err.Error()
	}
	return rec, ""
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// isHeader treats a first row whose label and start columns are not numeric as a header.
func isHeader(row []string) bool {
	if len(row) < 3 {
		return false
	}
	if _, err := strconv.Atoi(strings.TrimSpace(row[1])); err == nil {
		return false
	}
	_, err := util.ParseSeconds(row[2])
	return err != nil
}
