// Package frametime converts between frame indices and elapsed seconds.
//
// All functions are pure. A frame at index i of a stream running at rate fps
// is presented at i/fps seconds, and a label window [start, end] is inclusive
// on both ends.
package frametime

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRate is returned for a frame rate that is not a finite positive number.
var ErrInvalidRate = errors.New("invalid frame rate")

// ValidateRate reports ErrInvalidRate unless rate is finite and > 0.
func ValidateRate(rate float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	return nil
}

// Timestamp returns the presentation time in seconds of the frame at index.
func Timestamp(index int, rate float64) (float64, error) {
	if err := ValidateRate(rate); err != nil {
		return 0, err
	}
	if index < 0 {
		return 0, fmt.Errorf("negative frame index %d", index)
	}
	return float64(index) / rate, nil
}

// InWindow reports whether t lies in the inclusive window [start, end].
func InWindow(t, start, end float64) bool {
	return start <= t && t <= end
}

// FrameRange returns the inclusive index range [first, last] of frames whose
// timestamps fall inside [start, end]. The range is empty when last < first.
//
// The bounds are derived from start*rate and end*rate and then nudged until
// they agree with InWindow(Timestamp(i)), so callers can use either form.
func FrameRange(start, end, rate float64) (first, last int, err error) {
	if err := ValidateRate(rate); err != nil {
		return 0, -1, err
	}
	if math.IsNaN(start) || math.IsNaN(end) || end < start || end < 0 {
		return 0, -1, nil
	}
	if start < 0 {
		start = 0
	}

	first = toIndex(math.Ceil(start * rate))
	for first > 0 && float64(first-1)/rate >= start {
		first--
	}
	for first < MaxIndex && float64(first)/rate < start {
		first++
	}

	last = toIndex(math.Floor(end * rate))
	for last < MaxIndex && float64(last+1)/rate <= end {
		last++
	}
	for last >= 0 && float64(last)/rate > end {
		last--
	}

	if last < first || float64(first)/rate < start {
		return 0, -1, nil
	}
	return first, last, nil
}

// MaxIndex is the largest frame index FrameRange reports. Indices up to it are
// exact in float64, so the window arithmetic stays monotonic.
const MaxIndex = 1<<53 - 1

func toIndex(x float64) int {
	if x >= MaxIndex {
		return MaxIndex
	}
	if x <= 0 {
		return 0
	}
	return int(x)
}

// Count returns the number of frames in [first, last], zero when empty.
func Count(first, last int) int {
	if last < first {
		return 0
	}
	return last - first + 1
}
