package frametime

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp(t *testing.T) {
	ts, err := Timestamp(10, 10)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ts)

	ts, err = Timestamp(0, 29.97)
	require.NoError(t, err)
	assert.Equal(t, 0.0, ts)

	ts, err = Timestamp(3, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.3, ts)
}

func TestTimestampMonotonic(t *testing.T) {
	for _, rate := range []float64{1, 10, 23.976, 25, 29.97, 60} {
		prev := -1.0
		for i := 0; i < 500; i++ {
			ts, err := Timestamp(i, rate)
			require.NoError(t, err)
			assert.Equal(t, float64(i)/rate, ts)
			assert.GreaterOrEqual(t, ts, prev)
			prev = ts
		}
	}
}

func TestTimestampInvalidRate(t *testing.T) {
	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Timestamp(5, rate)
		assert.ErrorIs(t, err, ErrInvalidRate, "rate %v", rate)
	}
}

func TestTimestampNegativeIndex(t *testing.T) {
	_, err := Timestamp(-1, 10)
	assert.Error(t, err)
}

func TestInWindow(t *testing.T) {
	tests := []struct {
		name       string
		t          float64
		start, end float64
		want       bool
	}{
		{"inside", 1.5, 1, 2, true},
		{"at start", 1, 1, 2, true},
		{"at end", 2, 1, 2, true},
		{"before", 0.99, 1, 2, false},
		{"after", 2.01, 1, 2, false},
		{"point window hit", 3, 3, 3, true},
		{"point window miss", 3.1, 3, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InWindow(tt.t, tt.start, tt.end))
		})
	}
}

func TestFrameRangeTenFPS(t *testing.T) {
	first, last, err := FrameRange(1.0, 2.0, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, first)
	assert.Equal(t, 20, last)
	assert.Equal(t, 11, Count(first, last))
}

func TestFrameRangePointWindow(t *testing.T) {
	first, last, err := FrameRange(1.0, 1.0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, Count(first, last))
	assert.Equal(t, 10, first)

	// 1.05s falls between frames 10 and 11 at 10 fps
	first, last, err = FrameRange(1.05, 1.05, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, Count(first, last))
}

func TestFrameRangeMatchesInWindow(t *testing.T) {
	windows := [][2]float64{{0, 0}, {0.1, 0.7}, {1.0 / 3, 2.0 / 3}, {0.5, 0.5}, {2.2, 9.9}, {0, 100}}
	for _, rate := range []float64{3, 10, 23.976, 29.97, 30, 59.94} {
		for _, w := range windows {
			first, last, err := FrameRange(w[0], w[1], rate)
			require.NoError(t, err)

			for i := 0; i < 400; i++ {
				ts, _ := Timestamp(i, rate)
				inRange := i >= first && i <= last
				assert.Equal(t, InWindow(ts, w[0], w[1]), inRange,
					"rate=%v window=%v frame=%d", rate, w, i)
			}
		}
	}
}

func TestFrameRangeEmptyAndInvalid(t *testing.T) {
	first, last, err := FrameRange(2, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, Count(first, last))

	_, _, err = FrameRange(0, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestFrameRangeHugeWindow(t *testing.T) {
	done := make(chan struct{})
	var first, last int
	var err error
	go func() {
		defer close(done)
		first, last, err = FrameRange(0, 1e19, 10)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("FrameRange did not return for a huge end")
	}
	require.NoError(t, err)
	assert.Equal(t, 0, first)
	assert.Equal(t, MaxIndex, last)

	first, last, err = FrameRange(1e19, 1e19, 10)
	require.NoError(t, err)
	assert.Zero(t, Count(first, last))

	first, last, err = FrameRange(0, math.Inf(1), 30)
	require.NoError(t, err)
	assert.Equal(t, MaxIndex, last)
	assert.Equal(t, 0, first)

	first, last, err = FrameRange(math.NaN(), 1, 30)
	require.NoError(t, err)
	assert.Zero(t, Count(first, last))
}
