// Package dynrange estimates the dynamic range of program material from a
// windowed RMS scan. The estimate drives the adaptive mid-band compression
// ratio: wide material gets tighter mid-band control.
package dynrange

import (
	"fmt"
	"math"
	"sort"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
)

const (
	// windowDuration is the RMS analysis window.
	windowDuration = 0.25

	// silenceFloorDB excludes lead-in/lead-out silence from the estimate.
	silenceFloorDB = -70.0

	// Percentiles bounding the loud and quiet ends of the scan. Extremes
	// are trimmed so a single transient or fade does not dominate.
	loudPercentile  = 0.95
	quietPercentile = 0.10
)

// Estimate is the result of a dynamic range scan.
type Estimate struct {
	RangeDB float64 // loud-to-quiet spread of windowed RMS levels
	Windows int     // analysis windows that passed the silence floor
}

// Analyze scans the buffer in 250 ms windows and reports the spread
// between its loud and quiet passages in dB. Channels are averaged into
// a single power estimate per window. Buffers shorter than one window
// are reported as having no measurable range.
func Analyze(buf *buffer.AudioBuffer) (Estimate, error) {
	if buf == nil {
		return Estimate{}, fmt.Errorf("dynrange: nil buffer")
	}

	windowFrames := int(math.Round(windowDuration * float64(buf.SampleRate())))
	if windowFrames <= 0 {
		return Estimate{}, fmt.Errorf("dynrange: degenerate window for sample rate %d", buf.SampleRate())
	}

	frames := buf.Frames()
	channels := buf.Channels()

	var levels []float64

	for start := 0; start+windowFrames <= frames; start += windowFrames {
		sum := 0.0

		for ch := range channels {
			data := buf.Channel(ch)[start : start+windowFrames]
			for _, v := range data {
				sum += v * v
			}
		}

		meanSq := sum / float64(windowFrames*channels)

		db := -120.0
		if meanSq > 0 {
			db = 10 * math.Log10(meanSq)
		}

		if db > silenceFloorDB {
			levels = append(levels, db)
		}
	}

	if len(levels) < 2 {
		return Estimate{Windows: len(levels)}, nil
	}

	sort.Float64s(levels)

	loud := percentile(levels, loudPercentile)
	quiet := percentile(levels, quietPercentile)

	return Estimate{
		RangeDB: loud - quiet,
		Windows: len(levels),
	}, nil
}

// percentile reads a rank from sorted data with linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))

	if lo == hi {
		return sorted[lo]
	}

	frac := pos - float64(lo)

	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
