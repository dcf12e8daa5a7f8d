// Package normalize applies a single scalar gain to bring a buffer to a
// target integrated loudness, with a peak safety ceiling.
package normalize

import (
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
	"github.com/cscb603/Background-Music-Processor/dsp/core"
	"github.com/cscb603/Background-Music-Processor/measure/loudness"
)

const (
	// DefaultTargetLUFS is the broadcast streaming loudness target.
	DefaultTargetLUFS = -16.0

	// DefaultCeilingDB leaves true-peak headroom below full scale.
	DefaultCeilingDB = -1.5
)

// Result reports what the normalizer did.
type Result struct {
	AppliedGainDB  float64
	LimiterEngaged bool
}

// Normalizer computes and applies loudness gain.
type Normalizer struct {
	targetLUFS float64
	ceilingDB  float64
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithTarget overrides the -16 LUFS default target.
func WithTarget(lufs float64) Option {
	return func(n *Normalizer) { n.targetLUFS = lufs }
}

// WithCeiling overrides the -1.5 dB peak ceiling.
func WithCeiling(db float64) Option {
	return func(n *Normalizer) { n.ceilingDB = db }
}

// New creates a Normalizer.
func New(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{
		targetLUFS: DefaultTargetLUFS,
		ceilingDB:  DefaultCeilingDB,
	}
	for _, o := range opts {
		o(n)
	}

	if math.IsNaN(n.targetLUFS) || math.IsInf(n.targetLUFS, 0) {
		return nil, fmt.Errorf("normalize: target must be finite: %f", n.targetLUFS)
	}

	if n.ceilingDB > 0 || math.IsNaN(n.ceilingDB) || math.IsInf(n.ceilingDB, 0) {
		return nil, fmt.Errorf("normalize: ceiling must be finite and at most 0 dB: %f", n.ceilingDB)
	}

	return n, nil
}

// Target returns the configured loudness target in LUFS.
func (n *Normalizer) Target() float64 { return n.targetLUFS }

// Ceiling returns the configured peak ceiling in dB.
func (n *Normalizer) Ceiling() float64 { return n.ceilingDB }

// Apply scales the buffer in place by target - measured loudness. When the
// scaled peak would exceed the ceiling, the gain is pulled back so peaks
// land exactly on the ceiling; this is reported via LimiterEngaged, not an
// error.
func (n *Normalizer) Apply(buf *buffer.AudioBuffer, measured loudness.Measurement) (Result, error) {
	if buf == nil {
		return Result{}, fmt.Errorf("normalize: nil buffer")
	}

	gainDB := n.targetLUFS - measured.IntegratedLUFS
	gain := core.DBToLinear(gainDB)

	peak := 0.0
	for ch := 0; ch < buf.Channels(); ch++ {
		if p := vecmath.MaxAbs(buf.Channel(ch)); p > peak {
			peak = p
		}
	}

	res := Result{}

	ceiling := core.DBToLinear(n.ceilingDB)
	if peak*gain > ceiling {
		// Peak-normalize down instead of letting samples clip.
		gain = ceiling / peak
		res.LimiterEngaged = true
	}

	for ch := 0; ch < buf.Channels(); ch++ {
		vecmath.ScaleBlockInPlace(buf.Channel(ch), gain)
	}

	res.AppliedGainDB = core.LinearToDB(gain)

	return res, nil
}
