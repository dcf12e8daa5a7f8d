package pipeline

import (
	"fmt"
	"math"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
	"github.com/cscb603/Background-Music-Processor/dsp/effects/eq"
	"github.com/cscb603/Background-Music-Processor/dsp/effects/spatial"
	"github.com/cscb603/Background-Music-Processor/dsp/filter/crossover"
	"github.com/cscb603/Background-Music-Processor/dsp/filter/lowcut"
	"github.com/cscb603/Background-Music-Processor/dsp/normalize"
)

// Config is fixed for the lifetime of a Pipeline. Every run with the
// same config and input produces bit-identical output.
type Config struct {
	// Preset selects the stereo field treatment.
	Preset spatial.Preset

	// TargetLUFS is the integrated loudness the output is normalized to.
	TargetLUFS float64

	// CeilingDB caps output peaks after normalization gain.
	CeilingDB float64

	// LowCutHz and LowCutOrder shape the rumble highpass.
	LowCutHz    float64
	LowCutOrder int

	// CrossoverLowHz, CrossoverHighHz and CrossoverOrder define the
	// Linkwitz-Riley band split ahead of per-band compression.
	CrossoverLowHz  float64
	CrossoverHighHz float64
	CrossoverOrder  int

	// EQBands is the post-recombination corrective curve.
	EQBands []eq.Band

	// BandWeights scale each band during recombination. The default
	// tilt favors lows slightly and pulls highs back, which keeps
	// compressed material warm instead of brittle.
	BandWeights [buffer.NumBands]float64

	// AdaptiveCompression lets the measured dynamic range of the input
	// pick the mid-band ratio instead of the fixed table.
	AdaptiveCompression bool
}

// DefaultConfig returns the settings used for unattended background
// music conditioning.
func DefaultConfig() Config {
	return Config{
		Preset:              spatial.PresetSlightExpansion,
		TargetLUFS:          normalize.DefaultTargetLUFS,
		CeilingDB:           normalize.DefaultCeilingDB,
		LowCutHz:            lowcut.DefaultCutoffHz,
		LowCutOrder:         lowcut.DefaultOrder,
		CrossoverLowHz:      crossover.DefaultLowHz,
		CrossoverHighHz:     crossover.DefaultHighHz,
		CrossoverOrder:      crossover.DefaultOrder,
		EQBands:             eq.VocalAvoidance(),
		BandWeights:         [buffer.NumBands]float64{1.1, 1.0, 0.9},
		AdaptiveCompression: true,
	}
}

// Validate rejects settings no run could succeed with. Component-level
// parameters are checked again by the component that consumes them, so
// a bad crossover frequency still fails with the splitting stage
// attached.
func (c Config) Validate() error {
	if math.IsNaN(c.TargetLUFS) || math.IsInf(c.TargetLUFS, 0) {
		return fmt.Errorf("%w: target loudness must be finite", ErrInvalidInput)
	}

	for band, w := range c.BandWeights {
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight for %s band must be positive: %f",
				ErrInvalidInput, buffer.Band(band), w)
		}
	}

	return nil
}
