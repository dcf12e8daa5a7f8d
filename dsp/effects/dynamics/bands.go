package dynamics

import (
	"fmt"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
)

// Per-band broadcast presets. The low band is compressed hardest to tame
// rumble energy, the high band gentlest to preserve detail.
const (
	lowThresholdDB = -24.0
	lowRatio       = 3.5
	lowAttackMs    = 50.0
	lowReleaseMs   = 1000.0

	midThresholdDB = -22.0
	midRatio       = 2.0
	midAttackMs    = 30.0
	midReleaseMs   = 800.0

	highThresholdDB = -20.0
	highRatio       = 2.0
	highAttackMs    = 20.0
	highReleaseMs   = 500.0

	bandKneeDB = 6.0

	// Mid-band compression tightens when program material is wider than
	// this dynamic range.
	wideDynamicRangeDB = 20.0
	midRatioWide       = 3.0
)

// BandParams returns the fixed per-band compressor presets, indexed by
// buffer.Band.
func BandParams() [buffer.NumBands]Params {
	return [buffer.NumBands]Params{
		buffer.BandLow: {
			ThresholdDB: lowThresholdDB,
			Ratio:       lowRatio,
			KneeDB:      bandKneeDB,
			AttackMs:    lowAttackMs,
			ReleaseMs:   lowReleaseMs,
		},
		buffer.BandMid: {
			ThresholdDB: midThresholdDB,
			Ratio:       midRatio,
			KneeDB:      bandKneeDB,
			AttackMs:    midAttackMs,
			ReleaseMs:   midReleaseMs,
		},
		buffer.BandHigh: {
			ThresholdDB: highThresholdDB,
			Ratio:       highRatio,
			KneeDB:      bandKneeDB,
			AttackMs:    highAttackMs,
			ReleaseMs:   highReleaseMs,
		},
	}
}

// AdaptiveBandParams returns BandParams with the mid-band ratio raised to
// 3:1 when the measured dynamic range exceeds 20 dB.
func AdaptiveBandParams(dynamicRangeDB float64) [buffer.NumBands]Params {
	params := BandParams()
	if dynamicRangeDB > wideDynamicRangeDB {
		params[buffer.BandMid].Ratio = midRatioWide
	}

	return params
}

// BandCompressor compresses each band of a BandSet independently. Every
// band and channel owns its own Compressor instance, so no envelope state
// is shared anywhere.
type BandCompressor struct {
	comps [buffer.NumBands][]*Compressor // indexed [band][channel]
}

// NewBandCompressor creates one compressor per band per channel using the
// given per-band parameters.
func NewBandCompressor(sampleRate float64, channels int, params [buffer.NumBands]Params) (*BandCompressor, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("dynamics: channel count must be positive, got %d", channels)
	}

	var bc BandCompressor

	for band := range buffer.NumBands {
		bc.comps[band] = make([]*Compressor, channels)

		for ch := range channels {
			c, err := NewCompressor(sampleRate, params[band])
			if err != nil {
				return nil, fmt.Errorf("dynamics: %s band: %w", buffer.Band(band), err)
			}

			bc.comps[band][ch] = c
		}
	}

	return &bc, nil
}

// Process compresses all three bands in place.
func (bc *BandCompressor) Process(set *buffer.BandSet) error {
	if err := set.Validate(); err != nil {
		return err
	}

	channels := set.Low.Channels()
	if channels != len(bc.comps[buffer.BandLow]) {
		return fmt.Errorf("dynamics: band set has %d channels, compressor built for %d",
			channels, len(bc.comps[buffer.BandLow]))
	}

	for band, buf := range set.Buffers() {
		for ch := range channels {
			bc.comps[band][ch].ProcessInPlace(buf.Channel(ch))
		}
	}

	return nil
}

// ProcessBand compresses a single band's buffer in place. It exists so
// the pipeline can run bands on separate workers.
func (bc *BandCompressor) ProcessBand(band buffer.Band, buf *buffer.AudioBuffer) error {
	if buf == nil {
		return fmt.Errorf("dynamics: nil %s band buffer", band)
	}

	if buf.Channels() != len(bc.comps[band]) {
		return fmt.Errorf("dynamics: %s band has %d channels, compressor built for %d",
			band, buf.Channels(), len(bc.comps[band]))
	}

	for ch := 0; ch < buf.Channels(); ch++ {
		bc.comps[band][ch].ProcessInPlace(buf.Channel(ch))
	}

	return nil
}

// Metrics returns per-band metering, reduced across channels: peaks are
// maxima, gain reduction is the deepest across channels.
func (bc *BandCompressor) Metrics() [buffer.NumBands]Metrics {
	var out [buffer.NumBands]Metrics

	for band := range buffer.NumBands {
		m := Metrics{GainReduction: 1}

		for _, c := range bc.comps[band] {
			cm := c.Metrics()
			if cm.InputPeak > m.InputPeak {
				m.InputPeak = cm.InputPeak
			}

			if cm.OutputPeak > m.OutputPeak {
				m.OutputPeak = cm.OutputPeak
			}

			if cm.GainReduction < m.GainReduction {
				m.GainReduction = cm.GainReduction
			}
		}

		out[band] = m
	}

	return out
}

// Reset clears every compressor's envelope state and metrics.
func (bc *BandCompressor) Reset() {
	for band := range buffer.NumBands {
		for _, c := range bc.comps[band] {
			c.Reset()
		}
	}
}
