// Package eq applies fixed parametric equalization curves built from
// cascaded peaking biquads, one chain per channel.
package eq

import (
	"fmt"

	"github.com/cscb603/Background-Music-Processor/dsp/filter/biquad"
	"github.com/cscb603/Background-Music-Processor/dsp/filter/design"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
)

// Band describes one peaking filter of a curve: center frequency, gain,
// and bandwidth in octaves.
type Band struct {
	FreqHz       float64
	GainDB       float64
	WidthOctaves float64
}

// VocalAvoidance is the broadcast curve that carves headroom for speech
// mixed over the music: a dip centered in the presence region plus gentle
// support below and above it.
func VocalAvoidance() []Band {
	return []Band{
		{FreqHz: 1500, GainDB: -4, WidthOctaves: 2},
		{FreqHz: 300, GainDB: 1.5, WidthOctaves: 1},
		{FreqHz: 8000, GainDB: 1.5, WidthOctaves: 2},
	}
}

// MusicEnhance is the alternate curve used when nothing is mixed over the
// music: slight warmth and air instead of a presence dip.
func MusicEnhance() []Band {
	return []Band{
		{FreqHz: 200, GainDB: 1, WidthOctaves: 1},
		{FreqHz: 5000, GainDB: 1, WidthOctaves: 2},
	}
}

// Equalizer runs a fixed curve over a buffer. Each channel owns its own
// biquad chain; state is reset per buffer so runs stay independent.
type Equalizer struct {
	bands      []Band
	chains     []*biquad.Chain
	sampleRate int
}

// New builds an equalizer for the given curve, sample rate, and channel
// count. Bands whose center frequency is not representable at the sample
// rate are rejected.
func New(sampleRate, channels int, bands []Band) (*Equalizer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("eq: sample rate must be positive, got %d", sampleRate)
	}

	if channels <= 0 {
		return nil, fmt.Errorf("eq: channel count must be positive, got %d", channels)
	}

	if len(bands) == 0 {
		return nil, fmt.Errorf("eq: at least one band is required")
	}

	coeffs := make([]biquad.Coefficients, len(bands))

	for i, b := range bands {
		if b.FreqHz <= 0 || b.FreqHz >= float64(sampleRate)/2 {
			return nil, fmt.Errorf("eq: band %d center %.1f Hz not representable at %d Hz",
				i, b.FreqHz, sampleRate)
		}

		q := design.QFromOctaveWidth(b.WidthOctaves)

		coeffs[i] = design.Peak(b.FreqHz, b.GainDB, q, float64(sampleRate))
	}

	e := &Equalizer{
		bands:      bands,
		chains:     make([]*biquad.Chain, channels),
		sampleRate: sampleRate,
	}
	for ch := range e.chains {
		e.chains[ch] = biquad.NewChain(coeffs)
	}

	return e, nil
}

// Process applies the curve to the buffer in place. Filter state is
// cleared first, so each buffer is processed from a cold start.
func (e *Equalizer) Process(buf *buffer.AudioBuffer) (*buffer.AudioBuffer, error) {
	if buf == nil {
		return nil, fmt.Errorf("eq: nil buffer")
	}

	if buf.SampleRate() != e.sampleRate {
		return nil, fmt.Errorf("eq: buffer sample rate %d, equalizer built for %d",
			buf.SampleRate(), e.sampleRate)
	}

	if buf.Channels() != len(e.chains) {
		return nil, fmt.Errorf("eq: buffer has %d channels, equalizer built for %d",
			buf.Channels(), len(e.chains))
	}

	for ch := 0; ch < buf.Channels(); ch++ {
		e.chains[ch].Reset()
		e.chains[ch].ProcessBlock(buf.Channel(ch))
	}

	return buf, nil
}

// Bands returns the fixed curve definition.
func (e *Equalizer) Bands() []Band { return e.bands }

// MagnitudeDB returns the curve's combined magnitude response at freq.
func (e *Equalizer) MagnitudeDB(freqHz float64) float64 {
	return e.chains[0].MagnitudeDB(freqHz, float64(e.sampleRate))
}
