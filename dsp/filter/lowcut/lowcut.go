// Package lowcut removes subsonic energy below a cutoff frequency using a
// Butterworth highpass cascade, one chain per channel.
package lowcut

import (
	"errors"
	"fmt"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
	"github.com/cscb603/Background-Music-Processor/dsp/filter/biquad"
	"github.com/cscb603/Background-Music-Processor/dsp/filter/design"
)

// ErrInvalidInput indicates a cutoff or sample rate the filter cannot
// represent.
var ErrInvalidInput = errors.New("lowcut: invalid input")

const (
	// DefaultCutoffHz is the broadcast subsonic cutoff.
	DefaultCutoffHz = 50.0

	// DefaultOrder gives a 12 dB/octave slope, the minimum useful rumble
	// rejection for program material.
	DefaultOrder = 2
)

// Filter is a per-channel Butterworth highpass cascade. It keeps recursive
// state across ProcessBlock calls on the same channel layout; Reset clears
// it for a fresh buffer.
type Filter struct {
	cutoffHz   float64
	order      int
	sampleRate int
	chains     []*biquad.Chain
}

// Option configures a Filter.
type Option func(*Filter)

// WithCutoff overrides the default 50 Hz cutoff.
func WithCutoff(hz float64) Option {
	return func(f *Filter) { f.cutoffHz = hz }
}

// WithOrder overrides the filter order. Orders below 2 are rejected since
// a first-order slope (6 dB/oct) leaves too much rumble through.
func WithOrder(order int) Option {
	return func(f *Filter) { f.order = order }
}

// New creates a low-cut filter for the given sample rate and channel count.
func New(sampleRate, channels int, opts ...Option) (*Filter, error) {
	f := &Filter{
		cutoffHz:   DefaultCutoffHz,
		order:      DefaultOrder,
		sampleRate: sampleRate,
	}
	for _, o := range opts {
		o(f)
	}

	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count %d", ErrInvalidInput, channels)
	}

	if f.order < 2 {
		return nil, fmt.Errorf("%w: order %d (minimum 2)", ErrInvalidInput, f.order)
	}

	if f.cutoffHz <= 0 {
		return nil, fmt.Errorf("%w: cutoff %.1f Hz", ErrInvalidInput, f.cutoffHz)
	}

	if float64(sampleRate) <= 2*f.cutoffHz {
		return nil, fmt.Errorf("%w: sample rate %d Hz cannot represent a %.1f Hz cutoff",
			ErrInvalidInput, sampleRate, f.cutoffHz)
	}

	coeffs := design.ButterworthHP(f.cutoffHz, f.order, float64(sampleRate))
	if coeffs == nil {
		return nil, fmt.Errorf("%w: highpass design failed for %.1f Hz at %d Hz",
			ErrInvalidInput, f.cutoffHz, sampleRate)
	}

	f.chains = make([]*biquad.Chain, channels)
	for ch := range f.chains {
		f.chains[ch] = biquad.NewChain(coeffs)
	}

	return f, nil
}

// Process filters the buffer in place and returns it.
func (f *Filter) Process(buf *buffer.AudioBuffer) (*buffer.AudioBuffer, error) {
	if buf == nil {
		return nil, fmt.Errorf("%w: nil buffer", ErrInvalidInput)
	}

	if buf.SampleRate() != f.sampleRate {
		return nil, fmt.Errorf("%w: buffer sample rate %d, filter built for %d",
			ErrInvalidInput, buf.SampleRate(), f.sampleRate)
	}

	if buf.Channels() != len(f.chains) {
		return nil, fmt.Errorf("%w: buffer has %d channels, filter built for %d",
			ErrInvalidInput, buf.Channels(), len(f.chains))
	}

	for ch := 0; ch < buf.Channels(); ch++ {
		f.chains[ch].ProcessBlock(buf.Channel(ch))
	}

	return buf, nil
}

// Reset clears all per-channel filter state.
func (f *Filter) Reset() {
	for _, c := range f.chains {
		c.Reset()
	}
}

// CutoffHz returns the configured cutoff frequency.
func (f *Filter) CutoffHz() float64 { return f.cutoffHz }

// Order returns the configured filter order.
func (f *Filter) Order() int { return f.order }

// MagnitudeDB returns the filter's magnitude response at freq in dB.
func (f *Filter) MagnitudeDB(freqHz float64) float64 {
	return f.chains[0].MagnitudeDB(freqHz, float64(f.sampleRate))
}
