// Package crossover splits signals into complementary frequency bands
// using Linkwitz-Riley filter pairs whose outputs sum back to an allpass
// version of the input.
package crossover

import (
	"fmt"

	"github.com/cscb603/Background-Music-Processor/dsp/filter/biquad"
	"github.com/cscb603/Background-Music-Processor/dsp/filter/design"
)

// Crossover is a two-way Linkwitz-Riley crossover network that splits
// an input signal into complementary lowpass and highpass outputs.
//
// The lowpass and highpass outputs sum to an allpass-filtered version
// of the input (flat magnitude response). Polarity correction for
// orders congruent to 2 mod 4 (LR2, LR6, ...) is handled automatically.
type Crossover struct {
	lp    *biquad.Chain
	hp    *biquad.Chain
	freq  float64
	order int
	sr    float64
}

// New creates a two-way Linkwitz-Riley crossover at the given frequency
// and order. The order must be a positive even integer (2, 4, 6, 8, ...).
func New(freq float64, order int, sampleRate float64) (*Crossover, error) {
	if order <= 0 || order%2 != 0 {
		return nil, fmt.Errorf("crossover: order must be a positive even integer, got %d", order)
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("crossover: sample rate must be positive, got %v", sampleRate)
	}

	if freq <= 0 || freq >= sampleRate/2 {
		return nil, fmt.Errorf("crossover: frequency must be in (0, %v), got %v", sampleRate/2, freq)
	}

	lpCoeffs := design.LinkwitzRileyLP(freq, order, sampleRate)

	var hpCoeffs []biquad.Coefficients
	if design.LinkwitzRileyNeedsHPInvert(order) {
		hpCoeffs = design.LinkwitzRileyHPInverted(freq, order, sampleRate)
	} else {
		hpCoeffs = design.LinkwitzRileyHP(freq, order, sampleRate)
	}

	if lpCoeffs == nil || hpCoeffs == nil {
		return nil, fmt.Errorf("crossover: failed to design LR%d at %.1f Hz", order, freq)
	}

	return &Crossover{
		lp:    biquad.NewChain(lpCoeffs),
		hp:    biquad.NewChain(hpCoeffs),
		freq:  freq,
		order: order,
		sr:    sampleRate,
	}, nil
}

// ProcessSample filters one input sample and returns the lowpass and
// highpass outputs. Their sum is allpass (flat magnitude response).
func (c *Crossover) ProcessSample(x float64) (lo, hi float64) {
	return c.lp.ProcessSample(x), c.hp.ProcessSample(x)
}

// ProcessBlock filters a block of input samples, writing the lowpass
// output to lo and the highpass output to hi. All three slices must
// have the same length.
func (c *Crossover) ProcessBlock(input, lo, hi []float64) {
	n := len(input)
	if n == 0 {
		return
	}

	_ = lo[n-1]
	_ = hi[n-1]

	c.lp.ProcessBlockTo(lo, input)
	c.hp.ProcessBlockTo(hi, input)
}

// LP returns the lowpass chain for direct inspection or analysis.
func (c *Crossover) LP() *biquad.Chain { return c.lp }

// HP returns the highpass chain for direct inspection or analysis.
// For orders congruent to 2 mod 4, this chain includes the polarity
// inversion.
func (c *Crossover) HP() *biquad.Chain { return c.hp }

// Freq returns the crossover frequency in Hz.
func (c *Crossover) Freq() float64 { return c.freq }

// Order returns the Linkwitz-Riley order (always even).
func (c *Crossover) Order() int { return c.order }

// SampleRate returns the sample rate in Hz.
func (c *Crossover) SampleRate() float64 { return c.sr }

// Reset clears the internal filter states of both LP and HP chains.
func (c *Crossover) Reset() {
	c.lp.Reset()
	c.hp.Reset()
}
