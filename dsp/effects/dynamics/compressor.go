// Package dynamics implements soft-knee dynamic range compression with
// logarithmic-domain gain calculation, plus the per-band compressor set
// used after band splitting.
package dynamics

import (
	"fmt"
	"math"
)

const (
	// Parameter validation ranges.
	minRatio     = 1.0
	maxRatio     = 100.0
	minAttackMs  = 0.1
	maxAttackMs  = 1000.0
	minReleaseMs = 1.0
	maxReleaseMs = 5000.0
	minKneeDB    = 0.0
	maxKneeDB    = 24.0

	// log2Of10Div20 converts dB to the log2 domain: log2(10) / 20.
	log2Of10Div20 = 0.166096404744
)

// Params holds one compressor's configuration. Values are fixed at
// construction and never mutated during processing.
type Params struct {
	ThresholdDB  float64
	Ratio        float64
	KneeDB       float64
	AttackMs     float64
	ReleaseMs    float64
	MakeupGainDB float64
	AutoMakeup   bool
}

// DefaultParams returns a general-purpose musical compression setting.
func DefaultParams() Params {
	return Params{
		ThresholdDB: -20,
		Ratio:       4,
		KneeDB:      6,
		AttackMs:    10,
		ReleaseMs:   100,
		AutoMakeup:  true,
	}
}

// Validate checks parameter ranges.
func (p Params) Validate() error {
	if math.IsNaN(p.ThresholdDB) || math.IsInf(p.ThresholdDB, 0) {
		return fmt.Errorf("dynamics: threshold must be finite: %f", p.ThresholdDB)
	}

	if p.Ratio < minRatio || p.Ratio > maxRatio || math.IsNaN(p.Ratio) {
		return fmt.Errorf("dynamics: ratio must be in [%g, %g]: %f", minRatio, maxRatio, p.Ratio)
	}

	if p.KneeDB < minKneeDB || p.KneeDB > maxKneeDB || math.IsNaN(p.KneeDB) {
		return fmt.Errorf("dynamics: knee must be in [%g, %g]: %f", minKneeDB, maxKneeDB, p.KneeDB)
	}

	if p.AttackMs < minAttackMs || p.AttackMs > maxAttackMs || math.IsNaN(p.AttackMs) {
		return fmt.Errorf("dynamics: attack must be in [%g, %g] ms: %f", minAttackMs, maxAttackMs, p.AttackMs)
	}

	if p.ReleaseMs < minReleaseMs || p.ReleaseMs > maxReleaseMs || math.IsNaN(p.ReleaseMs) {
		return fmt.Errorf("dynamics: release must be in [%g, %g] ms: %f", minReleaseMs, maxReleaseMs, p.ReleaseMs)
	}

	if math.IsNaN(p.MakeupGainDB) || math.IsInf(p.MakeupGainDB, 0) {
		return fmt.Errorf("dynamics: makeup gain must be finite: %f", p.MakeupGainDB)
	}

	return nil
}

// Metrics holds metering information for reporting and analysis.
type Metrics struct {
	InputPeak     float64 // maximum input level since last reset
	OutputPeak    float64 // maximum output level since last reset
	GainReduction float64 // minimum gain (maximum reduction) since last reset
}

// Compressor is a soft-knee compressor with log2-domain gain calculation
// for a smooth compression curve around the threshold.
//
// The compressor is mono; multi-channel processing instantiates one
// compressor per channel so no envelope state is shared.
type Compressor struct {
	params     Params
	sampleRate float64

	// Envelope follower state.
	peakLevel float64

	// Cached coefficients.
	attackCoeff      float64
	releaseCoeff     float64
	thresholdLog2    float64
	kneeWidthLog2    float64
	invKneeWidthLog2 float64
	makeupGainLin    float64

	metrics Metrics
}

// NewCompressor creates a compressor with the given fixed parameters.
func NewCompressor(sampleRate float64, params Params) (*Compressor, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("dynamics: sample rate must be positive and finite: %f", sampleRate)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	c := &Compressor{
		params:     params,
		sampleRate: sampleRate,
	}
	c.updateCoefficients()
	c.Reset()

	return c, nil
}

// Params returns the fixed compressor configuration.
func (c *Compressor) Params() Params { return c.params }

// SampleRate returns the sample rate in Hz.
func (c *Compressor) SampleRate() float64 { return c.sampleRate }

// ProcessSample processes one sample through the compressor.
func (c *Compressor) ProcessSample(input float64) float64 {
	inputLevel := math.Abs(input)

	// Peak envelope follower with separate attack and release smoothing.
	if inputLevel > c.peakLevel {
		c.peakLevel += (inputLevel - c.peakLevel) * c.attackCoeff
	} else {
		c.peakLevel = inputLevel + (c.peakLevel-inputLevel)*c.releaseCoeff
	}

	gain := c.calculateGain(c.peakLevel)
	output := input * gain * c.makeupGainLin

	c.updateMetrics(inputLevel, math.Abs(output), gain)

	return output
}

// ProcessInPlace applies compression to buf in place.
func (c *Compressor) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}

// CalculateOutputLevel computes the steady-state output level for a given
// input magnitude, for visualizing the compression curve.
func (c *Compressor) CalculateOutputLevel(inputMagnitude float64) float64 {
	inputMagnitude = math.Abs(inputMagnitude)
	gain := c.calculateGain(inputMagnitude)

	return inputMagnitude * gain * c.makeupGainLin
}

// Reset clears envelope follower state and metrics.
func (c *Compressor) Reset() {
	c.peakLevel = 0
	c.metrics = Metrics{GainReduction: 1}
}

// Metrics returns current metering values.
func (c *Compressor) Metrics() Metrics { return c.metrics }

func (c *Compressor) updateCoefficients() {
	c.thresholdLog2 = c.params.ThresholdDB * log2Of10Div20
	c.kneeWidthLog2 = c.params.KneeDB * log2Of10Div20

	if c.params.KneeDB > 0 {
		c.invKneeWidthLog2 = 1 / c.kneeWidthLog2
	} else {
		c.invKneeWidthLog2 = 0
	}

	makeupDB := c.params.MakeupGainDB
	if c.params.AutoMakeup {
		// Compensate for the gain reduction at threshold.
		makeupDB = -c.params.ThresholdDB * (1 - 1/c.params.Ratio)
	}

	c.makeupGainLin = math.Pow(10, makeupDB/20)

	// Attack: 1 - exp(-ln2 / (attack_sec * sample_rate))
	c.attackCoeff = 1 - math.Exp(-math.Ln2/(c.params.AttackMs*0.001*c.sampleRate))

	// Release: exp(-ln2 / (release_sec * sample_rate))
	c.releaseCoeff = math.Exp(-math.Ln2 / (c.params.ReleaseMs * 0.001 * c.sampleRate))
}

// calculateGain computes the gain multiplier using the log2-domain
// soft-knee formula: quadratic smoothing of width k around the threshold.
func (c *Compressor) calculateGain(peakLevel float64) float64 {
	if peakLevel <= 0 {
		return 1
	}

	peakLog2 := math.Log2(peakLevel)
	overshoot := peakLog2 - c.thresholdLog2

	if c.params.KneeDB <= 0 {
		if overshoot <= 0 {
			return 1
		}

		return math.Pow(2, -overshoot*(1-1/c.params.Ratio))
	}

	halfWidth := c.kneeWidthLog2 * 0.5

	var effectiveOvershoot float64

	switch {
	case overshoot < -halfWidth:
		return 1
	case overshoot > halfWidth:
		effectiveOvershoot = overshoot
	default:
		// Inside the knee: (overshoot + w/2)^2 / (2*w).
		scratch := overshoot + halfWidth
		effectiveOvershoot = scratch * scratch * 0.5 * c.invKneeWidthLog2
	}

	return math.Pow(2, -effectiveOvershoot*(1-1/c.params.Ratio))
}

func (c *Compressor) updateMetrics(inputLevel, outputLevel, gain float64) {
	if inputLevel > c.metrics.InputPeak {
		c.metrics.InputPeak = inputLevel
	}

	if outputLevel > c.metrics.OutputPeak {
		c.metrics.OutputPeak = outputLevel
	}

	if gain < c.metrics.GainReduction {
		c.metrics.GainReduction = gain
	}
}
