// Package loudness implements ITU-R BS.1770 / EBU R128 K-weighted, gated
// loudness measurement.
package loudness

import (
	"errors"
	"fmt"
	"math"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
	"github.com/cscb603/Background-Music-Processor/dsp/filter/biquad"
	"github.com/cscb603/Background-Music-Processor/dsp/filter/design"
)

// ErrInsufficientAudio indicates the input is shorter than one gating
// block, so no integrated loudness can be computed.
var ErrInsufficientAudio = errors.New("loudness: insufficient audio for measurement")

const (
	// K-weighting filter parameters from BS.1770.
	kWeightingShelfFreq = 1500.0
	kWeightingShelfGain = 4.0

	kWeightingHpfFreq = 38.0

	// Gating block duration and overlap.
	blockDuration   = 0.4
	blockOverlap    = 0.75
	blockStepFactor = 1.0 - blockOverlap

	// Gating thresholds.
	absThreshold = -70.0
	relThreshold = -10.0
)

// Measurement is the result of one integrated loudness pass.
type Measurement struct {
	IntegratedLUFS float64
	WindowFrames   int
}

// Meter implements EBU R128 / ITU-R BS.1770 loudness metering over
// planar buffers. Create one meter per measurement pass, or call Reset
// between passes.
type Meter struct {
	sampleRate float64
	channels   int

	// K-weighting filters per channel.
	shelfFilters []*biquad.Section
	hpfFilters   []*biquad.Section

	// Sliding 400 ms window of squared K-weighted samples per channel.
	windowSamples int
	history       [][]float64
	writeIdx      int
	runningSums   []float64

	// Gating block accumulation.
	blockStep        int
	samplesSinceStep int
	totalSamples     int64
	blocks           []float64

	// Sample peak per channel.
	peaks []float64
}

// NewMeter creates a loudness meter with the given options.
func NewMeter(opts ...MeterOption) *Meter {
	cfg := ApplyMeterOptions(opts...)

	m := &Meter{
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
	}

	q := 1.0 / math.Sqrt2
	shelfCoeffs := design.HighShelf(kWeightingShelfFreq, kWeightingShelfGain, q, m.sampleRate)
	hpfCoeffs := design.Highpass(kWeightingHpfFreq, q, m.sampleRate)

	m.shelfFilters = make([]*biquad.Section, m.channels)
	m.hpfFilters = make([]*biquad.Section, m.channels)

	for i := range m.channels {
		m.shelfFilters[i] = biquad.NewSection(shelfCoeffs)
		m.hpfFilters[i] = biquad.NewSection(hpfCoeffs)
	}

	m.windowSamples = int(math.Round(blockDuration * m.sampleRate))
	m.blockStep = max(int(math.Round(blockDuration*blockStepFactor*m.sampleRate)), 1)

	m.history = make([][]float64, m.channels)
	for i := range m.channels {
		m.history[i] = make([]float64, m.windowSamples)
	}

	m.runningSums = make([]float64, m.channels)
	m.peaks = make([]float64, m.channels)

	return m
}

// Reset clears all integration state and peak values.
func (m *Meter) Reset() {
	for i := range m.channels {
		m.shelfFilters[i].Reset()
		m.hpfFilters[i].Reset()

		for j := range m.history[i] {
			m.history[i][j] = 0
		}

		m.runningSums[i] = 0
		m.peaks[i] = 0
	}

	m.writeIdx = 0
	m.samplesSinceStep = 0
	m.totalSamples = 0
	m.blocks = nil
}

// ProcessFrame processes one multi-channel frame.
func (m *Meter) ProcessFrame(samples []float64) {
	if len(samples) < m.channels {
		return
	}

	for i := range m.channels {
		// K-weighting: high shelf then highpass.
		val := m.shelfFilters[i].ProcessSample(samples[i])
		val = m.hpfFilters[i].ProcessSample(val)

		if absVal := math.Abs(samples[i]); absVal > m.peaks[i] {
			m.peaks[i] = absVal
		}

		sq := val * val

		old := m.history[i][m.writeIdx]
		m.history[i][m.writeIdx] = sq

		m.runningSums[i] += sq - old
		if m.runningSums[i] < 0 {
			m.runningSums[i] = 0
		}
	}

	m.writeIdx = (m.writeIdx + 1) % m.windowSamples
	m.totalSamples++

	// Emit a gating block every step once a full 400 ms window exists.
	if m.totalSamples >= int64(m.windowSamples) {
		m.samplesSinceStep++
		if m.samplesSinceStep >= m.blockStep {
			m.samplesSinceStep = 0

			meanSqSum := 0.0
			for i := range m.channels {
				meanSqSum += m.runningSums[i] / float64(m.windowSamples)
			}

			m.blocks = append(m.blocks, meanSqSum)
		}
	}
}

// ProcessBuffer feeds an entire buffer through the meter.
func (m *Meter) ProcessBuffer(buf *buffer.AudioBuffer) error {
	if buf == nil {
		return fmt.Errorf("loudness: nil buffer")
	}

	if buf.Channels() != m.channels {
		return fmt.Errorf("loudness: buffer has %d channels, meter built for %d",
			buf.Channels(), m.channels)
	}

	if float64(buf.SampleRate()) != m.sampleRate {
		return fmt.Errorf("loudness: buffer sample rate %d, meter built for %g",
			buf.SampleRate(), m.sampleRate)
	}

	frame := make([]float64, m.channels)
	for i := 0; i < buf.Frames(); i++ {
		for ch := range m.channels {
			frame[ch] = buf.Channel(ch)[i]
		}

		m.ProcessFrame(frame)
	}

	return nil
}

// Integrated returns the gated integrated loudness in LUFS for everything
// processed since the last Reset. It fails with ErrInsufficientAudio when
// less than one gating block of audio was seen or every block was gated
// out as silence.
func (m *Meter) Integrated() (float64, error) {
	if len(m.blocks) == 0 {
		return 0, fmt.Errorf("%w: need at least %d frames (400 ms)", ErrInsufficientAudio, m.windowSamples)
	}

	// Stage one: absolute gate at -70 LUFS.
	var absGated []float64

	absGatedSum := 0.0

	for _, b := range m.blocks {
		if toLUFS(b) > absThreshold {
			absGated = append(absGated, b)
			absGatedSum += b
		}
	}

	if len(absGated) == 0 {
		return 0, fmt.Errorf("%w: all blocks below the absolute gate", ErrInsufficientAudio)
	}

	// Stage two: relative gate 10 LU below the ungated mean.
	gammaRel := toLUFS(absGatedSum/float64(len(absGated))) + relThreshold

	var (
		relGatedSum   float64
		relGatedCount int
	)

	for _, b := range absGated {
		if toLUFS(b) > gammaRel {
			relGatedSum += b
			relGatedCount++
		}
	}

	if relGatedCount == 0 {
		return 0, fmt.Errorf("%w: all blocks below the relative gate", ErrInsufficientAudio)
	}

	return toLUFS(relGatedSum / float64(relGatedCount)), nil
}

// Momentary returns the loudness of the most recent 400 ms window.
func (m *Meter) Momentary() float64 {
	meanSqSum := 0.0
	for i := range m.channels {
		meanSqSum += m.runningSums[i] / float64(m.windowSamples)
	}

	return toLUFS(meanSqSum)
}

// Peaks returns the maximum absolute sample value per channel since Reset.
func (m *Meter) Peaks() []float64 {
	p := make([]float64, m.channels)
	copy(p, m.peaks)

	return p
}

// WindowFrames returns the gating block length in frames.
func (m *Meter) WindowFrames() int { return m.windowSamples }

// Measure runs a complete integrated measurement over one buffer using a
// meter configured for the buffer's shape.
func Measure(buf *buffer.AudioBuffer) (Measurement, error) {
	if buf == nil {
		return Measurement{}, fmt.Errorf("loudness: nil buffer")
	}

	m := NewMeter(
		WithSampleRate(float64(buf.SampleRate())),
		WithChannels(buf.Channels()),
	)

	if buf.Frames() < m.windowSamples {
		return Measurement{}, fmt.Errorf("%w: %d frames, need at least %d (400 ms)",
			ErrInsufficientAudio, buf.Frames(), m.windowSamples)
	}

	if err := m.ProcessBuffer(buf); err != nil {
		return Measurement{}, err
	}

	lufs, err := m.Integrated()
	if err != nil {
		return Measurement{}, err
	}

	return Measurement{
		IntegratedLUFS: lufs,
		WindowFrames:   m.windowSamples,
	}, nil
}

func toLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return -120.0 // effective floor
	}

	return -0.691 + 10.0*math.Log10(meanSquare)
}
