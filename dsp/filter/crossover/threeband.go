package crossover

import (
	"fmt"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
)

// Default band boundaries and slope for program-material splitting.
const (
	DefaultLowHz  = 300.0
	DefaultHighHz = 3000.0
	DefaultOrder  = 4 // LR4, 24 dB/oct
)

// ThreeBand splits a buffer into low, mid, and high bands using two
// cascaded Linkwitz-Riley crossovers per channel. The first stage's
// highpass output feeds the second stage, so the three outputs sum to
// an allpass version of the input.
//
// Each channel owns its own filter states; no state is shared across
// channels or reused across buffers without Reset.
type ThreeBand struct {
	lowStage  []*Crossover // per channel, split at lowHz
	highStage []*Crossover // per channel, split at highHz
	sr        int
}

// ThreeBandOption configures a ThreeBand splitter.
type ThreeBandOption func(*threeBandConfig)

type threeBandConfig struct {
	lowHz  float64
	highHz float64
	order  int
}

// WithBoundaries overrides the default 300/3000 Hz band boundaries.
func WithBoundaries(lowHz, highHz float64) ThreeBandOption {
	return func(cfg *threeBandConfig) {
		cfg.lowHz = lowHz
		cfg.highHz = highHz
	}
}

// WithOrder overrides the default LR4 slope. The order must be a
// positive even integer.
func WithOrder(order int) ThreeBandOption {
	return func(cfg *threeBandConfig) { cfg.order = order }
}

// NewThreeBand creates a three-band splitter for the given sample rate
// and channel count.
func NewThreeBand(sampleRate, channels int, opts ...ThreeBandOption) (*ThreeBand, error) {
	cfg := threeBandConfig{
		lowHz:  DefaultLowHz,
		highHz: DefaultHighHz,
		order:  DefaultOrder,
	}
	for _, o := range opts {
		o(&cfg)
	}

	if channels <= 0 {
		return nil, fmt.Errorf("crossover: channel count must be positive, got %d", channels)
	}

	if cfg.lowHz >= cfg.highHz {
		return nil, fmt.Errorf("crossover: boundaries must be ascending, got %.1f/%.1f Hz",
			cfg.lowHz, cfg.highHz)
	}

	tb := &ThreeBand{
		lowStage:  make([]*Crossover, channels),
		highStage: make([]*Crossover, channels),
		sr:        sampleRate,
	}

	for ch := range channels {
		low, err := New(cfg.lowHz, cfg.order, float64(sampleRate))
		if err != nil {
			return nil, err
		}

		high, err := New(cfg.highHz, cfg.order, float64(sampleRate))
		if err != nil {
			return nil, err
		}

		tb.lowStage[ch] = low
		tb.highStage[ch] = high
	}

	return tb, nil
}

// Split decomposes the buffer into a BandSet. The input buffer is not
// modified; each band is a freshly allocated buffer of the same shape.
func (tb *ThreeBand) Split(buf *buffer.AudioBuffer) (*buffer.BandSet, error) {
	if buf == nil {
		return nil, fmt.Errorf("crossover: nil buffer")
	}

	if buf.SampleRate() != tb.sr {
		return nil, fmt.Errorf("crossover: buffer sample rate %d, splitter built for %d",
			buf.SampleRate(), tb.sr)
	}

	if buf.Channels() != len(tb.lowStage) {
		return nil, fmt.Errorf("crossover: buffer has %d channels, splitter built for %d",
			buf.Channels(), len(tb.lowStage))
	}

	channels := buf.Channels()
	frames := buf.Frames()

	low, err := buffer.New(tb.sr, channels, frames)
	if err != nil {
		return nil, err
	}

	mid, err := buffer.New(tb.sr, channels, frames)
	if err != nil {
		return nil, err
	}

	high, err := buffer.New(tb.sr, channels, frames)
	if err != nil {
		return nil, err
	}

	rest := make([]float64, frames)

	for ch := range channels {
		// Stage one: low band out, remainder carries mid+high.
		tb.lowStage[ch].ProcessBlock(buf.Channel(ch), low.Channel(ch), rest)

		// Stage two: split the remainder at the upper boundary.
		tb.highStage[ch].ProcessBlock(rest, mid.Channel(ch), high.Channel(ch))
	}

	return &buffer.BandSet{Low: low, Mid: mid, High: high}, nil
}

// Reset clears all per-channel filter states.
func (tb *ThreeBand) Reset() {
	for ch := range tb.lowStage {
		tb.lowStage[ch].Reset()
		tb.highStage[ch].Reset()
	}
}
