// Package spatial adjusts the stereo image using mid/side processing.
package spatial

import (
	"fmt"
	"math"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
)

// Preset selects a fixed stereo width setting.
type Preset int

const (
	// PresetOriginal leaves the stereo image untouched.
	PresetOriginal Preset = iota
	// PresetSlightExpansion widens the image moderately.
	PresetSlightExpansion
	// PresetWideField widens the image strongly.
	PresetWideField
)

// Side gains per preset. MaxSideGain bounds any width setting so side
// energy cannot grow far enough to cause audible phase cancellation when
// the output is folded to mono.
const (
	sideGainOriginal  = 1.0
	sideGainSlight    = 1.25
	sideGainWideField = 1.6

	// MaxSideGain is the hard cap on the side multiplier.
	MaxSideGain = 2.0
)

// String returns the preset name.
func (p Preset) String() string {
	switch p {
	case PresetOriginal:
		return "original"
	case PresetSlightExpansion:
		return "slight-expansion"
	case PresetWideField:
		return "wide-field"
	default:
		return fmt.Sprintf("preset(%d)", int(p))
	}
}

// SideGain returns the side-channel multiplier for the preset.
func (p Preset) SideGain() float64 {
	switch p {
	case PresetSlightExpansion:
		return sideGainSlight
	case PresetWideField:
		return sideGainWideField
	default:
		return sideGainOriginal
	}
}

// ParsePreset maps a preset name to its value.
func ParsePreset(s string) (Preset, error) {
	switch s {
	case "original":
		return PresetOriginal, nil
	case "slight-expansion":
		return PresetSlightExpansion, nil
	case "wide-field":
		return PresetWideField, nil
	default:
		return 0, fmt.Errorf("spatial: unknown preset %q", s)
	}
}

// FieldShaper widens or preserves the stereo field of a buffer.
//
// The shaper encodes left/right into mid (sum) and side (difference)
// components, scales the side signal by the preset's gain, and decodes
// back to left/right. Mono buffers pass through unchanged since their
// side component is structurally zero.
type FieldShaper struct {
	preset   Preset
	sideGain float64
}

// FieldShaperOption overrides shaper construction parameters.
type FieldShaperOption func(*FieldShaper) error

// WithSideGain overrides the preset's side multiplier with an explicit
// width. Values above MaxSideGain are rejected.
func WithSideGain(gain float64) FieldShaperOption {
	return func(f *FieldShaper) error {
		if gain < 0 || gain > MaxSideGain || math.IsNaN(gain) || math.IsInf(gain, 0) {
			return fmt.Errorf("spatial: side gain must be in [0, %g]: %f", MaxSideGain, gain)
		}

		f.sideGain = gain

		return nil
	}
}

// NewFieldShaper creates a shaper for the given preset.
func NewFieldShaper(preset Preset, opts ...FieldShaperOption) (*FieldShaper, error) {
	switch preset {
	case PresetOriginal, PresetSlightExpansion, PresetWideField:
	default:
		return nil, fmt.Errorf("spatial: unknown preset %d", preset)
	}

	f := &FieldShaper{
		preset:   preset,
		sideGain: preset.SideGain(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(f); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Preset returns the configured preset.
func (f *FieldShaper) Preset() Preset { return f.preset }

// SideGain returns the effective side multiplier.
func (f *FieldShaper) SideGain() float64 { return f.sideGain }

// ProcessStereo shapes a single stereo sample pair.
func (f *FieldShaper) ProcessStereo(left, right float64) (float64, float64) {
	mid := (left + right) * 0.5
	side := (left - right) * 0.5 * f.sideGain

	return mid + side, mid - side
}

// Process shapes the buffer in place. Mono input is returned untouched;
// channel counts above two are rejected.
func (f *FieldShaper) Process(buf *buffer.AudioBuffer) (*buffer.AudioBuffer, error) {
	if buf == nil {
		return nil, fmt.Errorf("spatial: nil buffer")
	}

	switch buf.Channels() {
	case 1:
		return buf, nil
	case 2:
	default:
		return nil, fmt.Errorf("spatial: unsupported channel count %d", buf.Channels())
	}

	// Unity side gain is the identity transform; skip the arithmetic so
	// the output is bit-exact.
	if f.sideGain == 1 {
		return buf, nil
	}

	left := buf.Channel(0)
	right := buf.Channel(1)

	for i := range left {
		left[i], right[i] = f.ProcessStereo(left[i], right[i])
	}

	return buf, nil
}
