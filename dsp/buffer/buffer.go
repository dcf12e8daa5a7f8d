package buffer

import (
	"fmt"
)

// AudioBuffer holds decoded PCM audio in planar (de-interleaved) layout:
// one []float64 per channel, all of equal length, samples normalized to
// [-1.0, 1.0]. The planar layout is the fixed convention for every
// processing stage; interleaved data is converted once at the boundary
// via FromInterleaved/Interleaved.
//
// An AudioBuffer is owned by exactly one stage at a time. Stages either
// mutate it in place or hand ownership to the next stage; channel slices
// are never aliased across buffers.
type AudioBuffer struct {
	sampleRate int
	data       [][]float64
}

// New returns a zero-filled AudioBuffer with the given shape.
func New(sampleRate, channels, frames int) (*AudioBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("buffer: sample rate must be positive, got %d", sampleRate)
	}

	if channels <= 0 {
		return nil, fmt.Errorf("buffer: channel count must be positive, got %d", channels)
	}

	if frames < 0 {
		return nil, fmt.Errorf("buffer: frame count must be non-negative, got %d", frames)
	}

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}

	return &AudioBuffer{sampleRate: sampleRate, data: data}, nil
}

// FromPlanar wraps existing per-channel slices without copying.
// All channel slices must have the same length.
func FromPlanar(sampleRate int, channels [][]float64) (*AudioBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("buffer: sample rate must be positive, got %d", sampleRate)
	}

	if len(channels) == 0 {
		return nil, fmt.Errorf("buffer: at least one channel is required")
	}

	frames := len(channels[0])
	for ch, s := range channels {
		if len(s) != frames {
			return nil, fmt.Errorf("buffer: channel %d has %d frames, channel 0 has %d", ch, len(s), frames)
		}
	}

	return &AudioBuffer{sampleRate: sampleRate, data: channels}, nil
}

// FromInterleaved de-interleaves samples (L R L R … for stereo) into a
// new planar AudioBuffer. The sample count must be a multiple of the
// channel count.
func FromInterleaved(sampleRate, channels int, samples []float64) (*AudioBuffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("buffer: channel count must be positive, got %d", channels)
	}

	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("buffer: %d interleaved samples not divisible by %d channels", len(samples), channels)
	}

	b, err := New(sampleRate, channels, len(samples)/channels)
	if err != nil {
		return nil, err
	}

	for i, s := range samples {
		b.data[i%channels][i/channels] = s
	}

	return b, nil
}

// SampleRate returns the sample rate in Hz.
func (b *AudioBuffer) SampleRate() int { return b.sampleRate }

// Channels returns the channel count.
func (b *AudioBuffer) Channels() int { return len(b.data) }

// Frames returns the number of frames (samples per channel).
func (b *AudioBuffer) Frames() int {
	if len(b.data) == 0 {
		return 0
	}

	return len(b.data[0])
}

// Channel returns the backing slice for channel ch. Mutations are
// visible through the buffer.
func (b *AudioBuffer) Channel(ch int) []float64 { return b.data[ch] }

// Interleaved returns a newly allocated interleaved copy (L R L R …).
func (b *AudioBuffer) Interleaved() []float64 {
	channels := b.Channels()
	frames := b.Frames()
	out := make([]float64, channels*frames)

	for ch, s := range b.data {
		for i, v := range s {
			out[i*channels+ch] = v
		}
	}

	return out
}

// Clone returns a deep copy of the buffer.
func (b *AudioBuffer) Clone() *AudioBuffer {
	data := make([][]float64, len(b.data))
	for ch, s := range b.data {
		data[ch] = make([]float64, len(s))
		copy(data[ch], s)
	}

	return &AudioBuffer{sampleRate: b.sampleRate, data: data}
}

// SameShape reports whether other has identical sample rate, channel
// count and frame count.
func (b *AudioBuffer) SameShape(other *AudioBuffer) bool {
	return other != nil &&
		b.sampleRate == other.sampleRate &&
		b.Channels() == other.Channels() &&
		b.Frames() == other.Frames()
}
