package testutil

import (
	"testing"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
)

// SineBuffer builds an AudioBuffer with the same deterministic sine on
// every channel.
func SineBuffer(t *testing.T, freqHz float64, sampleRate, channels, frames int, amplitude float64) *buffer.AudioBuffer {
	t.Helper()

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = DeterministicSine(freqHz, float64(sampleRate), amplitude, frames)
	}

	buf, err := buffer.FromPlanar(sampleRate, data)
	if err != nil {
		t.Fatalf("SineBuffer: %v", err)
	}

	return buf
}

// NoiseBuffer builds an AudioBuffer with independent per-channel noise,
// seeded per channel for reproducibility.
func NoiseBuffer(t *testing.T, seed int64, sampleRate, channels, frames int, amplitude float64) *buffer.AudioBuffer {
	t.Helper()

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = DeterministicNoise(seed+int64(ch), amplitude, frames)
	}

	buf, err := buffer.FromPlanar(sampleRate, data)
	if err != nil {
		t.Fatalf("NoiseBuffer: %v", err)
	}

	return buf
}

// SweepBuffer builds an AudioBuffer with the same exponential sweep on
// every channel.
func SweepBuffer(t *testing.T, startHz, endHz float64, sampleRate, channels, frames int, amplitude float64) *buffer.AudioBuffer {
	t.Helper()

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = LogSweep(startHz, endHz, float64(sampleRate), amplitude, frames)
	}

	buf, err := buffer.FromPlanar(sampleRate, data)
	if err != nil {
		t.Fatalf("SweepBuffer: %v", err)
	}

	return buf
}
