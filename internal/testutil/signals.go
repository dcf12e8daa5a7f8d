package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// LogSweep generates an exponential sine sweep from startHz to endHz.
func LogSweep(startHz, endHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	if length == 0 {
		return out
	}

	duration := float64(length) / sampleRate
	k := math.Log(endHz / startHz)

	for i := range out {
		t := float64(i) / sampleRate
		phase := 2 * math.Pi * startHz * duration / k * (math.Exp(t/duration*k) - 1)
		out[i] = amplitude * math.Sin(phase)
	}

	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}
