package spectrum

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// FFTMagnitude computes the single-sided magnitude spectrum of a real
// signal. The signal is zero-padded to the next power of two; the returned
// slice holds bins 0..N/2 inclusive.
func FFTMagnitude(signal []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("spectrum: empty signal")
	}

	fftSize := nextPow2(len(signal))

	in := make([]complex128, fftSize)
	for i, v := range signal {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum: plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("spectrum: forward transform: %w", err)
	}

	half := out[:fftSize/2+1]

	re := make([]float64, len(half))
	im := make([]float64, len(half))

	for i, c := range half {
		re[i] = real(c)
		im[i] = imag(c)
	}

	mag := make([]float64, len(half))
	vecmath.Magnitude(mag, re, im)

	return mag, nil
}

// BinFrequency returns the center frequency of bin i for a spectrum of
// the given size (full FFT length) at sampleRate.
func BinFrequency(i, fftSize int, sampleRate float64) float64 {
	return float64(i) * sampleRate / float64(fftSize)
}

func nextPow2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}

	return size
}

// MagnitudeDB converts a linear magnitude to dB with a floor at -300 dB.
func MagnitudeDB(mag float64) float64 {
	if mag <= 1e-15 {
		return -300
	}

	return 20 * math.Log10(mag)
}
