package crossover

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cscb603/Background-Music-Processor/internal/testutil"
)

const sr = 48000.0

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name  string
		freq  float64
		order int
		sr    float64
	}{
		{"odd order", 1000, 3, sr},
		{"zero order", 1000, 0, sr},
		{"negative freq", -100, 4, sr},
		{"freq at nyquist", sr / 2, 4, sr},
		{"zero sample rate", 1000, 4, 0},
	}
	for _, tt := range tests {
		if _, err := New(tt.freq, tt.order, tt.sr); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestTwoWayAllpassSum(t *testing.T) {
	for _, order := range []int{2, 4, 8} {
		xo, err := New(1000, order, sr)
		if err != nil {
			t.Fatal(err)
		}

		for f := 20.0; f < 20000; f *= 1.4 {
			sum := xo.LP().Response(f, sr) + xo.HP().Response(f, sr)

			db := 20 * math.Log10(cmplx.Abs(sum))
			if math.Abs(db) > 0.01 {
				t.Errorf("LR%d f=%.0f: |LP+HP| = %v dB, want 0", order, f, db)
			}
		}
	}
}

func TestCrossoverPointLevels(t *testing.T) {
	xo, err := New(300, 4, sr)
	if err != nil {
		t.Fatal(err)
	}

	lp := xo.LP().MagnitudeDB(300, sr)
	hp := xo.HP().MagnitudeDB(300, sr)

	if math.Abs(lp+6.02) > 0.1 || math.Abs(hp+6.02) > 0.1 {
		t.Errorf("crossover levels LP=%.2f HP=%.2f dB, want -6.02", lp, hp)
	}
}

func TestProcessBlockMatchesProcessSample(t *testing.T) {
	a, err := New(2000, 4, sr)
	if err != nil {
		t.Fatal(err)
	}

	b, err := New(2000, 4, sr)
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.DeterministicNoise(7, 0.5, 333)

	lo := make([]float64, len(in))
	hi := make([]float64, len(in))
	a.ProcessBlock(in, lo, hi)

	for i, x := range in {
		wantLo, wantHi := b.ProcessSample(x)

		if math.Abs(lo[i]-wantLo) > 1e-12 || math.Abs(hi[i]-wantHi) > 1e-12 {
			t.Fatalf("sample %d: block=(%v,%v) sample=(%v,%v)", i, lo[i], hi[i], wantLo, wantHi)
		}
	}
}

func TestThreeBandAnalyticFlatness(t *testing.T) {
	tb, err := NewThreeBand(int(sr), 1)
	if err != nil {
		t.Fatal(err)
	}

	low := tb.lowStage[0]
	high := tb.highStage[0]

	// Band transfer functions of the cascade topology: the low stage's
	// highpass feeds the high stage.
	for f := 20.0; f < 20000; f *= 1.3 {
		hLow := low.LP().Response(f, sr)
		hMid := low.HP().Response(f, sr) * high.LP().Response(f, sr)
		hHigh := low.HP().Response(f, sr) * high.HP().Response(f, sr)

		sum := hLow + hMid + hHigh

		db := 20 * math.Log10(cmplx.Abs(sum))
		if math.Abs(db) > 0.1 {
			t.Errorf("f=%.0f: |sum| = %v dB, want 0 within 0.1 dB", f, db)
		}
	}
}

func TestThreeBandSplitShape(t *testing.T) {
	tb, err := NewThreeBand(44100, 2)
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.NoiseBuffer(t, 3, 44100, 2, 4096, 0.5)

	set, err := tb.Split(in)
	if err != nil {
		t.Fatal(err)
	}

	if err := set.Validate(); err != nil {
		t.Fatal(err)
	}

	for _, b := range set.Buffers() {
		if !b.SameShape(in) {
			t.Fatal("band shape differs from input")
		}
	}
}

func TestThreeBandValidation(t *testing.T) {
	if _, err := NewThreeBand(44100, 0); err == nil {
		t.Error("zero channels should fail")
	}

	if _, err := NewThreeBand(44100, 1, WithBoundaries(3000, 300)); err == nil {
		t.Error("descending boundaries should fail")
	}

	tb, err := NewThreeBand(44100, 1)
	if err != nil {
		t.Fatal(err)
	}

	wrongRate := testutil.SineBuffer(t, 440, 48000, 1, 512, 0.2)
	if _, err := tb.Split(wrongRate); err == nil {
		t.Error("sample rate mismatch should fail")
	}

	stereo := testutil.SineBuffer(t, 440, 44100, 2, 512, 0.2)
	if _, err := tb.Split(stereo); err == nil {
		t.Error("channel mismatch should fail")
	}
}

func TestThreeBandDoesNotModifyInput(t *testing.T) {
	tb, err := NewThreeBand(44100, 1)
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.NoiseBuffer(t, 11, 44100, 1, 1024, 0.5)
	ref := in.Clone()

	if _, err := tb.Split(in); err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, in.Channel(0), ref.Channel(0), 0)
}
