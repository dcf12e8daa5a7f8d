package dynrange

import (
	"math"
	"testing"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
	"github.com/cscb603/Background-Music-Processor/internal/testutil"
)

const fs = 48000

func TestSteadyToneHasLittleRange(t *testing.T) {
	buf := testutil.SineBuffer(t, 1000, fs, 1, fs*2, 0.5)

	est, err := Analyze(buf)
	if err != nil {
		t.Fatal(err)
	}

	if est.RangeDB > 0.5 {
		t.Errorf("steady tone range = %.2f dB, want ~0", est.RangeDB)
	}

	if est.Windows != 8 {
		t.Errorf("windows = %d, want 8", est.Windows)
	}
}

func TestLoudQuietAlternationMeasuresSpread(t *testing.T) {
	// One second at -6 dB followed by one second at -30 dB: the spread
	// should read close to 24 dB.
	loud := testutil.DeterministicSine(1000, fs, math.Pow(10, -6.0/20), fs)
	quiet := testutil.DeterministicSine(1000, fs, math.Pow(10, -30.0/20), fs)

	data := append(append([]float64{}, loud...), quiet...)

	buf, err := buffer.FromPlanar(fs, [][]float64{data})
	if err != nil {
		t.Fatal(err)
	}

	est, err := Analyze(buf)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(est.RangeDB-24) > 1.5 {
		t.Errorf("range = %.2f dB, want ~24", est.RangeDB)
	}
}

func TestSilenceExcluded(t *testing.T) {
	// Tone plus trailing digital silence: silence must not inflate the
	// range estimate.
	tone := testutil.DeterministicSine(1000, fs, 0.5, fs)
	data := make([]float64, fs*2)
	copy(data, tone)

	buf, err := buffer.FromPlanar(fs, [][]float64{data})
	if err != nil {
		t.Fatal(err)
	}

	est, err := Analyze(buf)
	if err != nil {
		t.Fatal(err)
	}

	if est.RangeDB > 0.5 {
		t.Errorf("range = %.2f dB, want ~0 with silence gated out", est.RangeDB)
	}

	if est.Windows != 4 {
		t.Errorf("windows = %d, want 4 non-silent", est.Windows)
	}
}

func TestShortBufferReportsNoRange(t *testing.T) {
	buf := testutil.SineBuffer(t, 1000, fs, 1, fs/10, 0.5)

	est, err := Analyze(buf)
	if err != nil {
		t.Fatal(err)
	}

	if est.RangeDB != 0 || est.Windows != 0 {
		t.Errorf("short buffer: %+v, want zero estimate", est)
	}
}

func TestNilBuffer(t *testing.T) {
	if _, err := Analyze(nil); err == nil {
		t.Error("nil buffer should fail")
	}
}
