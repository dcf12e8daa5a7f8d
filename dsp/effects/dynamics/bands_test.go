package dynamics

import (
	"math"
	"testing"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
	"github.com/cscb603/Background-Music-Processor/internal/testutil"
)

func TestBandParamsOrdering(t *testing.T) {
	p := BandParams()

	// The low band is compressed hardest, the high band gentlest.
	if !(p[buffer.BandLow].Ratio > p[buffer.BandMid].Ratio) {
		t.Error("low band ratio should exceed mid band ratio")
	}

	if !(p[buffer.BandLow].ThresholdDB < p[buffer.BandHigh].ThresholdDB) {
		t.Error("low band threshold should sit below high band threshold")
	}

	if !(p[buffer.BandLow].AttackMs > p[buffer.BandHigh].AttackMs) {
		t.Error("low band attack should be slower than high band attack")
	}
}

func TestAdaptiveBandParams(t *testing.T) {
	narrow := AdaptiveBandParams(12)
	if narrow[buffer.BandMid].Ratio != midRatio {
		t.Errorf("narrow material: mid ratio %v, want %v", narrow[buffer.BandMid].Ratio, midRatio)
	}

	wide := AdaptiveBandParams(25)
	if wide[buffer.BandMid].Ratio != midRatioWide {
		t.Errorf("wide material: mid ratio %v, want %v", wide[buffer.BandMid].Ratio, midRatioWide)
	}

	// Other bands are untouched.
	if wide[buffer.BandLow] != narrow[buffer.BandLow] || wide[buffer.BandHigh] != narrow[buffer.BandHigh] {
		t.Error("adaptive ratio must only affect the mid band")
	}
}

func TestBandCompressorIndependentState(t *testing.T) {
	bc, err := NewBandCompressor(sr, 2, BandParams())
	if err != nil {
		t.Fatal(err)
	}

	// Loud low band, silent mid and high: only the low band may change.
	set := &buffer.BandSet{
		Low:  testutil.SineBuffer(t, 100, int(sr), 2, 4800, 0.8),
		Mid:  testutil.SineBuffer(t, 1000, int(sr), 2, 4800, 0),
		High: testutil.SineBuffer(t, 8000, int(sr), 2, 4800, 0),
	}

	if err := bc.Process(set); err != nil {
		t.Fatal(err)
	}

	for ch := range 2 {
		for i, v := range set.Mid.Channel(ch) {
			if v != 0 {
				t.Fatalf("mid band modified at %d: %v", i, v)
			}
		}
	}

	m := bc.Metrics()
	if m[buffer.BandLow].GainReduction >= 1 {
		t.Error("loud low band should show gain reduction")
	}

	if m[buffer.BandMid].GainReduction != 1 || m[buffer.BandHigh].GainReduction != 1 {
		t.Error("silent bands must show no gain reduction")
	}
}

func TestBandCompressorReducesLoudBand(t *testing.T) {
	bc, err := NewBandCompressor(sr, 1, BandParams())
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.SineBuffer(t, 100, int(sr), 1, int(sr), 0.9)
	ref := in.Clone()

	if err := bc.ProcessBand(buffer.BandLow, in); err != nil {
		t.Fatal(err)
	}

	// Steady-state RMS must drop for a signal far above threshold.
	half := in.Frames() / 2
	outRMS := testutil.RMS(in.Channel(0)[half:])
	inRMS := testutil.RMS(ref.Channel(0)[half:])

	if db := 20 * math.Log10(outRMS/inRMS); db > -3 {
		t.Errorf("loud low band reduced by only %.2f dB", db)
	}
}

func TestBandCompressorShapeChecks(t *testing.T) {
	bc, err := NewBandCompressor(sr, 1, BandParams())
	if err != nil {
		t.Fatal(err)
	}

	stereo := testutil.SineBuffer(t, 440, int(sr), 2, 256, 0.1)
	if err := bc.ProcessBand(buffer.BandMid, stereo); err == nil {
		t.Error("channel mismatch should fail")
	}

	if err := bc.ProcessBand(buffer.BandMid, nil); err == nil {
		t.Error("nil buffer should fail")
	}

	if _, err := NewBandCompressor(sr, 0, BandParams()); err == nil {
		t.Error("zero channels should fail")
	}
}
