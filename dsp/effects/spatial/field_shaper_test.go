package spatial

import (
	"math"
	"testing"

	"github.com/cscb603/Background-Music-Processor/internal/testutil"
)

func TestOriginalPresetIsIdentity(t *testing.T) {
	f, err := NewFieldShaper(PresetOriginal)
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.NoiseBuffer(t, 1, 48000, 2, 1024, 0.8)
	ref := in.Clone()

	out, err := f.Process(in)
	if err != nil {
		t.Fatal(err)
	}

	for ch := range 2 {
		for i := range out.Channel(ch) {
			if out.Channel(ch)[i] != ref.Channel(ch)[i] {
				t.Fatalf("channel %d sample %d changed: %v != %v",
					ch, i, out.Channel(ch)[i], ref.Channel(ch)[i])
			}
		}
	}
}

func TestMonoPassThrough(t *testing.T) {
	f, err := NewFieldShaper(PresetWideField)
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.NoiseBuffer(t, 2, 48000, 1, 512, 0.5)
	ref := in.Clone()

	out, err := f.Process(in)
	if err != nil {
		t.Fatal(err)
	}

	for i := range out.Channel(0) {
		if out.Channel(0)[i] != ref.Channel(0)[i] {
			t.Fatalf("mono sample %d changed", i)
		}
	}
}

func TestMidPreserved(t *testing.T) {
	f, err := NewFieldShaper(PresetWideField)
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.NoiseBuffer(t, 3, 48000, 2, 1024, 0.4)

	left := append([]float64(nil), in.Channel(0)...)
	right := append([]float64(nil), in.Channel(1)...)

	if _, err := f.Process(in); err != nil {
		t.Fatal(err)
	}

	for i := range left {
		midIn := (left[i] + right[i]) / 2
		midOut := (in.Channel(0)[i] + in.Channel(1)[i]) / 2

		if math.Abs(midIn-midOut) > 1e-12 {
			t.Fatalf("mid changed at %d: %v != %v", i, midOut, midIn)
		}
	}
}

func TestSideScaled(t *testing.T) {
	for _, preset := range []Preset{PresetSlightExpansion, PresetWideField} {
		f, err := NewFieldShaper(preset)
		if err != nil {
			t.Fatal(err)
		}

		in := testutil.NoiseBuffer(t, 4, 48000, 2, 512, 0.3)

		left := append([]float64(nil), in.Channel(0)...)
		right := append([]float64(nil), in.Channel(1)...)

		if _, err := f.Process(in); err != nil {
			t.Fatal(err)
		}

		gain := preset.SideGain()

		for i := range left {
			sideIn := (left[i] - right[i]) / 2
			sideOut := (in.Channel(0)[i] - in.Channel(1)[i]) / 2

			if math.Abs(sideOut-sideIn*gain) > 1e-12 {
				t.Fatalf("%v: side at %d is %v, want %v", preset, i, sideOut, sideIn*gain)
			}
		}
	}
}

func TestPresetOrdering(t *testing.T) {
	if !(PresetWideField.SideGain() > PresetSlightExpansion.SideGain()) {
		t.Error("wide-field must widen more than slight-expansion")
	}

	if PresetSlightExpansion.SideGain() <= 1 {
		t.Error("slight-expansion must widen, not narrow")
	}

	for _, p := range []Preset{PresetOriginal, PresetSlightExpansion, PresetWideField} {
		if p.SideGain() > MaxSideGain {
			t.Errorf("%v: side gain %v exceeds cap %v", p, p.SideGain(), MaxSideGain)
		}
	}
}

func TestWithSideGain(t *testing.T) {
	f, err := NewFieldShaper(PresetOriginal, WithSideGain(1.5))
	if err != nil {
		t.Fatal(err)
	}

	if f.SideGain() != 1.5 {
		t.Errorf("side gain = %v, want 1.5", f.SideGain())
	}

	if _, err := NewFieldShaper(PresetOriginal, WithSideGain(2.5)); err == nil {
		t.Error("gain above cap should fail")
	}

	if _, err := NewFieldShaper(PresetOriginal, WithSideGain(-0.1)); err == nil {
		t.Error("negative gain should fail")
	}
}

func TestParsePreset(t *testing.T) {
	for _, p := range []Preset{PresetOriginal, PresetSlightExpansion, PresetWideField} {
		got, err := ParsePreset(p.String())
		if err != nil || got != p {
			t.Errorf("round trip %v: got %v, %v", p, got, err)
		}
	}

	if _, err := ParsePreset("ultra"); err == nil {
		t.Error("unknown preset should fail")
	}
}

func TestUnsupportedChannelCount(t *testing.T) {
	f, err := NewFieldShaper(PresetSlightExpansion)
	if err != nil {
		t.Fatal(err)
	}

	in := testutil.NoiseBuffer(t, 5, 48000, 3, 64, 0.1)
	if _, err := f.Process(in); err == nil {
		t.Error("three channels should fail")
	}
}
