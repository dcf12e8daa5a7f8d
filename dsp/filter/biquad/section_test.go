package biquad

import (
	"math"
	"testing"
)

func TestSectionIdentity(t *testing.T) {
	s := NewSection(Coefficients{B0: 1})

	for _, x := range []float64{0, 1, -1, 0.5, 1e-3} {
		if y := s.ProcessSample(x); y != x {
			t.Errorf("identity: got %v, want %v", y, x)
		}
	}
}

func TestSectionGain(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.5})

	if y := s.ProcessSample(1); y != 0.5 {
		t.Errorf("gain: got %v, want 0.5", y)
	}
}

func TestProcessBlockMatchesProcessSample(t *testing.T) {
	c := Coefficients{B0: 0.2, B1: 0.3, B2: 0.1, A1: -0.4, A2: 0.2}

	in := make([]float64, 257) // odd length exercises the unroll tail
	for i := range in {
		in[i] = math.Sin(0.07 * float64(i))
	}

	ref := NewSection(c)
	want := make([]float64, len(in))
	for i, x := range in {
		want[i] = ref.ProcessSample(x)
	}

	got := make([]float64, len(in))
	copy(got, in)
	blk := NewSection(c)
	blk.ProcessBlock(got)

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("sample %d: block=%v sample=%v", i, got[i], want[i])
		}
	}

	if blk.State() != ref.State() {
		t.Errorf("final state mismatch: block=%v sample=%v", blk.State(), ref.State())
	}
}

func TestProcessBlockTo(t *testing.T) {
	c := Coefficients{B0: 0.7, B1: -0.2, A1: -0.1}

	in := []float64{1, 0, 0.5, -0.5, 0.25}

	inPlace := NewSection(c)
	buf := make([]float64, len(in))
	copy(buf, in)
	inPlace.ProcessBlock(buf)

	out := make([]float64, len(in))
	sep := NewSection(c)
	sep.ProcessBlockTo(out, in)

	for i := range buf {
		if math.Abs(out[i]-buf[i]) > 1e-15 {
			t.Fatalf("sample %d: to=%v inplace=%v", i, out[i], buf[i])
		}
	}
}

func TestSectionResetAndState(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.5, B1: 0.5, A1: -0.3})
	s.ProcessSample(1)
	s.ProcessSample(-1)

	saved := s.State()
	if saved == ([2]float64{}) {
		t.Fatal("state should be nonzero after processing")
	}

	s.Reset()
	if s.State() != ([2]float64{}) {
		t.Error("Reset should zero the delay line")
	}

	s.SetState(saved)
	if s.State() != saved {
		t.Error("SetState should restore the saved state")
	}
}

func TestChainCascadeEquivalence(t *testing.T) {
	c1 := Coefficients{B0: 0.3, B1: 0.2, A1: -0.5, A2: 0.1}
	c2 := Coefficients{B0: 0.8, B1: -0.1, A1: 0.2}

	chain := NewChain([]Coefficients{c1, c2})

	s1 := NewSection(c1)
	s2 := NewSection(c2)

	for i := range 64 {
		x := math.Cos(0.11 * float64(i))

		want := s2.ProcessSample(s1.ProcessSample(x))
		got := chain.ProcessSample(x)

		if math.Abs(got-want) > 1e-15 {
			t.Fatalf("sample %d: chain=%v manual=%v", i, got, want)
		}
	}
}

func TestChainWithGain(t *testing.T) {
	chain := NewChain([]Coefficients{{B0: 1}}, WithGain(2))

	if y := chain.ProcessSample(0.25); y != 0.5 {
		t.Errorf("got %v, want 0.5", y)
	}

	if chain.Gain() != 2 {
		t.Errorf("Gain() = %v, want 2", chain.Gain())
	}
}

func TestChainOrder(t *testing.T) {
	chain := NewChain(make([]Coefficients, 3))

	if chain.Order() != 6 {
		t.Errorf("Order() = %d, want 6", chain.Order())
	}

	if chain.NumSections() != 3 {
		t.Errorf("NumSections() = %d, want 3", chain.NumSections())
	}
}

func TestChainProcessBlockTo(t *testing.T) {
	coeffs := []Coefficients{
		{B0: 0.4, B1: 0.1, A1: -0.2},
		{B0: 0.9, B2: 0.05, A2: 0.1},
	}

	in := make([]float64, 128)
	for i := range in {
		in[i] = math.Sin(0.05 * float64(i))
	}

	ref := NewChain(coeffs)
	buf := make([]float64, len(in))
	copy(buf, in)
	ref.ProcessBlock(buf)

	out := make([]float64, len(in))
	chain := NewChain(coeffs)
	chain.ProcessBlockTo(out, in)

	for i := range buf {
		if math.Abs(out[i]-buf[i]) > 1e-13 {
			t.Fatalf("sample %d: to=%v inplace=%v", i, out[i], buf[i])
		}
	}
}
