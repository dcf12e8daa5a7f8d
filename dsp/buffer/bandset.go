package buffer

import "fmt"

// Band indexes one of the three crossover bands.
type Band int

// Bands ordered from lowest to highest frequency.
const (
	BandLow Band = iota
	BandMid
	BandHigh
	NumBands
)

// String returns the band name.
func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMid:
		return "mid"
	case BandHigh:
		return "high"
	default:
		return fmt.Sprintf("band(%d)", int(b))
	}
}

// BandSet holds the three frequency-band buffers produced by the
// crossover splitter. All three share the source buffer's sample rate,
// channel count and frame count. Summing the unprocessed bands
// reconstructs the source within the crossover's allpass tolerance.
type BandSet struct {
	Low  *AudioBuffer
	Mid  *AudioBuffer
	High *AudioBuffer
}

// Buffers returns the band buffers ordered low to high.
func (s *BandSet) Buffers() [NumBands]*AudioBuffer {
	return [NumBands]*AudioBuffer{s.Low, s.Mid, s.High}
}

// Validate checks that all three bands are present and share one shape.
func (s *BandSet) Validate() error {
	if s.Low == nil || s.Mid == nil || s.High == nil {
		return fmt.Errorf("bandset: all three bands must be present")
	}

	if !s.Low.SameShape(s.Mid) || !s.Low.SameShape(s.High) {
		return fmt.Errorf("bandset: band shapes differ: low %dch/%df, mid %dch/%df, high %dch/%df",
			s.Low.Channels(), s.Low.Frames(),
			s.Mid.Channels(), s.Mid.Frames(),
			s.High.Channels(), s.High.Frames())
	}

	return nil
}
