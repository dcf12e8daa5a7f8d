package pipeline

import (
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
)

// recombine mixes the three compressed bands back into one buffer,
// applying the configured per-band weights. The band buffers are left
// untouched; the scratch block comes from the shared pool.
func recombine(set *buffer.BandSet, weights [buffer.NumBands]float64, pool *buffer.Pool) (*buffer.AudioBuffer, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	bands := set.Buffers()
	ref := bands[buffer.BandLow]

	out, err := buffer.New(ref.SampleRate(), ref.Channels(), ref.Frames())
	if err != nil {
		return nil, err
	}

	scratch := pool.Get(ref.Frames())
	defer pool.Put(scratch)

	for ch := 0; ch < ref.Channels(); ch++ {
		dst := out.Channel(ch)
		vecmath.ScaleBlock(dst, bands[buffer.BandLow].Channel(ch), weights[buffer.BandLow])

		for _, band := range []buffer.Band{buffer.BandMid, buffer.BandHigh} {
			vecmath.ScaleBlock(scratch, bands[band].Channel(ch), weights[band])
			vecmath.AddBlockInPlace(dst, scratch)
		}
	}

	return out, nil
}
