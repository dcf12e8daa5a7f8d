package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
	"github.com/cscb603/Background-Music-Processor/dsp/core"
)

// readWAV decodes a PCM WAV file into a planar float buffer scaled to
// [-1, 1].
func readWAV(path string) (*buffer.AudioBuffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, errors.New("not a valid WAV file")
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode PCM: %w", err)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	scale := 1.0 / float64(int64(1)<<(bitDepth-1))

	samples := make([]float64, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = float64(v) * scale
	}

	return buffer.FromInterleaved(pcm.Format.SampleRate, pcm.Format.NumChannels, samples)
}

// writeWAV encodes the buffer as PCM WAV at the requested bit depth.
// Samples outside [-1, 1] are clamped.
func writeWAV(path string, buf *buffer.AudioBuffer, bitDepth int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fullScale := float64(int64(1)<<(bitDepth-1)) - 1

	interleaved := buf.Interleaved()

	data := make([]int, len(interleaved))
	for i, v := range interleaved {
		data[i] = int(core.Clamp(v, -1, 1) * fullScale)
	}

	pcm := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: buf.Channels(),
			SampleRate:  buf.SampleRate(),
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	encoder := wav.NewEncoder(file, buf.SampleRate(), bitDepth, buf.Channels(), 1)

	if err := encoder.Write(pcm); err != nil {
		return fmt.Errorf("encode PCM: %w", err)
	}

	// Close finalizes the RIFF header, so its error matters.
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize WAV: %w", err)
	}

	return nil
}
