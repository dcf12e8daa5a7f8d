package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
	"github.com/cscb603/Background-Music-Processor/dsp/effects/spatial"
	"github.com/cscb603/Background-Music-Processor/internal/testutil"
	"github.com/cscb603/Background-Music-Processor/measure/loudness"
)

const sampleRate = 44100

func mustPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()

	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return p
}

func TestProcessHitsLoudnessTarget(t *testing.T) {
	p := mustPipeline(t, DefaultConfig())

	in := testutil.NoiseBuffer(t, 1, sampleRate, 2, 4*sampleRate, 0.1)

	out, diag, err := p.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if diag.FinalState != StateDone {
		t.Fatalf("final state = %v, want %v", diag.FinalState, StateDone)
	}

	if diag.LimiterEngaged {
		t.Fatal("limiter engaged on quiet noise input")
	}

	got, err := loudness.Measure(out)
	if err != nil {
		t.Fatalf("Measure output: %v", err)
	}

	if diff := math.Abs(got.IntegratedLUFS - p.Config().TargetLUFS); diff > 0.5 {
		t.Errorf("output loudness = %.2f LUFS, want %.2f +- 0.5",
			got.IntegratedLUFS, p.Config().TargetLUFS)
	}
}

func TestProcessIsDeterministic(t *testing.T) {
	p := mustPipeline(t, DefaultConfig())

	in := testutil.NoiseBuffer(t, 7, sampleRate, 2, 3*sampleRate, 0.2)

	first, _, err := p.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	second, _, err := p.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	for ch := 0; ch < first.Channels(); ch++ {
		a, b := first.Channel(ch), second.Channel(ch)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("channel %d sample %d differs: %g vs %g", ch, i, a[i], b[i])
			}
		}
	}
}

func TestProcessLeavesInputUntouched(t *testing.T) {
	p := mustPipeline(t, DefaultConfig())

	in := testutil.NoiseBuffer(t, 3, sampleRate, 2, 3*sampleRate, 0.2)
	snapshot := in.Clone()

	if _, _, err := p.Process(context.Background(), in); err != nil {
		t.Fatalf("Process: %v", err)
	}

	for ch := 0; ch < in.Channels(); ch++ {
		a, b := in.Channel(ch), snapshot.Channel(ch)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("input channel %d sample %d mutated", ch, i)
			}
		}
	}
}

func TestProcessMonoWithWideField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Preset = spatial.PresetWideField

	p := mustPipeline(t, cfg)

	in := testutil.NoiseBuffer(t, 11, sampleRate, 1, 3*sampleRate, 0.15)

	out, diag, err := p.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("Process mono: %v", err)
	}

	if out.Channels() != 1 {
		t.Fatalf("output channels = %d, want 1", out.Channels())
	}

	if diag.FinalState != StateDone {
		t.Fatalf("final state = %v, want done", diag.FinalState)
	}
}

func TestProcessShortInputFailsMeasuring(t *testing.T) {
	p := mustPipeline(t, DefaultConfig())

	in := testutil.NoiseBuffer(t, 5, sampleRate, 2, sampleRate/10, 0.2)

	out, diag, err := p.Process(context.Background(), in)
	if out != nil {
		t.Fatal("expected nil output on failure")
	}

	if diag.FinalState != StateFailed {
		t.Fatalf("final state = %v, want failed", diag.FinalState)
	}

	if !errors.Is(err, loudness.ErrInsufficientAudio) {
		t.Fatalf("error = %v, want ErrInsufficientAudio", err)
	}

	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("error %T is not a StageError", err)
	}

	if se.Stage != StateMeasuring {
		t.Errorf("failing stage = %v, want %v", se.Stage, StateMeasuring)
	}
}

func TestProcessRejectsBadInput(t *testing.T) {
	p := mustPipeline(t, DefaultConfig())

	if _, _, err := p.Process(context.Background(), nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil input: error = %v, want ErrInvalidInput", err)
	}

	multi, err := buffer.New(sampleRate, 4, 1024)
	if err != nil {
		t.Fatalf("New buffer: %v", err)
	}

	if _, _, err := p.Process(context.Background(), multi); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("4-channel input: error = %v, want ErrInvalidInput", err)
	}
}

func TestProcessHonorsCancellation(t *testing.T) {
	p := mustPipeline(t, DefaultConfig())

	in := testutil.NoiseBuffer(t, 9, sampleRate, 2, 2*sampleRate, 0.2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, diag, err := p.Process(ctx, in)
	if out != nil {
		t.Fatal("expected nil output on cancellation")
	}

	if diag.FinalState != StateFailed {
		t.Fatalf("final state = %v, want failed", diag.FinalState)
	}

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestNewRejectsBadWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BandWeights[buffer.BandMid] = 0

	if _, err := New(cfg); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero weight: error = %v, want ErrInvalidInput", err)
	}
}

func TestStageErrorMessageNamesStage(t *testing.T) {
	err := stageErr(StateSplitting, errors.New("boom"))

	want := "pipeline: stage splitting: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
