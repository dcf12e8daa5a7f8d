// Package pipeline chains the processing stages for background music
// conditioning: rumble removal, three-band compression, recombination,
// corrective EQ, stereo field shaping and loudness normalization.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
	"github.com/cscb603/Background-Music-Processor/dsp/effects/dynamics"
	"github.com/cscb603/Background-Music-Processor/dsp/effects/eq"
	"github.com/cscb603/Background-Music-Processor/dsp/effects/spatial"
	"github.com/cscb603/Background-Music-Processor/dsp/filter/crossover"
	"github.com/cscb603/Background-Music-Processor/dsp/filter/lowcut"
	"github.com/cscb603/Background-Music-Processor/dsp/normalize"
	"github.com/cscb603/Background-Music-Processor/measure/dynrange"
	"github.com/cscb603/Background-Music-Processor/measure/loudness"
)

// Diagnostics summarizes a completed run.
type Diagnostics struct {
	// MeasuredInputLUFS is the integrated loudness going into the
	// normalizer, after all tonal and dynamic processing.
	MeasuredInputLUFS float64

	// AppliedGainDB is the scalar gain the normalizer applied.
	AppliedGainDB float64

	// LimiterEngaged reports that the gain was pulled back to keep
	// peaks under the ceiling.
	LimiterEngaged bool

	// DynamicRangeDB is the loud-to-quiet spread estimated from the
	// raw input.
	DynamicRangeDB float64

	// BandMetrics carries the per-band compressor telemetry.
	BandMetrics [buffer.NumBands]dynamics.Metrics

	// FinalState is StateDone on success, StateFailed otherwise.
	FinalState State
}

// Pipeline runs the full stage sequence over decoded audio. It holds no
// per-run state; a single Pipeline must not be used from multiple
// goroutines at once.
type Pipeline struct {
	cfg  Config
	pool *buffer.Pool
}

// New validates the config and returns a ready Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Pipeline{cfg: cfg, pool: buffer.NewPool()}, nil
}

// Config returns the settings this pipeline runs with.
func (p *Pipeline) Config() Config { return p.cfg }

// Process runs every stage over a copy of in. The input buffer is never
// modified. On failure the returned buffer is nil, Diagnostics carries
// StateFailed, and the error is a *StageError naming the stage that
// broke the run.
func (p *Pipeline) Process(ctx context.Context, in *buffer.AudioBuffer) (*buffer.AudioBuffer, Diagnostics, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	diag := Diagnostics{FinalState: StateFailed}

	fail := func(stage State, err error) (*buffer.AudioBuffer, Diagnostics, error) {
		return nil, diag, stageErr(stage, err)
	}

	if err := validateInput(in); err != nil {
		return fail(StateAnalyzing, err)
	}

	sr := in.SampleRate()
	channels := in.Channels()

	// Analyzing: estimate the input's dynamic range so the mid band
	// can compress gently on already-dense material.
	if err := ctx.Err(); err != nil {
		return fail(StateAnalyzing, err)
	}

	bandParams := dynamics.BandParams()

	if p.cfg.AdaptiveCompression {
		est, err := dynrange.Analyze(in)
		if err != nil {
			return fail(StateAnalyzing, err)
		}

		diag.DynamicRangeDB = est.RangeDB
		bandParams = dynamics.AdaptiveBandParams(est.RangeDB)
	}

	work := in.Clone()

	// LowCut.
	if err := ctx.Err(); err != nil {
		return fail(StateLowCut, err)
	}

	hpf, err := lowcut.New(sr, channels,
		lowcut.WithCutoff(p.cfg.LowCutHz),
		lowcut.WithOrder(p.cfg.LowCutOrder))
	if err != nil {
		return fail(StateLowCut, err)
	}

	if _, err := hpf.Process(work); err != nil {
		return fail(StateLowCut, err)
	}

	// Splitting.
	if err := ctx.Err(); err != nil {
		return fail(StateSplitting, err)
	}

	splitter, err := crossover.NewThreeBand(sr, channels,
		crossover.WithBoundaries(p.cfg.CrossoverLowHz, p.cfg.CrossoverHighHz),
		crossover.WithOrder(p.cfg.CrossoverOrder))
	if err != nil {
		return fail(StateSplitting, err)
	}

	set, err := splitter.Split(work)
	if err != nil {
		return fail(StateSplitting, err)
	}

	// Compressing: the three bands are independent, so each gets its
	// own goroutine.
	if err := ctx.Err(); err != nil {
		return fail(StateCompressing, err)
	}

	comp, err := dynamics.NewBandCompressor(float64(sr), channels, bandParams)
	if err != nil {
		return fail(StateCompressing, err)
	}

	if err := compressBands(comp, set); err != nil {
		return fail(StateCompressing, err)
	}

	diag.BandMetrics = comp.Metrics()

	// Recombining.
	if err := ctx.Err(); err != nil {
		return fail(StateRecombining, err)
	}

	mixed, err := recombine(set, p.cfg.BandWeights, p.pool)
	if err != nil {
		return fail(StateRecombining, err)
	}

	// Equalizing.
	if err := ctx.Err(); err != nil {
		return fail(StateEqualizing, err)
	}

	equalizer, err := eq.New(sr, channels, p.cfg.EQBands)
	if err != nil {
		return fail(StateEqualizing, err)
	}

	if _, err := equalizer.Process(mixed); err != nil {
		return fail(StateEqualizing, err)
	}

	// Shaping.
	if err := ctx.Err(); err != nil {
		return fail(StateShaping, err)
	}

	shaper, err := spatial.NewFieldShaper(p.cfg.Preset)
	if err != nil {
		return fail(StateShaping, err)
	}

	shaped, err := shaper.Process(mixed)
	if err != nil {
		return fail(StateShaping, err)
	}

	// Measuring.
	if err := ctx.Err(); err != nil {
		return fail(StateMeasuring, err)
	}

	measured, err := loudness.Measure(shaped)
	if err != nil {
		return fail(StateMeasuring, err)
	}

	diag.MeasuredInputLUFS = measured.IntegratedLUFS

	// Normalizing.
	if err := ctx.Err(); err != nil {
		return fail(StateNormalizing, err)
	}

	norm, err := normalize.New(
		normalize.WithTarget(p.cfg.TargetLUFS),
		normalize.WithCeiling(p.cfg.CeilingDB))
	if err != nil {
		return fail(StateNormalizing, err)
	}

	res, err := norm.Apply(shaped, measured)
	if err != nil {
		return fail(StateNormalizing, err)
	}

	diag.AppliedGainDB = res.AppliedGainDB
	diag.LimiterEngaged = res.LimiterEngaged
	diag.FinalState = StateDone

	return shaped, diag, nil
}

func validateInput(in *buffer.AudioBuffer) error {
	if in == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidInput)
	}

	if in.SampleRate() <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidInput, in.SampleRate())
	}

	if ch := in.Channels(); ch < 1 || ch > 2 {
		return fmt.Errorf("%w: %d channels, want mono or stereo", ErrInvalidInput, ch)
	}

	if in.Frames() == 0 {
		return fmt.Errorf("%w: empty buffer", ErrInvalidInput)
	}

	return nil
}

// compressBands runs one goroutine per band and reports the first
// failure.
func compressBands(comp *dynamics.BandCompressor, set *buffer.BandSet) error {
	bands := set.Buffers()

	var (
		wg   sync.WaitGroup
		errs [buffer.NumBands]error
	)

	for band, buf := range bands {
		wg.Add(1)

		go func(band buffer.Band, buf *buffer.AudioBuffer) {
			defer wg.Done()
			errs[band] = comp.ProcessBand(band, buf)
		}(buffer.Band(band), buf)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
