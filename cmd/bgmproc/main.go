// Command bgmproc conditions a music file for use as background audio:
// rumble removal, three-band compression, corrective EQ, stereo field
// shaping and loudness normalization to a streaming target.
//
// Usage:
//
//	bgmproc [flags] input.wav output.wav
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/cscb603/Background-Music-Processor/dsp/effects/eq"
	"github.com/cscb603/Background-Music-Processor/dsp/effects/spatial"
	"github.com/cscb603/Background-Music-Processor/pipeline"
)

var version = "0.1.0"

type CLI struct {
	Input  string `arg:"" help:"Input WAV file." type:"existingfile"`
	Output string `arg:"" help:"Output WAV file."`

	Preset     string  `short:"p" default:"slight-expansion" help:"Stereo field preset: original, slight-expansion or wide-field."`
	Target     float64 `short:"t" default:"-16" help:"Target integrated loudness in LUFS."`
	LowCut     float64 `default:"50" help:"Low cut corner frequency in Hz."`
	MusicEQ    bool    `help:"Use the music enhancement EQ curve instead of vocal avoidance."`
	NoAdaptive bool    `help:"Disable dynamic range adaptive compression."`
	BitDepth   int     `default:"16" help:"Output bit depth (16 or 24)."`
	Version    kong.VersionFlag `short:"v" help:"Show version and exit."`
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("bgmproc"),
		kong.Description("Background music conditioner"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	if err := run(cli); err != nil {
		printError(err)
		kctx.Exit(1)
	}
}

func run(cli *CLI) error {
	preset, err := spatial.ParsePreset(cli.Preset)
	if err != nil {
		return err
	}

	if cli.BitDepth != 16 && cli.BitDepth != 24 {
		return fmt.Errorf("unsupported bit depth %d, want 16 or 24", cli.BitDepth)
	}

	cfg := pipeline.DefaultConfig()
	cfg.Preset = preset
	cfg.TargetLUFS = cli.Target
	cfg.LowCutHz = cli.LowCut
	cfg.AdaptiveCompression = !cli.NoAdaptive

	if cli.MusicEQ {
		cfg.EQBands = eq.MusicEnhance()
	}

	proc, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	in, err := readWAV(cli.Input)
	if err != nil {
		return fmt.Errorf("read %s: %w", cli.Input, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()

	out, diag, err := proc.Process(ctx, in)
	if err != nil {
		return err
	}

	if err := writeWAV(cli.Output, out, cli.BitDepth); err != nil {
		return fmt.Errorf("write %s: %w", cli.Output, err)
	}

	printReport(cli.Input, cli.Output, cfg, diag, time.Since(start))

	return nil
}
