package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cscb603/Background-Music-Processor/dsp/buffer"
	"github.com/cscb603/Background-Music-Processor/pipeline"
)

var (
	accentColor = lipgloss.Color("#5F87AF")
	mutedColor  = lipgloss.Color("#888888")
	warnColor   = lipgloss.Color("#AF5F00")
	errorColor  = lipgloss.Color("#A40000")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginBottom(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warnColor)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)
)

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("Error:"), err)
}

func row(key, value string) string {
	return keyStyle.Render(key) + valueStyle.Render(value)
}

func printReport(input, output string, cfg pipeline.Config, diag pipeline.Diagnostics, elapsed time.Duration) {
	fmt.Println(titleStyle.Render("bgmproc"))
	fmt.Println(row("Input:", input))
	fmt.Println(row("Output:", output))
	fmt.Println(row("Preset:", cfg.Preset.String()))
	fmt.Println(row("Dynamic range:", fmt.Sprintf("%.1f dB", diag.DynamicRangeDB)))
	fmt.Println(row("Measured loudness:", fmt.Sprintf("%.2f LUFS", diag.MeasuredInputLUFS)))
	fmt.Println(row("Applied gain:", fmt.Sprintf("%+.2f dB", diag.AppliedGainDB)))

	for band, m := range diag.BandMetrics {
		fmt.Println(row(
			fmt.Sprintf("%s band reduction:", buffer.Band(band)),
			fmt.Sprintf("%.1f dB", m.GainReduction)))
	}

	if diag.LimiterEngaged {
		fmt.Println(warnStyle.Render("Peak limiter engaged; output sits below the loudness target."))
	}

	fmt.Println(row("Elapsed:", elapsed.Round(time.Millisecond).String()))
}
