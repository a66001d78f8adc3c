// Package display renders readings into fixed-width text frames for a
// character display and the web dashboard.
package display

import (
	"fmt"
	"strings"
	"time"

	"purpleair_display/internal/models"
)

const (
	DefaultWidth = 20
	frameLines   = 4
	waitingColor = "#808080"
	waitingText  = "Waiting for sensor"
)

// Options control how a frame is laid out.
type Options struct {
	Width      int           // characters per line; 0 means DefaultWidth
	StaleAfter time.Duration // 0 disables the staleness marker
	Hostname   string        // shown on the last line while fresh
}

// Frame is one screenful of text plus the AQI category colour.
type Frame struct {
	Lines []string `json:"lines"`
	Color string   `json:"color"`
	Stale bool     `json:"stale"`
}

// Text joins the lines with newlines.
func (f Frame) Text() string {
	return strings.Join(f.Lines, "\n")
}

// Render lays out r as four lines no wider than opts.Width runes.
func Render(r models.Reading, now time.Time, opts Options) Frame {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}

	if r.Status != models.StatusOK || r.FetchedAt.IsZero() {
		return Frame{
			Lines: fit([]string{waitingText, "", "", opts.Hostname}, width),
			Color: waitingColor,
		}
	}

	pm := fmt.Sprintf("PM2.5 %.1f ug/m3", r.PM25)
	if r.HasFlag(models.FlagChannelMismatch) {
		pm += " A/B!"
	}

	footer := opts.Hostname
	age := now.Sub(r.FetchedAt)
	stale := opts.StaleAfter > 0 && age > opts.StaleAfter
	if stale {
		footer = "STALE " + shortAge(age)
	}

	return Frame{
		Lines: fit([]string{
			fmt.Sprintf("AQI %d %s", r.AQI, r.Category),
			pm,
			fmt.Sprintf("%.0fF %.0f%%RH", r.TempF, r.HumidityPct),
			footer,
		}, width),
		Color: r.Color,
		Stale: stale,
	}
}

// shortAge formats d compactly, e.g. "45s", "12m", "3h", "2d".
func shortAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}

func fit(lines []string, width int) []string {
	out := make([]string, frameLines)
	for i := 0; i < frameLines && i < len(lines); i++ {
		rs := []rune(lines[i])
		if len(rs) > width {
			rs = rs[:width]
		}
		out[i] = string(rs)
	}
	return out
}
