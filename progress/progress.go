// Package progress wraps cheggaaa/pb with captions and a quiet mode so
// benchmark phases can report progress without cluttering scripted runs.
package progress

import (
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/minio/pkg/console"
)

// Bar is a phase progress bar. A quiet Bar is inert: Increment and Finish
// are safe no-ops, so callers never branch on quietness themselves.
type Bar struct {
	bar *pb.ProgressBar
}

// New starts a progress bar for a phase of total steps. caption labels the
// phase; quiet suppresses all output.
func New(total int64, caption string, quiet bool) *Bar {
	if quiet {
		return &Bar{}
	}

	// Progress bar specific theme customization.
	console.SetColor("Bar", color.New(color.FgGreen, color.Bold))

	bar := pb.New64(total)
	bar.SetRefreshRate(time.Millisecond * 125)
	bar.SetTemplateString(`{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }}`)
	bar.Set("prefix", caption)
	bar.Start()

	return &Bar{bar: bar}
}

// Increment advances the bar by one step.
func (b *Bar) Increment() {
	if b.bar != nil {
		b.bar.Increment()
	}
}

// Finish completes and erases the bar.
func (b *Bar) Finish() {
	if b.bar != nil {
		b.bar.Finish()
	}
}
