// Package progress provides progress indicators for sync passes.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauern/notesync/internal/logging"
	"github.com/klauern/notesync/internal/ui"
	"github.com/schollz/progressbar/v3"
)

// Bar wraps progressbar with notesync's UI and logging conventions.
type Bar struct {
	bar     *progressbar.ProgressBar
	enabled bool
	desc    string
}

// Options configures the progress bar behavior.
type Options struct {
	// Max is the total number of steps.
	Max int64
	// Description is the prefix text shown before the bar.
	Description string
	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer
}

// New creates a progress bar. The bar is only rendered when colors
// are enabled, output is a terminal, and the logger is not at debug
// level; otherwise progress is logged at debug level instead.
func New(opts Options) *Bar {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}

	b := &Bar{
		enabled: shouldShowProgress(opts.Writer),
		desc:    opts.Description,
	}

	if !b.enabled {
		logging.Debug(fmt.Sprintf("%s started", opts.Description),
			logging.Count(int(opts.Max)))
		return b
	}

	b.bar = progressbar.NewOptions64(
		opts.Max,
		progressbar.OptionSetDescription(opts.Description),
		progressbar.OptionSetWriter(opts.Writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(opts.Writer, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(ui.IsColorEnabled()),
	)

	return b
}

// ForPass creates a bar sized for one sync direction.
func ForPass(direction string, total int) *Bar {
	return New(Options{
		Max:         int64(total),
		Description: fmt.Sprintf("Syncing (%s)", direction),
	})
}

// Add increments the bar by n steps.
func (b *Bar) Add(n int) error {
	if !b.enabled {
		return nil
	}
	return b.bar.Add(n)
}

// Set moves the bar to a specific value.
func (b *Bar) Set(n int) error {
	if !b.enabled {
		return nil
	}
	return b.bar.Set(n)
}

// Describe updates the bar description.
func (b *Bar) Describe(desc string) {
	b.desc = desc
	if !b.enabled {
		return
	}
	b.bar.Describe(desc)
}

// Finish completes the bar and logs completion.
func (b *Bar) Finish() error {
	if !b.enabled {
		logging.Debug(fmt.Sprintf("%s completed", b.desc))
		return nil
	}
	return b.bar.Finish()
}

// Clear removes the bar from the terminal.
func (b *Bar) Clear() error {
	if !b.enabled {
		return nil
	}
	return b.bar.Clear()
}

// shouldShowProgress reports whether a bar should render at all.
func shouldShowProgress(w io.Writer) bool {
	if !ui.IsColorEnabled() {
		return false
	}

	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			return false
		}
	}

	// Bars and debug logs fight over the same stream.
	if logging.Default().Enabled(context.Background(), logging.LevelDebug) {
		return false
	}

	return true
}
