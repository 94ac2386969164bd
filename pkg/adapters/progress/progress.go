// Package progress renders a terminal progress bar for long frame loops.
package progress

import (
	"io"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/user/imganimate/pkg/ports"
)

// Bar implements ports.Progress with progressbar/v3.
type Bar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// New returns a Bar writing to w.
func New(w io.Writer) *Bar {
	return &Bar{w: w}
}

// NewAuto returns a Bar on stderr when it is a terminal, and a Noop otherwise.
func NewAuto() ports.Progress {
	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return New(os.Stderr)
	}
	return Noop{}
}

// Start begins a new bar of total steps. description is a translation key.
func (b *Bar) Start(total int, description string) {
	b.Finish()
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(l10n.T(description)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

// Add advances the bar by n steps.
func (b *Bar) Add(n int) {
	if b.bar != nil {
		_ = b.bar.Add(n)
	}
}

// Finish completes and clears the bar.
func (b *Bar) Finish() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
	b.bar = nil
}

// Noop discards progress.
type Noop struct{}

func (Noop) Start(int, string) {}
func (Noop) Add(int)           {}
func (Noop) Finish()           {}

var (
	_ ports.Progress = (*Bar)(nil)
	_ ports.Progress = Noop{}
)
