package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/lessons-ledger/internal/report"
	"github.com/schollz/progressbar/v3"
)

// Progress draws a progress bar for batched ledger writes.
type Progress struct {
	bar  *progressbar.ProgressBar
	done int
}

// NewProgress creates a bar that counts up to total ledger rows.
func NewProgress(w io.Writer, total int, description string) *Progress {
	if w == nil {
		w = os.Stderr
	}
	return &Progress{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				if _, err := fmt.Fprintln(w); err != nil {
					slog.Warn("Failed to write newline after progress bar", "error", err)
				}
			}),
		),
	}
}

// Callback adapts the bar to a report.Progress. The bar's maximum follows the total reported
// by the service, which may differ from the estimate passed to NewProgress.
func (p *Progress) Callback() report.Progress {
	return func(done, total int) {
		if int64(total) != p.bar.GetMax64() {
			p.bar.ChangeMax(total)
		}
		if err := p.bar.Add(done - p.done); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
		p.done = done
	}
}

// Finish completes the bar.
func (p *Progress) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}

// Done is the number of rows reported so far.
func (p *Progress) Done() int {
	return p.done
}
