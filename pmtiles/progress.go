package pmtiles

import "github.com/schollz/progressbar/v3"

// NewTerminalProgress returns a ProgressFunc that renders a terminal
// progress bar via progressbar/v3, the same library the reference CLI
// tooling uses for long-running conversions.
func NewTerminalProgress(description string) ProgressFunc {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			if total > 0 {
				bar = progressbar.Default(int64(total), description)
			} else {
				bar = progressbar.DefaultBytes(-1, description)
			}
		}
		bar.Set(done)
	}
}
