package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	bar "github.com/schollz/progressbar/v3"
)

// progressBar draws batch progress on a terminal and stays silent otherwise,
// so piped logs are not littered with control sequences. The bar is created
// on the first update, once the total is known.
type progressBar struct {
	w       io.Writer
	enabled bool
	bar     *bar.ProgressBar
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{w: w, enabled: isTerminal(w)}
}

func (p *progressBar) update(done, total int) {
	if !p.enabled {
		return
	}
	if p.bar == nil {
		p.bar = bar.NewOptions(total,
			bar.OptionSetWriter(p.w),
			bar.OptionSetDescription("Processing media files"),
			bar.OptionShowCount(),
			bar.OptionSetWidth(30),
			bar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
}

func (p *progressBar) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
