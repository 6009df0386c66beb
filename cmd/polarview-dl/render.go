package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/handiism/polarview-downloader/internal/download"
	"github.com/mattn/go-isatty"
)

// renderer prints manager events for a human reader. On a terminal the
// byte progress of the current scene is redrawn in place.
type renderer struct {
	out         io.Writer
	verbose     bool
	interactive bool
	interval    time.Duration

	lastDraw time.Time
	inLine   bool
}

func newRenderer(out io.Writer, verbose bool) *renderer {
	r := &renderer{out: out, verbose: verbose, interval: 200 * time.Millisecond}
	if f, ok := out.(*os.File); ok {
		r.interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return r
}

// run consumes events until the channel is closed.
func (r *renderer) run(events <-chan any) {
	for ev := range events {
		switch e := ev.(type) {
		case download.ProgressEvent:
			r.event(e)
		case download.FileProgress:
			r.file(e)
		}
	}
	r.endLine()
}

func (r *renderer) event(e download.ProgressEvent) {
	if e.Level == download.LevelVerbose && !r.verbose {
		return
	}

	var prefix string
	switch e.Level {
	case download.LevelError:
		prefix = "✗ "
	case download.LevelWarning:
		prefix = "! "
	case download.LevelSuccess:
		prefix = "✓ "
	case download.LevelInfo:
		prefix = "› "
	default:
		prefix = "  "
	}

	r.endLine()
	fmt.Fprintln(r.out, prefix+e.Message)
}

func (r *renderer) file(p download.FileProgress) {
	if !r.interactive {
		return
	}
	done := p.Total > 0 && p.Written >= p.Total
	if !done && time.Since(r.lastDraw) < r.interval {
		return
	}
	r.lastDraw = time.Now()

	fmt.Fprintf(r.out, "\r  %s", progressLine(p))
	r.inLine = true
}

func (r *renderer) endLine() {
	if r.inLine {
		fmt.Fprintln(r.out)
		r.inLine = false
	}
}

// progressLine renders e.g. "[#####-----]  50%  1.0 MiB / 2.0 MiB  X.tif.tar.gz".
func progressLine(p download.FileProgress) string {
	name := ""
	if p.Scene != nil {
		name = p.Scene.FileName
	}
	if p.Total <= 0 {
		return fmt.Sprintf("%10s  %s", download.FormatBytes(p.Written), name)
	}

	const width = 20
	frac := float64(p.Written) / float64(p.Total)
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * width)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", width-filled)

	return fmt.Sprintf("[%s] %3.0f%%  %s / %s  %s",
		bar, frac*100, download.FormatBytes(p.Written), download.FormatBytes(p.Total), name)
}
