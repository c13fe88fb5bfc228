package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/lysyi3m/media-comb/app/dedup"
)

const separator = "------|-------|---------------"

// Printer renders the run table on w.
type Printer struct {
	w     io.Writer
	plain *color.Color
	bold  *color.Color
	blue  *color.Color
	red   *color.Color
}

// NewPrinter returns a printer writing to w. Colors follow the terminal
// detection of fatih/color unless noColor is set.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:     w,
		plain: color.New(color.Reset),
		bold:  color.New(color.Bold),
		blue:  color.New(color.FgBlue),
		red:   color.New(color.FgRed),
	}

	if noColor {
		for _, c := range []*color.Color{p.plain, p.bold, p.blue, p.red} {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) Intro(videoQuality, audioQuality, downloadDir string) {
	fmt.Fprintln(p.w, p.bold.Sprint("Downloader for tagesschau.de"))
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "Video quality:  %s\n", p.blue.Sprint(videoQuality))
	fmt.Fprintf(p.w, "Audio quality:  %s\n", p.blue.Sprint(audioQuality))
	fmt.Fprintf(p.w, "Downloading to: %s\n", p.blue.Sprint(downloadDir))
	fmt.Fprintln(p.w)
}

// Header opens the table for n articles of feedURL.
func (p *Printer) Header(n int, feedURL string, day time.Time) {
	fmt.Fprintf(p.w, "Opening %d articles on %s | %s\n", n, feedURL, day.Format("2006-01-02"))
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "%s| %s|%s\n", p.bold.Sprint("video "), p.bold.Sprint("audio "), p.bold.Sprint(" Title"))
	fmt.Fprintln(p.w, separator)
}

func (p *Printer) Row(r Row) {
	video, audio, title := r.Markers()

	vc, ac, tc := p.plain, p.plain, p.plain
	if r.Empty() {
		vc, ac, tc = p.red, p.red, p.red
	}
	if video == partialMarker {
		vc = p.blue
	}
	if audio == partialMarker {
		ac = p.blue
	}
	if title == emptyMarker && !r.Empty() {
		tc = p.blue
	}

	p.line(vc.Sprintf("  %s  ", count(video, r.AcceptedVideos)),
		ac.Sprintf("  %s   ", count(audio, r.AcceptedAudios)),
		tc.Sprintf(" %s%s", title, r.Title))
}

// Footer closes the table with the run totals.
func (p *Printer) Footer(c dedup.Counters) {
	fmt.Fprintln(p.w, separator)
	p.line(p.plain.Sprintf("  %s  ", count(noMarker, c.AcceptedVideos)),
		p.plain.Sprintf("  %s   ", count(noMarker, c.AcceptedAudios)),
		p.plain.Sprint("  will be downloaded..."))

	if c.Skipped() > 0 {
		fmt.Fprintln(p.w, p.blue.Sprintf("* %d duplicates skipped...", c.Skipped()))
	}
	if c.ArticlesSkipped > 0 {
		fmt.Fprintln(p.w, p.red.Sprintf("~ %d articles could not be opened", c.ArticlesSkipped))
	}
}

func (p *Printer) line(video, audio, title string) {
	fmt.Fprintf(p.w, "%s|%s|%s\n", video, audio, title)
}

func count(marker string, n int) string {
	if marker == partialMarker {
		return fmt.Sprintf("*%d", n)
	}
	return fmt.Sprintf("%2d", n)
}
