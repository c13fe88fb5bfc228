package extract

import (
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/lysyi3m/media-comb/app/errs"
	"github.com/lysyi3m/media-comb/app/fetch"
	"github.com/lysyi3m/media-comb/app/media"
)

const titleSeparator = " | "

type Result struct {
	Videos   []media.Hit
	Audios   []media.Hit
	Title    string
	Warnings []error
}

// Found is the number of media references the page proposed.
func (r *Result) Found() int {
	return len(r.Videos) + len(r.Audios)
}

// Extractor locates media references of the selected qualities on article pages.
type Extractor struct {
	loc *time.Location
}

func NewExtractor(loc *time.Location) *Extractor {
	if loc == nil {
		loc = time.Local
	}
	return &Extractor{loc: loc}
}

// Run scans page for href and data-config attributes matching video or
// audio. Malformed items end up in Result.Warnings; only an unparseable
// document is an error.
func (e *Extractor) Run(page *fetch.Page, video, audio *media.Matcher) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", page.URL, err)
	}

	result := &Result{}
	matchers := []*media.Matcher{video, audio}

	doc.Find("[data-config], [href]").Each(func(_ int, s *goquery.Selection) {
		if cfg, ok := s.Attr("data-config"); ok {
			payload := html.UnescapeString(cfg)
			if m := firstMatch(matchers, payload); m != nil {
				stream, err := ParseDataConfig(payload)
				if err != nil {
					result.Warnings = append(result.Warnings, &errs.ExtractionError{Source: page.URL, Reason: "malformed data-config", Cause: err})
					return
				}
				e.add(result, page.URL, m, stream)
				return
			}
		}

		if href, ok := s.Attr("href"); ok {
			if m := firstMatch(matchers, href); m != nil {
				e.add(result, page.URL, m, href)
			}
		}
	})

	result.Title = e.title(doc, page)

	slog.Debug("Page extracted", "url", page.URL, "videos", len(result.Videos), "audios", len(result.Audios), "warnings", len(result.Warnings))
	return result, nil
}

// add files the stream under the kind its file name declares. A player
// payload matched for one quality may resolve to another stream.
func (e *Extractor) add(result *Result, source string, m *media.Matcher, rawURL string) {
	streamURL := media.NormalizeStreamURL(rawURL)

	identity, err := media.ParseFileName(media.FileNameOf(streamURL), e.loc)
	if err != nil {
		result.Warnings = append(result.Warnings, &errs.ExtractionError{Source: source, Reason: "unexpected stream file name", Cause: err})
		return
	}

	switch {
	case identity.Kind != m.Kind:
		slog.Debug("Stream kind differs from matched reference", "url", source, "file", identity.FileName, "matched", m.Kind)
	case !m.Selects(identity.FileName):
		slog.Debug("Stream quality differs from selection", "url", source, "file", identity.FileName, "quality", m.Quality)
	}

	hit := media.Hit{Identity: identity, StreamURL: streamURL}
	if identity.Kind == media.Audio {
		result.Audios = append(result.Audios, hit)
	} else {
		result.Videos = append(result.Videos, hit)
	}
}

func firstMatch(matchers []*media.Matcher, s string) *media.Matcher {
	for _, m := range matchers {
		if m != nil && m.Match(s) {
			return m
		}
	}
	return nil
}

func (e *Extractor) title(doc *goquery.Document, page *fetch.Page) string {
	if sel := doc.Find("title").First(); sel.Length() > 0 {
		title, _, _ := strings.Cut(sel.Text(), titleSeparator)
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}

	if pageURL, err := url.Parse(page.URL); err == nil {
		article, err := readability.FromReader(strings.NewReader(page.Body), pageURL)
		if err == nil {
			title, _, _ := strings.Cut(article.Title, titleSeparator)
			if title = strings.TrimSpace(title); title != "" {
				return title
			}
		}
	}

	return media.PageName(page.URL)
}
