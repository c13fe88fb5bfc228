package feed

import (
	"strings"
)

// Filterer keeps article candidates: links ending in .html on the site.
type Filterer struct {
	sitePrefix string
}

func NewFilterer(sitePrefix string) *Filterer {
	return &Filterer{sitePrefix: strings.TrimRight(sitePrefix, "/")}
}

func (f *Filterer) Run(urls []string) ([]string, []Ignored) {
	accepted := make([]string, 0, len(urls))
	var ignored []Ignored

	for _, u := range urls {
		if reason := f.reject(u); reason != "" {
			ignored = append(ignored, Ignored{URL: u, Reason: reason})
			continue
		}
		accepted = append(accepted, u)
	}

	return accepted, ignored
}

func (f *Filterer) reject(u string) string {
	if !strings.HasSuffix(u, ".html") {
		return "not an html document"
	}
	if f.sitePrefix != "" && u != f.sitePrefix && !strings.HasPrefix(u, f.sitePrefix+"/") {
		return "not on " + f.sitePrefix
	}
	return ""
}
